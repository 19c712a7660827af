package records

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ShelfEntry gathers every record of one title.
type ShelfEntry struct {
	Title   string       `json:"title"`
	Records []BookRecord `json:"records"`
}

// SortByRecency returns a copy of list ordered by Timestamp, newest first.
func SortByRecency(list []BookRecord) []BookRecord {
	sorted := make([]BookRecord, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	return sorted
}

// Shelf buckets list by title. Buckets are ordered by the timestamp of the first record
// seen for each title, newest first; records keep their input order inside a bucket.
func Shelf(list []BookRecord) []ShelfEntry {
	indexByTitle := make(map[string]int)
	entries := make([]ShelfEntry, 0)
	for _, record := range list {
		index, ok := indexByTitle[record.Title]
		if !ok {
			index = len(entries)
			indexByTitle[record.Title] = index
			entries = append(entries, ShelfEntry{Title: record.Title})
		}
		entries[index].Records = append(entries[index].Records, record)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Records[0].Timestamp > entries[j].Records[0].Timestamp
	})
	return entries
}

// OnDate returns the records whose RecordDate is day (YYYY-MM-DD).
func OnDate(list []BookRecord, day string) []BookRecord {
	matched := make([]BookRecord, 0)
	for _, record := range list {
		if record.RecordDate == day {
			matched = append(matched, record)
		}
	}
	return matched
}

// InMonth returns the records whose RecordDate falls in the given month.
func InMonth(list []BookRecord, year int, month time.Month) []BookRecord {
	prefix := fmt.Sprintf("%04d-%02d", year, int(month))
	matched := make([]BookRecord, 0)
	for _, record := range list {
		if strings.HasPrefix(record.RecordDate, prefix) {
			matched = append(matched, record)
		}
	}
	return matched
}

// CountInMonth counts the records whose RecordDate falls in the given month.
func CountInMonth(list []BookRecord, year int, month time.Month) int {
	return len(InMonth(list, year, month))
}

// CanDelete reports whether memberName may delete record. Ownership is decided by
// display name alone.
func CanDelete(record BookRecord, memberName string) bool {
	return memberName != "" && record.AuthorName == memberName
}
