package kvstore

import "context"

// Keys under which the book club state is stored. The names match the ones used by
// the browser client so that exported blobs load unchanged.
const (
	KeyRecords        = "book_records_v2"
	KeyGroups         = "book_groups"
	KeyActiveSession  = "book_session"
	KeyJoinedSessions = "book_joined_groups"
	KeyDraft          = "book_record_draft"
)

// Store is the raw string-keyed storage the Adapter writes through.
// Implementations overwrite values wholesale; there are no partial updates.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
