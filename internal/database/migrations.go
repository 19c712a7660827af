package database

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/kvstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationDedupeJoinedSessions = "2026-10-01_dedupe_joined_sessions"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationDedupeJoinedSessions, apply: dedupeJoinedSessions},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// joinedSessionCode reads only the group code of a stored session; the rest of the
// entry is carried through as raw JSON.
type joinedSessionCode struct {
	Group struct {
		Code string `json:"code"`
	} `json:"group"`
}

// dedupeJoinedSessions keeps the first joined session per group code. Absent or
// unreadable blobs are left as they are.
func dedupeJoinedSessions(db *gorm.DB) error {
	var entry kvstore.Entry
	err := db.Where("entry_key = ?", kvstore.KeyJoinedSessions).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var joined []json.RawMessage
	if err := json.Unmarshal([]byte(entry.Value), &joined); err != nil {
		return nil
	}

	seen := make(map[string]struct{}, len(joined))
	kept := make([]json.RawMessage, 0, len(joined))
	for _, raw := range joined {
		var probe joinedSessionCode
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil
		}
		if _, dup := seen[probe.Group.Code]; dup {
			continue
		}
		seen[probe.Group.Code] = struct{}{}
		kept = append(kept, raw)
	}
	if len(kept) == len(joined) {
		return nil
	}

	payload, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	return db.Model(&kvstore.Entry{}).
		Where("entry_key = ?", kvstore.KeyJoinedSessions).
		Updates(map[string]interface{}{
			"entry_value":   string(payload),
			"updated_at_ms": time.Now().UTC().UnixMilli(),
		}).Error
}
