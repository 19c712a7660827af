package records

import (
	"context"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/kvstore"
	"go.uber.org/zap"
)

const (
	opRepositoryNew = "records.repository.new"
	opLoad          = "records.load"
	opCreate        = "records.create"
	opDeleteByID    = "records.delete_by_id"

	reasonMissingAdapter = "missing_adapter"
	reasonReadFailed     = "read_failed"
	reasonWriteFailed    = "write_failed"
)

var noOpLogger = zap.NewNop()

// RepositoryConfig describes the dependencies of a Repository.
type RepositoryConfig struct {
	Adapter *kvstore.Adapter
	Logger  *zap.Logger
}

// Repository keeps every record of every group in a single stored collection.
// Lookups scan the whole collection; there is no index.
type Repository struct {
	adapter *kvstore.Adapter
	logger  *zap.Logger
}

// NewRepository constructs a Repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Adapter == nil {
		return nil, kvstore.NewServiceError(opRepositoryNew, reasonMissingAdapter, kvstore.ErrMissingAdapter)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Repository{adapter: cfg.Adapter, logger: logger}, nil
}

// ListByGroup returns the records of one group in insertion order.
func (r *Repository) ListByGroup(ctx context.Context, groupID string) ([]BookRecord, error) {
	return r.filter(ctx, func(record BookRecord) bool {
		return record.GroupID == groupID
	})
}

// ListByAuthor returns every record journaled under name, across all groups.
// Members are matched by display name only, so two people sharing a name share a list.
func (r *Repository) ListByAuthor(ctx context.Context, name string) ([]BookRecord, error) {
	return r.filter(ctx, func(record BookRecord) bool {
		return record.AuthorName == name
	})
}

// FindByID returns the first record with id.
func (r *Repository) FindByID(ctx context.Context, id string) (BookRecord, bool, error) {
	all, err := r.load(ctx)
	if err != nil {
		return BookRecord{}, false, err
	}
	for _, record := range all {
		if record.ID == id {
			return record, true, nil
		}
	}
	return BookRecord{}, false, nil
}

// Create appends record. The caller assigns ID, GroupID and Timestamp; duplicate ids are not rejected.
func (r *Repository) Create(ctx context.Context, record BookRecord) error {
	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	all = append(all, record)
	if err := r.adapter.WriteJSON(ctx, kvstore.KeyRecords, all); err != nil {
		r.logError(opCreate, reasonWriteFailed, err, zap.String("record_id", record.ID))
		return kvstore.NewServiceError(opCreate, reasonWriteFailed, err)
	}
	return nil
}

// DeleteByID removes the first record with id. An unknown id leaves the store untouched.
func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	index := -1
	for i, record := range all {
		if record.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}
	remaining := make([]BookRecord, 0, len(all)-1)
	remaining = append(remaining, all[:index]...)
	remaining = append(remaining, all[index+1:]...)
	if err := r.adapter.WriteJSON(ctx, kvstore.KeyRecords, remaining); err != nil {
		r.logError(opDeleteByID, reasonWriteFailed, err, zap.String("record_id", id))
		return kvstore.NewServiceError(opDeleteByID, reasonWriteFailed, err)
	}
	return nil
}

func (r *Repository) filter(ctx context.Context, keep func(BookRecord) bool) ([]BookRecord, error) {
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]BookRecord, 0)
	for _, record := range all {
		if keep(record) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

// load returns the stored collection. Null elements are dropped and are not written back.
func (r *Repository) load(ctx context.Context) ([]BookRecord, error) {
	var stored []*BookRecord
	found, err := r.adapter.ReadJSON(ctx, kvstore.KeyRecords, &stored)
	if err != nil {
		return nil, kvstore.NewServiceError(opLoad, reasonReadFailed, err)
	}
	if !found {
		return nil, nil
	}
	all := make([]BookRecord, 0, len(stored))
	for _, record := range stored {
		if record != nil {
			all = append(all, *record)
		}
	}
	return all, nil
}

func (r *Repository) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	r.logger.Error("records repository error", attrs...)
}
