package kvstore

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

const (
	opRead   = "kvstore.read"
	opWrite  = "kvstore.write"
	opRemove = "kvstore.remove"

	reasonBackendFailed = "backend_failed"
	reasonEncodeFailed  = "encode_failed"

	// ReadResultHit marks a read that found and decoded a value.
	ReadResultHit = "hit"
	// ReadResultMiss marks a read for an absent key.
	ReadResultMiss = "miss"
	// ReadResultCorrupt marks a read whose stored value failed to decode.
	ReadResultCorrupt = "corrupt"
)

var noOpLogger = zap.NewNop()

// Observer receives per-key read and write notifications.
type Observer interface {
	RecordStoreRead(key, result string)
	RecordStoreWrite(key string)
}

// AdapterConfig describes the dependencies of an Adapter.
type AdapterConfig struct {
	Store    Store
	Logger   *zap.Logger
	Observer Observer
}

// Adapter reads and writes whole JSON documents through a Store.
//
// Every caller that changes a collection reads all of it, mutates it in memory and
// writes all of it back. Nothing guards that sequence: two writers racing on the same
// key lose one of the updates (last write wins).
type Adapter struct {
	store    Store
	logger   *zap.Logger
	observer Observer
}

// NewAdapter constructs an Adapter.
func NewAdapter(cfg AdapterConfig) (*Adapter, error) {
	if cfg.Store == nil {
		return nil, NewServiceError("kvstore.adapter.new", "missing_store", errMissingStore)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Adapter{
		store:    cfg.Store,
		logger:   logger,
		observer: cfg.Observer,
	}, nil
}

// ReadJSON decodes the value stored under key into dst and reports whether one was found.
// An empty or null value reads as a miss. A value that fails to decode is treated as absent
// and found is false. dst may hold a partial decode in that case, so callers must discard
// it unless found is true.
func (a *Adapter) ReadJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := a.store.Get(ctx, key)
	if err != nil {
		a.logError(opRead, reasonBackendFailed, err, zap.String("key", key))
		return false, NewServiceError(opRead, reasonBackendFailed, err)
	}
	if !found || isNullValue(raw) {
		a.observeRead(key, ReadResultMiss)
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		a.logger.Warn("discarding unreadable stored value",
			zap.String("key", key),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
		a.observeRead(key, ReadResultCorrupt)
		return false, nil
	}
	a.observeRead(key, ReadResultHit)
	return true, nil
}

// WriteJSON encodes value and overwrites whatever is stored under key.
func (a *Adapter) WriteJSON(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		a.logError(opWrite, reasonEncodeFailed, err, zap.String("key", key))
		return NewServiceError(opWrite, reasonEncodeFailed, err)
	}
	if err := a.store.Set(ctx, key, string(payload)); err != nil {
		a.logError(opWrite, reasonBackendFailed, err, zap.String("key", key))
		return NewServiceError(opWrite, reasonBackendFailed, err)
	}
	if a.observer != nil {
		a.observer.RecordStoreWrite(key)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	if err := a.store.Delete(ctx, key); err != nil {
		a.logError(opRemove, reasonBackendFailed, err, zap.String("key", key))
		return NewServiceError(opRemove, reasonBackendFailed, err)
	}
	if a.observer != nil {
		a.observer.RecordStoreWrite(key)
	}
	return nil
}

// isNullValue reports whether raw holds nothing, which includes a stored JSON null.
func isNullValue(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || trimmed == "null"
}

func (a *Adapter) observeRead(key, result string) {
	if a.observer != nil {
		a.observer.RecordStoreRead(key, result)
	}
}

func (a *Adapter) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	a.logger.Error("kvstore error", attrs...)
}
