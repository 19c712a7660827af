package groups

import (
	"context"
	"errors"
	"math/rand"
	"strconv"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/kvstore"
	"go.uber.org/zap"
)

const (
	opRegistryNew  = "groups.registry.new"
	opLoad         = "groups.load"
	opCreate       = "groups.create"
	opGenerateCode = "groups.generate_code"

	minCode  = 10000
	codeSpan = 90000
)

// DefaultMaxAttempts bounds the draws GenerateCode makes before giving up.
const DefaultMaxAttempts = 1000

// ErrCodeSpaceExhausted reports that every drawn code was already taken.
var ErrCodeSpaceExhausted = errors.New("groups: no free group code found")

var noOpLogger = zap.NewNop()

// CodeSource draws a value in [0, n).
type CodeSource interface {
	IntN(n int) int
}

// CodeObserver is notified about code generation attempts.
type CodeObserver interface {
	RecordCodeAttempt()
	RecordCodeExhausted()
}

type defaultSource struct{}

func (defaultSource) IntN(n int) int {
	return rand.Intn(n)
}

// RegistryConfig describes the dependencies of a Registry.
type RegistryConfig struct {
	Adapter     *kvstore.Adapter
	Source      CodeSource
	MaxAttempts int
	Observer    CodeObserver
	Logger      *zap.Logger
}

// Registry stores all groups as one collection.
type Registry struct {
	adapter     *kvstore.Adapter
	source      CodeSource
	maxAttempts int
	observer    CodeObserver
	logger      *zap.Logger
}

// NewRegistry constructs a Registry.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Adapter == nil {
		return nil, kvstore.NewServiceError(opRegistryNew, "missing_adapter", kvstore.ErrMissingAdapter)
	}
	source := cfg.Source
	if source == nil {
		source = defaultSource{}
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Registry{
		adapter:     cfg.Adapter,
		source:      source,
		maxAttempts: maxAttempts,
		observer:    cfg.Observer,
		logger:      logger,
	}, nil
}

// ListAll returns every registered group.
func (r *Registry) ListAll(ctx context.Context) ([]Group, error) {
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		return []Group{}, nil
	}
	return all, nil
}

// FindByCode returns the first group whose code equals code exactly.
func (r *Registry) FindByCode(ctx context.Context, code string) (Group, bool, error) {
	all, err := r.load(ctx)
	if err != nil {
		return Group{}, false, err
	}
	for _, group := range all {
		if group.Code == code {
			return group, true, nil
		}
	}
	return Group{}, false, nil
}

// Create appends group. The code is not re-checked; callers obtain it from GenerateCode.
func (r *Registry) Create(ctx context.Context, group Group) error {
	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	all = append(all, group)
	if err := r.adapter.WriteJSON(ctx, kvstore.KeyGroups, all); err != nil {
		r.logger.Error("groups registry error",
			zap.String("operation", opCreate),
			zap.String("reason", "write_failed"),
			zap.String("group_code", group.Code),
			zap.Error(err))
		return kvstore.NewServiceError(opCreate, "write_failed", err)
	}
	return nil
}

// GenerateCode draws five-digit codes until one is not held by any registered group.
// It gives up with ErrCodeSpaceExhausted after the configured number of draws.
func (r *Registry) GenerateCode(ctx context.Context) (string, error) {
	all, err := r.load(ctx)
	if err != nil {
		return "", err
	}
	taken := make(map[string]struct{}, len(all))
	for _, group := range all {
		taken[group.Code] = struct{}{}
	}

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if r.observer != nil {
			r.observer.RecordCodeAttempt()
		}
		code := strconv.Itoa(minCode + r.source.IntN(codeSpan))
		if _, exists := taken[code]; !exists {
			return code, nil
		}
	}

	if r.observer != nil {
		r.observer.RecordCodeExhausted()
	}
	r.logger.Error("groups registry error",
		zap.String("operation", opGenerateCode),
		zap.String("reason", "exhausted"),
		zap.Int("attempts", r.maxAttempts),
		zap.Int("registered_groups", len(all)))
	return "", kvstore.NewServiceError(opGenerateCode, "exhausted", ErrCodeSpaceExhausted)
}

func (r *Registry) load(ctx context.Context) ([]Group, error) {
	var stored []*Group
	found, err := r.adapter.ReadJSON(ctx, kvstore.KeyGroups, &stored)
	if err != nil {
		return nil, kvstore.NewServiceError(opLoad, "read_failed", err)
	}
	if !found {
		return nil, nil
	}
	all := make([]Group, 0, len(stored))
	for _, group := range stored {
		if group != nil {
			all = append(all, *group)
		}
	}
	return all, nil
}
