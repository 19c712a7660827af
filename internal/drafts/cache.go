package drafts

import (
	"context"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/kvstore"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/records"
)

// Cache keeps one draft for the whole installation. It is not scoped to a group or
// member, so switching sessions leaves it in place.
type Cache struct {
	adapter *kvstore.Adapter
}

// NewCache constructs a Cache.
func NewCache(adapter *kvstore.Adapter) (*Cache, error) {
	if adapter == nil {
		return nil, kvstore.NewServiceError("drafts.cache.new", "missing_adapter", kvstore.ErrMissingAdapter)
	}
	return &Cache{adapter: adapter}, nil
}

// Get returns the stored draft, if any.
func (c *Cache) Get(ctx context.Context) (records.Draft, bool, error) {
	var draft records.Draft
	found, err := c.adapter.ReadJSON(ctx, kvstore.KeyDraft, &draft)
	if err != nil {
		return records.Draft{}, false, kvstore.NewServiceError("drafts.get", "read_failed", err)
	}
	if !found {
		return records.Draft{}, false, nil
	}
	return draft, true, nil
}

// Save replaces the stored draft.
func (c *Cache) Save(ctx context.Context, draft records.Draft) error {
	if err := c.adapter.WriteJSON(ctx, kvstore.KeyDraft, draft); err != nil {
		return kvstore.NewServiceError("drafts.save", "write_failed", err)
	}
	return nil
}

// Clear drops the stored draft. Call it after the record it described has been created.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.adapter.Remove(ctx, kvstore.KeyDraft); err != nil {
		return kvstore.NewServiceError("drafts.clear", "write_failed", err)
	}
	return nil
}
