package records

import (
	"testing"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/kvstore"
)

type writeCounter struct {
	writes int
}

func (c *writeCounter) RecordStoreRead(string, string) {}

func (c *writeCounter) RecordStoreWrite(string) {
	c.writes++
}

func newTestRepository(t *testing.T, store kvstore.Store, observer kvstore.Observer) *Repository {
	t.Helper()
	adapter, err := kvstore.NewAdapter(kvstore.AdapterConfig{Store: store, Observer: observer})
	if err != nil {
		t.Fatalf("failed to build adapter: %v", err)
	}
	repository, err := NewRepository(RepositoryConfig{Adapter: adapter})
	if err != nil {
		t.Fatalf("failed to build repository: %v", err)
	}
	return repository
}

func recordIDs(list []BookRecord) []string {
	ids := make([]string, 0, len(list))
	for _, record := range list {
		ids = append(ids, record.ID)
	}
	return ids
}

func stringPointer(value string) *string {
	return &value
}
