package sessions

import (
	"context"
	"errors"
	"testing"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/groups"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/kvstore"
	"github.com/google/go-cmp/cmp"
)

func newTestManager(t *testing.T, store kvstore.Store) *Manager {
	t.Helper()
	adapter, err := kvstore.NewAdapter(kvstore.AdapterConfig{Store: store})
	if err != nil {
		t.Fatalf("failed to build adapter: %v", err)
	}
	manager, err := NewManager(ManagerConfig{Adapter: adapter})
	if err != nil {
		t.Fatalf("failed to build manager: %v", err)
	}
	return manager
}

func membership(code, name string) Session {
	return NewMembership(
		groups.Group{Code: code, Name: "group " + code, LeaderName: "leader", MaxMembers: groups.DefaultMaxMembers},
		UserProfile{Name: name, Password: "pw"},
	)
}

func TestNewMembershipStampsGroupID(t *testing.T) {
	session := NewMembership(groups.Group{Code: "48213"}, UserProfile{GroupID: "stale", Name: "Mina"})
	if session.User.GroupID != "48213" {
		t.Fatalf("expected profile group id to follow the group code, got %q", session.User.GroupID)
	}
}

func TestGetActiveWithoutSession(t *testing.T) {
	manager := newTestManager(t, kvstore.NewMemoryStore())
	_, ok, err := manager.GetActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no active session")
	}
	joined, err := manager.ListJoined(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(joined) != 0 {
		t.Fatalf("expected no joined sessions, got %d", len(joined))
	}
}

func TestSetActiveIsIdempotentForJoinedList(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, kvstore.NewMemoryStore())

	first := membership("11111", "Mina")
	if err := manager.SetActive(ctx, first); err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	if err := manager.SetActive(ctx, first); err != nil {
		t.Fatalf("second set failed: %v", err)
	}

	joined, err := manager.ListJoined(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(joined) != 1 {
		t.Fatalf("expected one joined session, got %d", len(joined))
	}

	active, ok, err := manager.GetActive(ctx)
	if err != nil || !ok {
		t.Fatalf("expected active session, ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(first, active); diff != "" {
		t.Fatalf("unexpected active session (-want +got):\n%s", diff)
	}
}

func TestSetActiveKeepsFirstStoredCopy(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, kvstore.NewMemoryStore())

	original := membership("11111", "Mina")
	if err := manager.SetActive(ctx, original); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	edited := original
	edited.User.ProfileImage = "data:image/png;base64,AAAA"
	if err := manager.SetActive(ctx, edited); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	active, _, err := manager.GetActive(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if active.User.ProfileImage != edited.User.ProfileImage {
		t.Fatalf("active slot must hold the latest session")
	}
	joined, err := manager.ListJoined(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(joined) != 1 || joined[0].User.ProfileImage != "" {
		t.Fatalf("joined list should keep the first stored copy, got %#v", joined)
	}
}

func TestJoinedListGrowsPerGroup(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, kvstore.NewMemoryStore())

	for _, session := range []Session{membership("11111", "Mina"), membership("22222", "Mina"), membership("11111", "Joon")} {
		if err := manager.SetActive(ctx, session); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	joined, err := manager.ListJoined(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	codes := make([]string, 0, len(joined))
	for _, session := range joined {
		codes = append(codes, session.Group.Code)
	}
	if diff := cmp.Diff([]string{"11111", "22222"}, codes); diff != "" {
		t.Fatalf("unexpected joined codes (-want +got):\n%s", diff)
	}
	if joined[0].User.Name != "Mina" {
		t.Fatalf("expected the first membership of 11111 to be kept, got %q", joined[0].User.Name)
	}
}

func TestClearActiveKeepsJoinedList(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, kvstore.NewMemoryStore())

	if err := manager.SetActive(ctx, membership("11111", "Mina")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := manager.ClearActive(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if _, ok, err := manager.GetActive(ctx); err != nil || ok {
		t.Fatalf("expected no active session after clear, ok=%v err=%v", ok, err)
	}
	joined, err := manager.ListJoined(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(joined) != 1 {
		t.Fatalf("clear must not touch the joined list, got %d entries", len(joined))
	}
}

func TestSwitchTo(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, kvstore.NewMemoryStore())

	for _, session := range []Session{membership("11111", "Mina"), membership("22222", "Mina B")} {
		if err := manager.SetActive(ctx, session); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	switched, err := manager.SwitchTo(ctx, "11111")
	if err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if switched.Group.Code != "11111" || switched.User.Name != "Mina" {
		t.Fatalf("unexpected switched session %#v", switched)
	}
	active, _, err := manager.GetActive(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if active.Group.Code != "11111" {
		t.Fatalf("expected active group 11111, got %q", active.Group.Code)
	}

	_, err = manager.SwitchTo(ctx, "99999")
	if !errors.Is(err, ErrNotJoined) {
		t.Fatalf("expected ErrNotJoined, got %v", err)
	}
	if code := kvstore.ErrorCode(err); code != "sessions.switch_to.not_joined" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestCorruptSessionStateReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	if err := store.Set(ctx, kvstore.KeyActiveSession, `{"group":`); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := store.Set(ctx, kvstore.KeyJoinedSessions, `{"not":"a list"}`); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	manager := newTestManager(t, store)

	if _, ok, err := manager.GetActive(ctx); err != nil || ok {
		t.Fatalf("expected corrupt active session to read as absent, ok=%v err=%v", ok, err)
	}
	joined, err := manager.ListJoined(ctx)
	if err != nil || len(joined) != 0 {
		t.Fatalf("expected corrupt joined list to read as empty, got %d err=%v", len(joined), err)
	}

	if err := manager.SetActive(ctx, membership("11111", "Mina")); err != nil {
		t.Fatalf("set over corrupt state failed: %v", err)
	}
	joined, err = manager.ListJoined(ctx)
	if err != nil || len(joined) != 1 {
		t.Fatalf("expected joined list to recover, got %d err=%v", len(joined), err)
	}
}

func TestNullSessionStateReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	if err := store.Set(ctx, kvstore.KeyActiveSession, "null"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	joinedBlob := `[null,{"group":{"code":"11111","name":"group 11111"},"user":{"groupId":"11111","name":"Mina","profileImage":""}}]`
	if err := store.Set(ctx, kvstore.KeyJoinedSessions, joinedBlob); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	manager := newTestManager(t, store)

	if session, ok, err := manager.GetActive(ctx); err != nil || ok {
		t.Fatalf("expected stored null to read as no session, ok=%v err=%v session=%+v", ok, err, session)
	}
	joined, err := manager.ListJoined(ctx)
	if err != nil {
		t.Fatalf("list joined failed: %v", err)
	}
	if len(joined) != 1 || joined[0].Group.Code != "11111" {
		t.Fatalf("expected null entries to be skipped, got %+v", joined)
	}
	if _, err := manager.SwitchTo(ctx, ""); !errors.Is(err, ErrNotJoined) {
		t.Fatalf("expected empty code not to match a null entry, got %v", err)
	}
}
