package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/relaychat/relaychat-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndListRoomMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msgs := []*store.Message{
		{Room: "general", Sender: "alice", Content: "one", Date: "01/01/2024", Time: "10:00"},
		{Room: "tech", Sender: "bob", Content: "other room", Date: "01/01/2024", Time: "10:01"},
		{Room: "general", Sender: "bob", Content: "two", Date: "02/01/2024", Time: "10:02"},
	}
	for _, m := range msgs {
		saved, err := s.AppendMessage(ctx, m)
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if saved.ID == 0 {
			t.Fatalf("expected assigned id, got %+v", saved)
		}
		if saved.Content != m.Content || saved.Date != m.Date {
			t.Fatalf("saved message mangled: %+v", saved)
		}
	}

	general, err := s.ListRoomMessages(ctx, "general")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(general) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(general))
	}
	// Storage order is insertion order.
	if general[0].Content != "one" || general[1].Content != "two" {
		t.Fatalf("unexpected order: %+v", general)
	}

	empty, err := s.ListRoomMessages(ctx, "finance")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no messages, got %d", len(empty))
	}
}

func TestCreateAndLookupUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != store.StatusOnline {
		t.Fatalf("new users start online, got %q", created.Status)
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup by name failed: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("id mismatch: %d vs %d", byName.ID, created.ID)
	}

	if _, err := s.GetUserByID(ctx, 404); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePresence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.UpdatePresence(ctx, created.ID, store.StatusOffline, 5); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	user, err := s.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if user.Status != store.StatusOffline || user.NewMessages != 5 {
		t.Fatalf("presence not persisted: %+v", user)
	}

	if err := s.UpdatePresence(ctx, 404, store.StatusOffline, 0); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsersSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := s.CreateUser(ctx, name, "hash"); err != nil {
			t.Fatalf("create %s failed: %v", name, err)
		}
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if users[0].Username != "alice" || users[2].Username != "carol" {
		t.Fatalf("unexpected order: %+v", users)
	}
}
