package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/relaychat/relaychat-server/internal/store"
)

// memStore is an in-memory store.Store for exercising the hub without SQLite.
type memStore struct {
	mu        sync.Mutex
	users     map[int64]*store.User
	messages  []*store.Message
	nextID    int64
	failRead  error
	failWrite error
}

func newMemStore() *memStore {
	return &memStore{users: make(map[int64]*store.User)}
}

func (m *memStore) addUser(u *store.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *memStore) CreateUser(_ context.Context, username, passwordHash string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u := &store.User{ID: m.nextID, Username: username, PasswordHash: passwordHash, Status: store.StatusOnline}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead != nil {
		return nil, m.failRead
	}
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListUsers(_ context.Context) ([]*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead != nil {
		return nil, m.failRead
	}
	out := make([]*store.User, 0, len(m.users))
	for _, u := range m.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memStore) UpdatePresence(_ context.Context, id int64, status string, newMessages int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Status = status
	u.NewMessages = newMessages
	return nil
}

func (m *memStore) AppendMessage(_ context.Context, msg *store.Message) (*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return nil, m.failWrite
	}
	m.nextID++
	saved := *msg
	saved.ID = m.nextID
	m.messages = append(m.messages, &saved)
	copied := saved
	return &copied, nil
}

func (m *memStore) ListRoomMessages(_ context.Context, room string) ([]*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead != nil {
		return nil, m.failRead
	}
	var out []*store.Message
	for _, msg := range m.messages {
		if msg.Room == room {
			copied := *msg
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

var errStoreDown = errors.New("store unavailable")

func newTestHub(st store.Store) *Hub {
	logger := zerolog.Nop()
	return NewHub(st, []string{"general", "tech", "finance", "crypto"}, &logger)
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		default:
			return
		}
	}
}
