package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// User status values.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User represents an account with its presence state.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Status       string
	NewMessages  int64
	CreatedAt    time.Time
}

// Message represents a persisted chat message. Date and Time are kept as the
// client-supplied strings; Date uses the slash-separated textual form the
// history grouping keys on. Insertion order is the implicit creation order.
type Message struct {
	ID        int64
	Room      string
	Sender    string
	Content   string
	Date      string
	Time      string
	CreatedAt time.Time
}

// UserStore handles account and presence persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if missing.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username. Returns ErrNotFound if missing.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// ListUsers returns the full user collection for presence snapshots.
	ListUsers(ctx context.Context) ([]*User, error)

	// UpdatePresence sets a user's status and unread-message counter.
	// Returns ErrNotFound if the user does not exist.
	UpdatePresence(ctx context.Context, id int64, status string, newMessages int64) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage persists a message and returns it with its assigned ID.
	AppendMessage(ctx context.Context, msg *Message) (*Message, error)

	// ListRoomMessages returns all messages addressed to room, in storage
	// order. Chronological reconstruction is the caller's job.
	ListRoomMessages(ctx context.Context, room string) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
