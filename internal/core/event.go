package core

import "github.com/relaychat/relaychat-server/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventPresence carries a full snapshot of known users and their state.
	EventPresence EventKind = iota
	// EventRoomHistory delivers the date-grouped message history of a room.
	EventRoomHistory
	// EventNotification signals activity in a room to connections outside it.
	EventNotification
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind   EventKind
	Room   string
	Users  []*store.User  // for EventPresence
	Groups []MessageGroup // for EventRoomHistory
	Error  *CoreError
}
