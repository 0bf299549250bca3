package core

import "sync"

// Registry is the broker-owned record of live connections and their current
// room. A connection belongs to at most one room; SetRoom swaps the
// membership under a single lock acquisition so no broadcast snapshot can
// observe a connection in two rooms, or in none, mid-switch.
//
// Reads take a snapshot and release the lock before anyone sends; a
// broadcast may therefore miss a connection that leaves mid-broadcast or
// include one about to leave. Both are accepted.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]string // connection id -> current room
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		rooms:   make(map[string]string),
	}
}

// Add inserts a client. The connection starts out in no room.
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
}

// Remove deletes a client and clears its room membership.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
	delete(r.rooms, id)
}

// SetRoom records the client's current room and returns the previous one
// (empty if the connection was unjoined).
func (r *Registry) SetRoom(id, room string) (previous string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous = r.rooms[id]
	r.rooms[id] = room
	return previous
}

// Room returns the client's current room, empty if unjoined or unknown.
func (r *Registry) Room(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[id]
}

// All returns a snapshot of every connected client.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// InRoom returns a snapshot of the clients currently joined to room.
func (r *Registry) InRoom(room string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Client
	for id, c := range r.clients {
		if r.rooms[id] == room {
			out = append(out, c)
		}
	}
	return out
}

// Except returns a snapshot of every client but the given connection.
func (r *Registry) Except(id string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Client
	for cid, c := range r.clients {
		if cid != id {
			out = append(out, c)
		}
	}
	return out
}
