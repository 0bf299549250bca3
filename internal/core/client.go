package core

// Client is a chat connection as seen by the core layer.
type Client struct {
	ID     string
	Name   string
	Events chan *Event
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id, name string) *Client {
	if name == "" {
		name = id
	}
	return &Client{
		ID:     id,
		Name:   name,
		Events: make(chan *Event, 8),
	}
}

// send delivers an event without blocking. Slow consumers drop events
// rather than stalling a broadcast.
func (c *Client) send(event *Event) {
	select {
	case c.Events <- event:
	default:
	}
}
