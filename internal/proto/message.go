package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeHello    = "hello"
	InboundTypeAnnounce = "new-user"
	InboundTypeJoin     = "join-room"
	InboundTypeMsg      = "message-room"
	InboundTypeLogout   = "logout"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNameMembers       = "new-user"
	EventNameRoomMessages  = "room-messages"
	EventNameNotifications = "notifications"
)

// HelloData is sent by the client to bind an identity to the connection.
type HelloData struct {
	User string `json:"user"`
}

// JoinData requests to join a room. PreviousRoom is accepted for
// compatibility; the server's own membership record drives the leave.
type JoinData struct {
	Room         string `json:"room"`
	PreviousRoom string `json:"previous_room,omitempty"`
}

// MsgData is a chat message from the client.
type MsgData struct {
	Room    string `json:"room"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
	Time    string `json:"time"`
	Date    string `json:"date"`
}

// LogoutData marks a user offline with its unread counter.
type LogoutData struct {
	UserID      int64 `json:"user_id"`
	NewMessages int64 `json:"new_messages"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Member is one entry of a presence snapshot.
type Member struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Status      string `json:"status"`
	NewMessages int64  `json:"new_messages"`
}

// EventMessage is one message inside a history group.
type EventMessage struct {
	ID      int64  `json:"id"`
	Room    string `json:"room"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	Time    string `json:"time"`
	Date    string `json:"date"`
}

// EventMessageGroup is one date bucket of a room's history.
type EventMessageGroup struct {
	Date     string         `json:"date"`
	Messages []EventMessage `json:"messages"`
}

// EventRoomMessages delivers the grouped history of a room.
type EventRoomMessages struct {
	Room   string              `json:"room"`
	Groups []EventMessageGroup `json:"groups"`
}

// EventNotification signals activity in a room to other connections.
type EventNotification struct {
	Room string `json:"room"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
