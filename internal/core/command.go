package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandAnnounce asks for a presence snapshot broadcast to everyone.
	CommandAnnounce CommandKind = iota
	// CommandJoinRoom moves the client into a room, leaving its current one.
	CommandJoinRoom
	// CommandSendMessage persists a message and relays the room history.
	CommandSendMessage
	// CommandLogout marks a user offline and broadcasts the new snapshot.
	CommandLogout
)

// Command represents an action requested by a client.
type Command struct {
	Kind         CommandKind
	Room         string
	PreviousRoom string
	Content      string
	Sender       string
	Time         string
	Date         string
	UserID       int64
	NewMessages  int64
}
