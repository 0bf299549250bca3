package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/relaychat/relaychat-server/internal/store"
)

// Hub coordinates connections, presence and the persist-then-fan-out relay.
// All commands enter through Dispatch; every failure is scoped to the
// triggering command and reported to the initiator only.
type Hub struct {
	registry *Registry
	store    store.Store
	history  *History
	rooms    []string
	log      *zerolog.Logger
}

// NewHub constructs a hub over the given store. rooms is the configured set
// of known room names served by the rooms listing.
func NewHub(st store.Store, rooms []string, logger *zerolog.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(),
		store:    st,
		history:  NewHistory(st),
		rooms:    rooms,
		log:      logger,
	}
}

// Rooms returns the configured room names.
func (h *Hub) Rooms() []string {
	return h.rooms
}

// Register adds a connection to the registry. The connection receives
// broadcasts from this point on.
func (h *Hub) Register(c *Client) {
	h.registry.Add(c)
	h.log.Debug().Str("conn_id", c.ID).Str("user", c.Name).Msg("client registered")
}

// Unregister drops a connection; membership is cleared implicitly.
func (h *Hub) Unregister(c *Client) {
	h.registry.Remove(c.ID)
	h.log.Debug().Str("conn_id", c.ID).Msg("client unregistered")
}

// Dispatch executes a single command on behalf of a client. It returns a
// CoreError describing the failure, or nil; it never panics the process.
func (h *Hub) Dispatch(ctx context.Context, c *Client, cmd *Command) *CoreError {
	switch cmd.Kind {
	case CommandAnnounce:
		return h.announce(ctx)
	case CommandJoinRoom:
		return h.joinRoom(ctx, c, cmd.Room)
	case CommandSendMessage:
		return h.relay(ctx, c, cmd)
	case CommandLogout:
		return h.Logout(ctx, c.ID, cmd.UserID, cmd.NewMessages)
	default:
		return coreError(ErrCodeBadRequest, "unknown command")
	}
}

// announce broadcasts a full presence snapshot to every connection,
// including the announcer.
func (h *Hub) announce(ctx context.Context) *CoreError {
	users, err := h.store.ListUsers(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("list users for announce")
		return coreError(ErrCodeStoreRead, "failed to load users")
	}

	event := &Event{Kind: EventPresence, Users: users}
	for _, client := range h.registry.All() {
		client.send(event)
	}
	return nil
}

// joinRoom moves the client into room, leaving its previous room in the
// same registry update, then delivers the room history to the caller only.
func (h *Hub) joinRoom(ctx context.Context, c *Client, room string) *CoreError {
	previous := h.registry.SetRoom(c.ID, room)

	groups, err := h.history.RoomHistory(ctx, room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("load history on join")
		return coreError(ErrCodeStoreRead, "failed to load room history")
	}

	h.log.Debug().
		Str("conn_id", c.ID).
		Str("room", room).
		Str("previous", previous).
		Msg("room joined")

	c.send(&Event{Kind: EventRoomHistory, Room: room, Groups: groups})
	return nil
}

// relay persists the message, rebuilds the room history and fans it out to
// the room's members (sender included), then notifies every other
// connection that the room saw activity. A store failure aborts the whole
// relay; nothing is broadcast.
func (h *Hub) relay(ctx context.Context, c *Client, cmd *Command) *CoreError {
	msg := &store.Message{
		Room:    cmd.Room,
		Sender:  cmd.Sender,
		Content: cmd.Content,
		Date:    cmd.Date,
		Time:    cmd.Time,
	}
	saved, err := h.store.AppendMessage(ctx, msg)
	if err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("append message")
		return coreError(ErrCodeStoreWrite, "failed to persist message")
	}

	groups, err := h.history.RoomHistory(ctx, cmd.Room)
	if err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("load history after append")
		return coreError(ErrCodeStoreRead, "failed to load room history")
	}

	h.log.Info().
		Str("room", cmd.Room).
		Str("sender", cmd.Sender).
		Int64("message_id", saved.ID).
		Msg("new message")

	history := &Event{Kind: EventRoomHistory, Room: cmd.Room, Groups: groups}
	for _, member := range h.registry.InRoom(cmd.Room) {
		member.send(history)
	}

	notification := &Event{Kind: EventNotification, Room: cmd.Room}
	for _, other := range h.registry.Except(c.ID) {
		other.send(notification)
	}

	return nil
}

// Logout marks the user offline with the caller-supplied unread counter and
// broadcasts the refreshed presence snapshot to everyone except the
// initiating connection. exclude may be empty when no connection initiated
// the logout. Any failure suppresses the broadcast.
func (h *Hub) Logout(ctx context.Context, exclude string, userID, newMessages int64) *CoreError {
	if _, err := h.store.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return coreError(ErrCodeUserNotFound, "user not found")
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("load user for logout")
		return coreError(ErrCodeStoreRead, "failed to load user")
	}

	if err := h.store.UpdatePresence(ctx, userID, store.StatusOffline, newMessages); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return coreError(ErrCodeUserNotFound, "user not found")
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("update presence on logout")
		return coreError(ErrCodeStoreWrite, "failed to update user")
	}

	users, err := h.store.ListUsers(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("list users after logout")
		return coreError(ErrCodeStoreRead, "failed to load users")
	}

	h.log.Info().Int64("user_id", userID).Msg("user logged out")

	event := &Event{Kind: EventPresence, Users: users}
	for _, client := range h.registry.Except(exclude) {
		client.send(event)
	}
	return nil
}
