package core

import (
	"context"
	"sort"
	"strings"

	"github.com/relaychat/relaychat-server/internal/store"
)

// MessageGroup is one calendar date's worth of messages for a room.
type MessageGroup struct {
	Date     string
	Messages []Message
}

// History rebuilds the date-grouped view of a room's persisted messages.
// Groups are produced fresh on every call, never cached.
type History struct {
	messages store.MessageStore
}

// NewHistory constructs a history reconstructor over a message store.
func NewHistory(messages store.MessageStore) *History {
	return &History{messages: messages}
}

// RoomHistory returns one group per distinct date value present among the
// room's messages, ordered ascending by the transposed date key. Messages
// inside a group keep storage order. A room with no messages yields an
// empty slice.
func (h *History) RoomHistory(ctx context.Context, room string) ([]MessageGroup, error) {
	msgs, err := h.messages.ListRoomMessages(ctx, room)
	if err != nil {
		return nil, err
	}
	return GroupByDate(msgs), nil
}

// GroupByDate buckets messages by exact date-string equality, preserving
// input order within each bucket, then sorts the buckets by date key.
func GroupByDate(msgs []*store.Message) []MessageGroup {
	groups := make([]MessageGroup, 0, len(msgs))
	index := make(map[string]int)

	for _, m := range msgs {
		i, ok := index[m.Date]
		if !ok {
			i = len(groups)
			index[m.Date] = i
			groups = append(groups, MessageGroup{Date: m.Date})
		}
		groups[i].Messages = append(groups[i].Messages, messageFromStore(m))
	}

	sort.Slice(groups, func(i, j int) bool {
		return dateSortKey(groups[i].Date) < dateSortKey(groups[j].Date)
	})

	return groups
}

// dateSortKey rebuilds a slash-separated date for lexicographic comparison
// by moving the year in front of the first two fields, keeping their
// original order. This matches the comparison the production relay has
// always used; clients depend on the resulting ordering as-is.
func dateSortKey(date string) string {
	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return date
	}
	return parts[2] + parts[0] + parts[1]
}
