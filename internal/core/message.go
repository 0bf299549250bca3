package core

import "github.com/relaychat/relaychat-server/internal/store"

// Message is the domain model for a chat message.
type Message struct {
	ID      int64
	Room    string
	Sender  string
	Content string
	Date    string
	Time    string
}

func messageFromStore(m *store.Message) Message {
	return Message{
		ID:      m.ID,
		Room:    m.Room,
		Sender:  m.Sender,
		Content: m.Content,
		Date:    m.Date,
		Time:    m.Time,
	}
}
