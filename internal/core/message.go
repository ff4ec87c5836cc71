package core

import "time"

// Message kinds as rendered by clients.
const (
	MessageKindUser   = "user"
	MessageKindSystem = "system"
)

// SystemUsername is the sender name attached to server-generated messages.
const SystemUsername = "system"

// Message is the domain model for a chat message. Messages are never stored;
// they exist only for the instant of broadcast.
type Message struct {
	From   string
	Text   string
	Kind   string
	SentAt time.Time
}
