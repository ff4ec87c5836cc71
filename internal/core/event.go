package core

import "time"

// EventKind is a notification the hub emits to clients.
type EventKind int

const (
	// EventUserList delivers the authoritative roster snapshot to one client.
	EventUserList EventKind = iota
	// EventMessage carries a chat or system message.
	EventMessage
	// EventUserJoined notifies others that a user entered the room.
	EventUserJoined
	// EventUserLeft notifies others that a user left the room.
	EventUserLeft
	// EventTyping notifies others that a user started typing.
	EventTyping
	// EventStopTyping notifies others that a user stopped typing.
	EventStopTyping
	// EventError reports a rejected command to its sender.
	EventError
)

// Event is sent to clients to describe what happened in the room.
type Event struct {
	Kind      EventKind
	Users     []string // for EventUserList
	User      string   // for join/left/typing events
	Message   Message  // for EventMessage
	Timestamp time.Time
	Error     *RoomError // non-nil for EventError
}
