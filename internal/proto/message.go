// Package proto defines the JSON envelopes exchanged over the WebSocket.
// Every frame is a flat object with a "type" discriminator and the payload
// fields alongside it.
package proto

import "encoding/json"

// Client-to-server frame types.
const (
	TypeJoin       = "join"
	TypeMessage    = "message"
	TypeTyping     = "typing"
	TypeStopTyping = "stop-typing"
)

// Server-to-client frame types. TypeMessage and the typing pair are shared
// with the inbound direction.
const (
	TypeUserList   = "user-list"
	TypeUserJoined = "user-joined"
	TypeUserLeft   = "user-left"
	TypeError      = "error"
)

// Inbound is a frame coming from the client.
type Inbound struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"` // join
	Message  string `json:"message,omitempty"`  // message
}

// UserList replaces the recipient's entire roster.
type UserList struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

// ChatMessage is a user or system message. Kind travels as "msg_type" so it
// does not collide with the envelope discriminator.
type ChatMessage struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Kind      string `json:"msg_type"`  // "user" or "system"
}

// Presence announces a user joining or leaving.
type Presence struct {
	Type      string `json:"type"` // TypeUserJoined or TypeUserLeft
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

// Typing announces a typing state change.
type Typing struct {
	Type     string `json:"type"` // TypeTyping or TypeStopTyping
	Username string `json:"username"`
}

// ErrorEvent reports a rejected frame to its sender.
type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Outbound is the union view a client decodes every server frame into.
type Outbound struct {
	Type      string   `json:"type"`
	Users     []string `json:"users,omitempty"`
	Username  string   `json:"username,omitempty"`
	Message   string   `json:"message,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
	Kind      string   `json:"msg_type,omitempty"`
	Code      string   `json:"code,omitempty"`
}

// ParseOutbound decodes a server frame. For typing frames it also accepts the
// legacy shorthand where "username" is the only payload and may arrive as a
// bare string under "data".
func ParseOutbound(raw []byte) (Outbound, error) {
	var out Outbound
	if err := json.Unmarshal(raw, &out); err != nil {
		return Outbound{}, err
	}
	if (out.Type == TypeTyping || out.Type == TypeStopTyping) && out.Username == "" {
		var legacy struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(raw, &legacy); err == nil {
			out.Username = legacy.Data
		}
	}
	return out, nil
}
