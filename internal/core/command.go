package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin claims a display name for the connection.
	CommandJoin CommandKind = iota
	// CommandSendMessage broadcasts a chat message to the room.
	CommandSendMessage
	// CommandTyping announces that the sender started typing.
	CommandTyping
	// CommandStopTyping announces that the sender stopped typing.
	CommandStopTyping
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Name string // for CommandJoin
	Text string // for CommandSendMessage
}
