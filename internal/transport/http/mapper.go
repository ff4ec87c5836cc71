package http

import (
	"roomchat/internal/core"
	"roomchat/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.ErrorEvent) {
	switch inbound.Type {
	case proto.TypeJoin:
		// Empty names are forwarded; the registry owns that rejection.
		return &core.Command{Kind: core.CommandJoin, Name: inbound.Username}, nil
	case proto.TypeMessage:
		return &core.Command{Kind: core.CommandSendMessage, Text: inbound.Message}, nil
	case proto.TypeTyping:
		return &core.Command{Kind: core.CommandTyping}, nil
	case proto.TypeStopTyping:
		return &core.Command{Kind: core.CommandStopTyping}, nil
	default:
		return nil, &proto.ErrorEvent{
			Type:    proto.TypeError,
			Code:    core.ErrCodeInvalidMessage,
			Message: "unknown message type",
		}
	}
}

func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventUserList:
		users := event.Users
		if users == nil {
			users = []string{}
		}
		return proto.UserList{Type: proto.TypeUserList, Users: users}
	case core.EventMessage:
		return proto.ChatMessage{
			Type:      proto.TypeMessage,
			Username:  event.Message.From,
			Message:   event.Message.Text,
			Timestamp: event.Message.SentAt.UnixMilli(),
			Kind:      event.Message.Kind,
		}
	case core.EventUserJoined:
		return proto.Presence{
			Type:      proto.TypeUserJoined,
			Username:  event.User,
			Timestamp: event.Timestamp.UnixMilli(),
		}
	case core.EventUserLeft:
		return proto.Presence{
			Type:      proto.TypeUserLeft,
			Username:  event.User,
			Timestamp: event.Timestamp.UnixMilli(),
		}
	case core.EventTyping:
		return proto.Typing{Type: proto.TypeTyping, Username: event.User}
	case core.EventStopTyping:
		return proto.Typing{Type: proto.TypeStopTyping, Username: event.User}
	case core.EventError:
		if event.Error == nil {
			return proto.ErrorEvent{Type: proto.TypeError, Message: "unknown error"}
		}
		return proto.ErrorEvent{
			Type:    proto.TypeError,
			Code:    event.Error.Code,
			Message: event.Error.Message,
		}
	default:
		return proto.ErrorEvent{Type: proto.TypeError, Message: "unknown event"}
	}
}
