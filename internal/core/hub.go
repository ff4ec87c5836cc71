package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type dispatch struct {
	client *Client
	cmd    *Command
}

// Hub routes inbound commands to outbound events. A single run loop owns the
// connection set, so a registry mutation and its fan-out are atomic with
// respect to every other connection's commands. Per-connection ordering is
// preserved because each connection has exactly one reader goroutine feeding
// Dispatch.
type Hub struct {
	registry *Registry
	log      *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	inbox      chan dispatch

	clients map[string]*Client
}

// NewHub creates a hub around the given registry.
func NewHub(registry *Registry, logger *zerolog.Logger) *Hub {
	return &Hub{
		registry:   registry,
		log:        logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbox:      make(chan dispatch, 64),
		clients:    make(map[string]*Client),
	}
}

// RegisterClient adds a connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a connection, releasing its name if it had joined.
// Safe to call for a client that was never registered.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Dispatch hands a command to the hub run loop.
func (h *Hub) Dispatch(c *Client, cmd *Command) {
	h.inbox <- dispatch{client: c, cmd: cmd}
}

// Run processes registrations and commands until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c.ID] = c
			h.log.Debug().Str("client_id", c.ID).Msg("client registered")
		case c := <-h.unregister:
			h.handleDisconnect(c)
		case d := <-h.inbox:
			h.handleCommand(d.client, d.cmd)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	// Dispatch is buffered while unregister is not, so a command can arrive
	// here after its connection was already torn down. Stale commands must
	// not mutate the registry or produce events.
	if _, ok := h.clients[c.ID]; !ok {
		h.log.Debug().Str("client_id", c.ID).Msg("dropping command from departed client")
		return
	}

	switch cmd.Kind {
	case CommandJoin:
		h.handleJoin(c, cmd.Name)
	case CommandSendMessage:
		h.handleMessage(c, cmd.Text)
	case CommandTyping:
		h.handleTyping(c, EventTyping)
	case CommandStopTyping:
		h.handleTyping(c, EventStopTyping)
	}
}

func (h *Hub) handleJoin(c *Client, name string) {
	if _, ok := h.registry.Get(c.ID); ok {
		h.sendTo(c, &Event{
			Kind:  EventError,
			Error: roomError(ErrCodeAlreadyJoined, "already joined"),
		})
		return
	}

	p, err := h.registry.Join(c.ID, name)
	if err != nil {
		code := ErrCodeNameTaken
		if err == ErrEmptyName {
			code = ErrCodeEmptyName
		}
		h.log.Debug().Str("client_id", c.ID).Str("username", name).Err(err).Msg("join rejected")
		h.sendTo(c, &Event{
			Kind:  EventError,
			Error: roomError(code, err.Error()),
		})
		return
	}

	now := time.Now()
	h.sendTo(c, &Event{
		Kind:  EventUserList,
		Users: h.registry.Snapshot(),
	})
	h.sendTo(c, &Event{
		Kind: EventMessage,
		Message: Message{
			From:   SystemUsername,
			Text:   fmt.Sprintf("Welcome %s to the room!", p.Name),
			Kind:   MessageKindSystem,
			SentAt: now,
		},
	})
	h.broadcast(&Event{
		Kind:      EventUserJoined,
		User:      p.Name,
		Timestamp: now,
	}, c)

	h.log.Info().Str("client_id", c.ID).Str("username", p.Name).Msg("user joined")
}

func (h *Hub) handleMessage(c *Client, text string) {
	p, ok := h.registry.Get(c.ID)
	if !ok {
		h.rejectUnjoined(c)
		return
	}

	// The sender receives its own message too and renders it with an "own
	// message" style; there is no local echo on the client.
	h.broadcast(&Event{
		Kind: EventMessage,
		Message: Message{
			From:   p.Name,
			Text:   text,
			Kind:   MessageKindUser,
			SentAt: time.Now(),
		},
	}, nil)
}

func (h *Hub) handleTyping(c *Client, kind EventKind) {
	p, ok := h.registry.Get(c.ID)
	if !ok {
		h.rejectUnjoined(c)
		return
	}
	h.broadcast(&Event{Kind: kind, User: p.Name}, c)
}

func (h *Hub) handleDisconnect(c *Client) {
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	// Events is never closed here: the transport write loop exits via its
	// context, and closing would blow up on a command that was buffered
	// before the disconnect.
	delete(h.clients, c.ID)

	p, ok := h.registry.Leave(c.ID)
	if !ok {
		// Never joined; nothing to announce.
		return
	}

	h.broadcast(&Event{
		Kind:      EventUserLeft,
		User:      p.Name,
		Timestamp: time.Now(),
	}, nil)
	h.log.Info().Str("client_id", c.ID).Str("username", p.Name).Msg("user left")
}

func (h *Hub) rejectUnjoined(c *Client) {
	h.sendTo(c, &Event{
		Kind:  EventError,
		Error: roomError(ErrCodeNotJoined, "join required"),
	})
}

// broadcast fans out an event to every registered client except the excluded
// one. Fan-out is fire-and-forget: a recipient whose buffer is full is
// skipped rather than blocking the room.
func (h *Hub) broadcast(event *Event, except *Client) {
	for _, client := range h.clients {
		if client == except {
			continue
		}
		h.sendTo(client, event)
	}
}

func (h *Hub) sendTo(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		h.log.Warn().Str("client_id", c.ID).Msg("dropping event for slow consumer")
	}
}
