package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"roomchat/internal/proto"
)

const (
	maxReconnectAttempts = 5
	reconnectBaseDelay   = 2 * time.Second
)

// Options configures a Session.
type Options struct {
	URL      string
	Logger   *zerolog.Logger
	OnEvent  func(proto.Outbound) // server-pushed events
	OnNotice func(string)         // user-visible session notices
	Dial     DialFunc             // defaults to Dial
	Schedule ScheduleFunc         // defaults to time.AfterFunc
}

// ScheduleFunc runs fn after d and returns a cancel function.
type ScheduleFunc func(d time.Duration, fn func()) (cancel func())

// Session owns one physical channel at a time: it dials, re-announces the
// established identity after every successful open, and drives the
// reconnection policy when an active chat session loses its channel.
type Session struct {
	url      string
	log      *zerolog.Logger
	onEvent  func(proto.Outbound)
	onNotice func(string)
	dial     DialFunc
	schedule ScheduleFunc

	mu          sync.Mutex
	conn        Conn
	identity    string
	inChat      bool // a user-list arrived; the chat view is active
	attempts    int
	cancelRetry func()
	closed      bool
}

// NewSession builds a session controller. It does not connect.
func NewSession(opts Options) *Session {
	s := &Session{
		url:      opts.URL,
		log:      opts.Logger,
		onEvent:  opts.OnEvent,
		onNotice: opts.OnNotice,
		dial:     opts.Dial,
		schedule: opts.Schedule,
	}
	if s.log == nil {
		nop := zerolog.Nop()
		s.log = &nop
	}
	if s.dial == nil {
		s.dial = Dial
	}
	if s.schedule == nil {
		s.schedule = func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		}
	}
	if s.onEvent == nil {
		s.onEvent = func(proto.Outbound) {}
	}
	if s.onNotice == nil {
		s.onNotice = func(string) {}
	}
	return s
}

// Join establishes the identity and connects if no channel is open. The
// server may still reject the name; the rejection arrives as an error event.
func (s *Session) Join(ctx context.Context, name string) error {
	s.mu.Lock()
	s.identity = name
	connected := s.conn != nil
	s.mu.Unlock()

	if !connected {
		return s.Connect(ctx)
	}
	s.Send(ctx, proto.Inbound{Type: proto.TypeJoin, Username: name})
	return nil
}

// Connect opens a channel. On success the attempt counter resets and, if an
// identity was previously established, a fresh join is announced immediately.
// The registry treats that re-join as any other attempt: if the name was
// claimed meanwhile, the user ends up unjoined with an error event and no
// automatic rename.
func (s *Session) Connect(ctx context.Context) error {
	conn, err := s.dial(ctx, s.url)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.attempts = 0
	identity := s.identity
	s.mu.Unlock()

	if identity != "" {
		s.Send(ctx, proto.Inbound{Type: proto.TypeJoin, Username: identity})
	}

	go s.readLoop(ctx, conn)
	return nil
}

// Send writes an event to the channel. When no channel is open the event is
// silently dropped; there is no outbound buffering.
func (s *Session) Send(ctx context.Context, v any) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		s.log.Debug().Msg("send dropped, channel not open")
		return
	}
	if err := conn.Write(ctx, v); err != nil {
		s.log.Debug().Err(err).Msg("send failed")
	}
}

// SendMessage broadcasts a chat message.
func (s *Session) SendMessage(ctx context.Context, text string) {
	s.Send(ctx, proto.Inbound{Type: proto.TypeMessage, Message: text})
}

// Typing announces that the user started typing.
func (s *Session) Typing(ctx context.Context) {
	s.Send(ctx, proto.Inbound{Type: proto.TypeTyping})
}

// StopTyping announces that the user stopped typing.
func (s *Session) StopTyping(ctx context.Context) {
	s.Send(ctx, proto.Inbound{Type: proto.TypeStopTyping})
}

// Close tears the session down for good. No reconnection follows.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancelRetry != nil {
		s.cancelRetry()
		s.cancelRetry = nil
	}
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// InChat reports whether a user-list snapshot ever arrived, i.e. the user
// made it past the login view.
func (s *Session) InChat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inChat
}

func (s *Session) readLoop(ctx context.Context, conn Conn) {
	for {
		ev, err := conn.ReadEvent(ctx)
		if err != nil {
			s.handleClosed(ctx)
			return
		}
		if ev.Type == proto.TypeUserList {
			s.mu.Lock()
			s.inChat = true
			s.mu.Unlock()
		}
		s.onEvent(ev)
	}
}

// handleClosed implements the backoff policy: attempt n (1-indexed, at most
// 5) waits 2000ms × n before redialing. A closure before the chat view ever
// opened is an aborted initial connection and triggers nothing.
func (s *Session) handleClosed(ctx context.Context) {
	s.mu.Lock()
	s.conn = nil
	if s.closed || !s.inChat {
		s.mu.Unlock()
		return
	}
	s.attempts++
	attempt := s.attempts
	s.mu.Unlock()

	if attempt > maxReconnectAttempts {
		s.onNotice("reconnection failed, giving up")
		return
	}

	delay := reconnectBaseDelay * time.Duration(attempt)
	s.onNotice(fmt.Sprintf("disconnected, retrying in %s (%d/%d)", delay, attempt, maxReconnectAttempts))
	s.log.Warn().Int("attempt", attempt).Dur("delay", delay).Msg("scheduling reconnect")

	cancel := s.schedule(delay, func() {
		// Close may have raced the timer; a fired callback must not redial
		// a session that was deliberately torn down.
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		if err := s.Connect(ctx); err != nil {
			s.log.Warn().Err(err).Msg("reconnect dial failed")
			s.handleClosed(ctx)
		}
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancelRetry = cancel
	s.mu.Unlock()
}
