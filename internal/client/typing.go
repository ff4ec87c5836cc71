package client

import (
	"sync"
	"time"
)

const typingQuiet = time.Second

// TypingNotifier turns a stream of input events into at most one typing
// announcement, followed by a stop-typing once the user goes quiet for a
// second or sends the message.
type TypingNotifier struct {
	start func()
	stop  func()
	quiet time.Duration

	mu     sync.Mutex
	active bool
	timer  *time.Timer
}

// NewTypingNotifier wires the notifier to start/stop callbacks.
func NewTypingNotifier(start, stop func()) *TypingNotifier {
	return &TypingNotifier{start: start, stop: stop, quiet: typingQuiet}
}

// Input records a keystroke. The first one announces typing; every one resets
// the quiet timer.
func (t *TypingNotifier) Input() {
	t.mu.Lock()
	first := !t.active
	t.active = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.quiet, t.Stop)
	t.mu.Unlock()

	if first {
		t.start()
	}
}

// Stop cancels the timer and announces stop-typing if typing was announced.
func (t *TypingNotifier) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	wasActive := t.active
	t.active = false
	t.mu.Unlock()

	if wasActive {
		t.stop()
	}
}
