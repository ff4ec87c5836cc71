package client

import (
	"sort"
	"sync"

	"roomchat/internal/proto"
)

// View derives the rendered roster and typing indicators purely from
// server-pushed events. The roster is only ever replaced wholesale by a
// user-list snapshot or trimmed by user-left; user-joined is narrative and
// never appends, so out-of-order arrivals cannot make the list drift.
type View struct {
	mu     sync.Mutex
	self   string
	roster []string
	typing map[string]struct{}
}

// NewView builds a view for the named local user.
func NewView(self string) *View {
	return &View{
		self:   self,
		typing: make(map[string]struct{}),
	}
}

// Apply folds one server event into the view.
func (v *View) Apply(ev proto.Outbound) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch ev.Type {
	case proto.TypeUserList:
		v.roster = append([]string(nil), ev.Users...)
	case proto.TypeUserLeft:
		v.remove(ev.Username)
		delete(v.typing, ev.Username)
	case proto.TypeTyping:
		if ev.Username != v.self {
			v.typing[ev.Username] = struct{}{}
		}
	case proto.TypeStopTyping:
		delete(v.typing, ev.Username)
	}
}

func (v *View) remove(name string) {
	for i, n := range v.roster {
		if n == name {
			v.roster = append(v.roster[:i], v.roster[i+1:]...)
			return
		}
	}
}

// Roster returns a copy of the rendered user list.
func (v *View) Roster() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.roster...)
}

// Count reports the online count shown next to the roster.
func (v *View) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.roster)
}

// TypingNames returns the users with an active typing indicator, sorted.
func (v *View) TypingNames() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	names := make([]string, 0, len(v.typing))
	for n := range v.typing {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
