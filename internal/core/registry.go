package core

import (
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Participant is a live, uniquely-named occupant of the room, bound to one
// connection.
type Participant struct {
	ConnID   string
	Name     string
	JoinedAt time.Time
}

// Registry is the authoritative mapping of connection to participant. It
// arbitrates display-name uniqueness and produces the online-user snapshot.
// All methods are safe for concurrent use; a single mutex guards the whole
// table, which is plenty at room scale.
type Registry struct {
	mu     sync.Mutex
	byConn map[string]*Participant
	order  []string // connection ids in join order
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byConn: make(map[string]*Participant)}
}

// Join claims name for connID. It rejects whitespace-only names with
// ErrEmptyName and exact-match collisions with ErrNameTaken. The check and the
// insert happen under one lock, so two concurrent joins can never both succeed
// with the same name.
func (r *Registry) Join(connID, name string) (*Participant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.byConn {
		if p.Name == name {
			return nil, ErrNameTaken
		}
	}

	p := &Participant{
		ConnID:   connID,
		Name:     name,
		JoinedAt: time.Now(),
	}
	r.byConn[connID] = p
	r.order = append(r.order, connID)
	return p, nil
}

// Leave removes and returns the participant for connID. It is idempotent:
// leaving an unknown connection reports false and changes nothing.
func (r *Registry) Leave(connID string) (*Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byConn[connID]
	if !ok {
		return nil, false
	}
	delete(r.byConn, connID)
	r.order = lo.Without(r.order, connID)
	return p, true
}

// Get looks up the participant bound to connID.
func (r *Registry) Get(connID string) (*Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byConn[connID]
	return p, ok
}

// Snapshot returns the display names of all participants in join order.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.Map(r.order, func(connID string, _ int) string {
		return r.byConn[connID].Name
	})
}

// Count reports the number of participants, always consistent with Snapshot.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byConn)
}
