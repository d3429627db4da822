package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Notification is a transient advisory message. Not persisted anywhere; a
// restart drops all of them.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type entry struct {
	notification Notification
	timer        *time.Timer
}

// Scheduler is a per-mount-point queue of self-expiring notifications. Each
// UI surface owns its own instance; nothing is shared across mount points,
// unlike the cart.
type Scheduler struct {
	mu      sync.Mutex
	order   []uuid.UUID
	entries map[uuid.UUID]*entry
}

func NewScheduler() *Scheduler {
	return &Scheduler{entries: make(map[uuid.UUID]*entry)}
}

// Enqueue appends a notification to the active set and arms its expiry timer.
// The returned id can be used to dismiss it early.
func (s *Scheduler) Enqueue(message string, kind Kind, ttl time.Duration) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	e := &entry{
		notification: Notification{
			ID:        id,
			Message:   message,
			Kind:      kind,
			CreatedAt: time.Now(),
		},
	}
	e.timer = time.AfterFunc(ttl, func() {
		s.remove(id)
	})

	s.entries[id] = e
	s.order = append(s.order, id)
	return id
}

// Dismiss removes a notification immediately, independent of its timer. The
// timer firing afterwards for the same id is a no-op.
func (s *Scheduler) Dismiss(id uuid.UUID) {
	s.remove(id)
}

// Active returns the live notifications in enqueue order.
func (s *Scheduler) Active() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].notification)
	}
	return out
}

// Close stops every pending timer and drops the active set.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		e.timer.Stop()
	}
	s.entries = make(map[uuid.UUID]*entry)
	s.order = nil
}

// remove is idempotent by construction: manual dismissal and automatic expiry
// race against each other, and the loser must be a no-op, not a fault.
func (s *Scheduler) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return
	}
	e.timer.Stop()
	delete(s.entries, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
