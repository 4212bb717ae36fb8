// Package live maintains the in-memory mirror of the grievance set and fans
// scoped snapshots out to subscribers (WebSocket clients, dashboard contexts).
package live

import (
	"context"
	"strings"
	"sync"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/google/uuid"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event describes a single change to the grievance set. Origin identifies the
// publishing instance so the redis relay can skip events it produced itself.
type Event struct {
	Type   EventType       `json:"type"`
	Record model.Grievance `json:"record"`
	Origin string          `json:"origin,omitempty"`
}

// Scope decides whether a record is visible to a subscriber.
type Scope func(model.Grievance) bool

// ScopeAll matches every record (admin, faculty and hod dashboards).
func ScopeAll(model.Grievance) bool { return true }

// ScopeSubmitter matches records filed by the given email (student dashboard).
func ScopeSubmitter(email string) Scope {
	return func(g model.Grievance) bool {
		return g.SubmitterEmail == email
	}
}

var hostelKeywords = []string{"hostel", "mess", "room", "accommodation"}

// ScopeHostel is the warden view: a record matches when its category contains
// a hostel-related keyword (case-insensitive) or its department equals
// "hostel". There is no persisted department guarantee, so this is a re-filter
// over the full set rather than a store-level query.
func ScopeHostel(g model.Grievance) bool {
	if g.Department != nil && strings.EqualFold(*g.Department, "hostel") {
		return true
	}
	category := strings.ToLower(string(g.Category))
	for _, kw := range hostelKeywords {
		if strings.Contains(category, kw) {
			return true
		}
	}
	return false
}

// ScopeForRole maps a viewer to the scope of its dashboard.
func ScopeForRole(role model.Role, email string) Scope {
	switch role {
	case model.RoleWarden:
		return ScopeHostel
	case model.RoleAdmin, model.RoleFaculty, model.RoleHod:
		return ScopeAll
	default:
		return ScopeSubmitter(email)
	}
}

// Hub mirrors the current grievance set and fans out scope-filtered snapshots
// to all active subscribers whenever the set changes.
type Hub struct {
	mu      sync.RWMutex
	records map[uuid.UUID]model.Grievance
	subs    map[int]*Subscription
	next    int
}

func NewHub() *Hub {
	return &Hub{
		records: make(map[uuid.UUID]model.Grievance),
		subs:    make(map[int]*Subscription),
	}
}

// Seed replaces the mirrored set, typically with a full load at startup.
func (h *Hub) Seed(records []model.Grievance) {
	h.mu.Lock()
	h.records = make(map[uuid.UUID]model.Grievance, len(records))
	for _, g := range records {
		h.records[g.ID] = g
	}
	h.mu.Unlock()
}

// Apply folds one change event into the mirror and notifies every subscriber
// whose matching set changed. A deletion is record removal, never a status.
func (h *Hub) Apply(evt Event) {
	h.mu.Lock()
	old, existed := h.records[evt.Record.ID]

	switch evt.Type {
	case EventDeleted:
		delete(h.records, evt.Record.ID)
	default:
		h.records[evt.Record.ID] = evt.Record
	}

	var notify []*Subscription
	for _, sub := range h.subs {
		affected := sub.scope(evt.Record)
		if !affected && existed {
			// An update can move a record out of a scope; the old
			// version decides too.
			affected = sub.scope(old)
		}
		if affected {
			notify = append(notify, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range notify {
		sub.deliver(h.snapshotFor(sub.scope))
	}
}

// Snapshot returns a copy of the records matching the scope. Order is not
// meaningful; consumers sort through the projector.
func (h *Hub) Snapshot(scope Scope) []model.Grievance {
	return h.snapshotFor(scope)
}

func (h *Hub) snapshotFor(scope Scope) []model.Grievance {
	h.mu.RLock()
	defer h.mu.RUnlock()

	matched := make([]model.Grievance, 0, len(h.records))
	for _, g := range h.records {
		if scope(g) {
			matched = append(matched, g)
		}
	}
	return matched
}

// Subscribe registers a scoped subscriber. The current snapshot is delivered
// immediately, then a fresh snapshot follows every matching-set change until
// Cancel is called or ctx ends.
func (h *Hub) Subscribe(ctx context.Context, scope Scope) *Subscription {
	sub := &Subscription{
		C:     make(chan []model.Grievance, 16),
		scope: scope,
		hub:   h,
		done:  make(chan struct{}),
	}

	h.mu.Lock()
	sub.id = h.next
	h.next++
	h.subs[sub.id] = sub
	h.mu.Unlock()

	sub.deliver(h.snapshotFor(scope))

	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Cancel()
			case <-sub.done:
				// Cancelled directly; the watcher must not outlive the
				// subscription.
			}
		}()
	}

	return sub
}

// Subscription is a cancellable live view over the grievance set.
type Subscription struct {
	// C receives scope-filtered snapshots. It is closed on Cancel.
	C chan []model.Grievance

	scope Scope
	hub   *Hub
	id    int
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// Cancel detaches the subscription. It is idempotent, and any delivery racing
// with it becomes a no-op rather than a write to a closed channel.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.C)
	close(s.done)
	s.mu.Unlock()

	s.hub.mu.Lock()
	delete(s.hub.subs, s.id)
	s.hub.mu.Unlock()
}

func (s *Subscription) deliver(snapshot []model.Grievance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.C <- snapshot:
	default:
		// Drop when subscriber is slow to avoid blocking; the next
		// change delivers a full snapshot anyway.
	}
}
