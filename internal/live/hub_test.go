package live

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostelGrievance(email string) model.Grievance {
	return model.Grievance{
		ID:             uuid.New(),
		Title:          "Mess food",
		Category:       model.CategoryHostel,
		Status:         model.StatusPending,
		SubmitterEmail: email,
		CreatedAt:      time.Now(),
	}
}

func transportGrievance(email string) model.Grievance {
	return model.Grievance{
		ID:             uuid.New(),
		Title:          "Bus delay",
		Category:       model.CategoryTransport,
		Status:         model.StatusPending,
		SubmitterEmail: email,
		CreatedAt:      time.Now(),
	}
}

func TestScopeHostel(t *testing.T) {
	t.Run("hostel category matches", func(t *testing.T) {
		assert.True(t, ScopeHostel(hostelGrievance("a@sece.ac.in")))
	})

	t.Run("transport category does not", func(t *testing.T) {
		assert.False(t, ScopeHostel(transportGrievance("a@sece.ac.in")))
	})

	t.Run("hostel department matches regardless of category", func(t *testing.T) {
		dept := "Hostel"
		g := transportGrievance("a@sece.ac.in")
		g.Department = &dept
		assert.True(t, ScopeHostel(g))
	})

	t.Run("other departments do not widen the scope", func(t *testing.T) {
		dept := "Transport"
		g := transportGrievance("a@sece.ac.in")
		g.Department = &dept
		assert.False(t, ScopeHostel(g))
	})
}

func TestScopeForRole(t *testing.T) {
	mine := hostelGrievance("me@sece.ac.in")
	theirs := transportGrievance("them@sece.ac.in")

	student := ScopeForRole(model.RoleStudent, "me@sece.ac.in")
	assert.True(t, student(mine))
	assert.False(t, student(theirs))

	warden := ScopeForRole(model.RoleWarden, "warden@sece.ac.in")
	assert.True(t, warden(mine))
	assert.False(t, warden(theirs))

	for _, role := range []model.Role{model.RoleAdmin, model.RoleFaculty, model.RoleHod} {
		scope := ScopeForRole(role, "staff@sece.ac.in")
		assert.True(t, scope(mine), "role %s", role)
		assert.True(t, scope(theirs), "role %s", role)
	}
}

func TestHub_SubscribeDeliversInitialSnapshot(t *testing.T) {
	hub := NewHub()
	g := hostelGrievance("a@sece.ac.in")
	hub.Seed([]model.Grievance{g, transportGrievance("b@sece.ac.in")})

	sub := hub.Subscribe(context.Background(), ScopeHostel)
	defer sub.Cancel()

	snapshot := <-sub.C
	require.Len(t, snapshot, 1)
	assert.Equal(t, g.ID, snapshot[0].ID)
}

func TestHub_ApplyFansOutToMatchingScopes(t *testing.T) {
	hub := NewHub()

	all := hub.Subscribe(context.Background(), ScopeAll)
	defer all.Cancel()
	warden := hub.Subscribe(context.Background(), ScopeHostel)
	defer warden.Cancel()
	<-all.C
	<-warden.C

	hub.Apply(Event{Type: EventCreated, Record: transportGrievance("a@sece.ac.in")})

	require.Len(t, <-all.C, 1)
	select {
	case snapshot := <-warden.C:
		t.Fatalf("warden scope received unrelated change: %v", snapshot)
	default:
	}

	hub.Apply(Event{Type: EventCreated, Record: hostelGrievance("a@sece.ac.in")})
	assert.Len(t, <-all.C, 2)
	assert.Len(t, <-warden.C, 1)
}

func TestHub_UpdateMovingOutOfScopeStillNotifies(t *testing.T) {
	hub := NewHub()
	g := hostelGrievance("a@sece.ac.in")
	hub.Seed([]model.Grievance{g})

	warden := hub.Subscribe(context.Background(), ScopeHostel)
	defer warden.Cancel()
	require.Len(t, <-warden.C, 1)

	// Recategorized away from the hostel scope: the warden view shrinks and
	// must learn about it.
	g.Category = model.CategoryAdministrative
	hub.Apply(Event{Type: EventUpdated, Record: g})

	assert.Empty(t, <-warden.C)
}

func TestHub_DeleteConvergesAcrossScopes(t *testing.T) {
	hub := NewHub()
	g := hostelGrievance("a@sece.ac.in")
	hub.Seed([]model.Grievance{g})

	submitter := hub.Subscribe(context.Background(), ScopeSubmitter("a@sece.ac.in"))
	defer submitter.Cancel()
	admin := hub.Subscribe(context.Background(), ScopeAll)
	defer admin.Cancel()
	<-submitter.C
	<-admin.C

	hub.Apply(Event{Type: EventDeleted, Record: g})

	assert.Empty(t, <-submitter.C)
	assert.Empty(t, <-admin.C)
	assert.Empty(t, hub.Snapshot(ScopeAll))
}

func TestSubscription_CancelIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(context.Background(), ScopeAll)
	<-sub.C

	sub.Cancel()
	sub.Cancel()

	_, open := <-sub.C
	assert.False(t, open)

	// Deliveries after cancel are dropped, not sent to a closed channel.
	hub.Apply(Event{Type: EventCreated, Record: hostelGrievance("a@sece.ac.in")})
}

func TestHub_ContextCancelDetachesSubscriber(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	sub := hub.Subscribe(ctx, ScopeAll)
	<-sub.C

	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-sub.C:
			return !open
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestSubscription_CancelReleasesContextWatcher(t *testing.T) {
	hub := NewHub()
	base := runtime.NumGoroutine()

	subs := make([]*Subscription, 0, 8)
	for i := 0; i < 8; i++ {
		// A background context never fires Done; Cancel must still stop
		// the watcher.
		subs = append(subs, hub.Subscribe(context.Background(), ScopeAll))
	}
	for _, sub := range subs {
		sub.Cancel()
	}

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= base
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(context.Background(), ScopeAll)
	defer sub.Cancel()

	// Never read: fill the buffer well past capacity. Apply must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 64; i++ {
			hub.Apply(Event{Type: EventCreated, Record: hostelGrievance("a@sece.ac.in")})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub blocked on a slow subscriber")
	}
}
