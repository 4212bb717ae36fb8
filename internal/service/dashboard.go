package service

import (
	"context"
	"sync"

	"github.com/Mathumitha-create/grievance-cell/internal/live"
	"github.com/Mathumitha-create/grievance-cell/internal/model"
)

// Dashboard identifies which dashboard a viewer sees.
type Dashboard string

const (
	DashboardUnauthenticated Dashboard = "unauthenticated"
	DashboardLoadingRole     Dashboard = "loading_role"
	DashboardStudent         Dashboard = "student"
	DashboardWarden          Dashboard = "warden"
	DashboardFacultyOrHod    Dashboard = "faculty_or_hod"
	DashboardAdmin           Dashboard = "admin"
)

// SelectDashboard is the pure routing function: faculty and hod share one
// dashboard, and an authenticated viewer without a resolved role is still
// loading.
func SelectDashboard(authenticated bool, role model.Role) Dashboard {
	if !authenticated {
		return DashboardUnauthenticated
	}
	switch role {
	case model.RoleAdmin:
		return DashboardAdmin
	case model.RoleWarden:
		return DashboardWarden
	case model.RoleFaculty, model.RoleHod:
		return DashboardFacultyOrHod
	case model.RoleStudent:
		return DashboardStudent
	default:
		return DashboardLoadingRole
	}
}

// DashboardContext owns the live subscriptions opened for a signed-in
// viewer. Sign-out cancels every subscription before the context is reused,
// so a later login as a different identity can never receive data scoped to
// the previous role.
type DashboardContext struct {
	hub *live.Hub

	mu     sync.Mutex
	subs   []*live.Subscription
	role   model.Role
	email  string
	active bool
}

func NewDashboardContext(hub *live.Hub) *DashboardContext {
	return &DashboardContext{hub: hub}
}

// SignIn activates the context for a resolved identity and returns the
// dashboard to render.
func (d *DashboardContext) SignIn(role model.Role, email string) Dashboard {
	d.mu.Lock()
	d.role = role
	d.email = email
	d.active = true
	d.mu.Unlock()
	return SelectDashboard(true, role)
}

// Subscribe opens a live subscription scoped to the signed-in role. The
// subscription is tracked so SignOut can cancel it.
func (d *DashboardContext) Subscribe(ctx context.Context) *live.Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		return nil
	}
	sub := d.hub.Subscribe(ctx, live.ScopeForRole(d.role, d.email))
	d.subs = append(d.subs, sub)
	return sub
}

// SignOut cancels all open subscriptions and returns to the
// unauthenticated state.
func (d *DashboardContext) SignOut() Dashboard {
	d.mu.Lock()
	subs := d.subs
	d.subs = nil
	d.role = ""
	d.email = ""
	d.active = false
	d.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	return DashboardUnauthenticated
}

// Dashboard reports the current dashboard for the context.
func (d *DashboardContext) Dashboard() Dashboard {
	d.mu.Lock()
	defer d.mu.Unlock()
	return SelectDashboard(d.active, d.role)
}
