package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/Mathumitha-create/grievance-cell/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity is the opaque result of authentication: who the identity provider
// says the caller is. The resolver never verifies credentials.
type Identity struct {
	ID            uuid.UUID
	Email         string
	DisplayName   string
	EmailVerified bool
}

// RoleResolver maps an authenticated identity to exactly one role. A
// persisted role is authoritative; otherwise the role is derived from lexical
// cues in the email and persisted for subsequent logins.
type RoleResolver interface {
	Resolve(ctx context.Context, identity Identity) model.Role
}

type roleResolver struct {
	users repository.UserRepository
}

func NewRoleResolver(users repository.UserRepository) RoleResolver {
	return &roleResolver{users: users}
}

// Resolve never fails: store errors and missing records fall back to the
// derived role so login is not blocked on the round-trip.
func (r *roleResolver) Resolve(ctx context.Context, identity Identity) model.Role {
	user, err := r.users.FindByID(ctx, identity.ID)
	if err == nil && user.Role.Valid() {
		return user.Role
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("role lookup failed for %s, deriving from email: %v", identity.Email, err)
		return DeriveRole(identity.Email)
	}

	role := DeriveRole(identity.Email)

	// First login: persist the derived role so the stored value is
	// authoritative from now on. A failure here only delays that until
	// the next login.
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record := &model.User{
			ID:    identity.ID,
			Email: identity.Email,
			Role:  role,
		}
		if identity.DisplayName != "" {
			name := identity.DisplayName
			record.DisplayName = &name
		}
		if createErr := r.users.Create(ctx, record); createErr != nil {
			log.Printf("failed to persist derived role for %s: %v", identity.Email, createErr)
		}
	}

	return role
}

// DeriveRole scans the email for role cues, first match wins:
// admin > warden > hod > faculty, anything else is a student.
func DeriveRole(email string) model.Role {
	lowered := strings.ToLower(email)
	switch {
	case strings.Contains(lowered, "admin"):
		return model.RoleAdmin
	case strings.Contains(lowered, "warden"):
		return model.RoleWarden
	case strings.Contains(lowered, "hod"):
		return model.RoleHod
	case strings.Contains(lowered, "faculty"):
		return model.RoleFaculty
	default:
		return model.RoleStudent
	}
}
