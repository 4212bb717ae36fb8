package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of access roles. A user holds exactly one.
type Role string

const (
	RoleStudent Role = "student"
	RoleWarden  Role = "warden"
	RoleFaculty Role = "faculty"
	RoleHod     Role = "hod"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleWarden, RoleFaculty, RoleHod, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may change grievance status.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleWarden, RoleFaculty, RoleHod:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	DisplayName  *string   `gorm:"size:100" json:"display_name,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:20;not null;default:'student'" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
