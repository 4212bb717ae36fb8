package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is the closed set of grievance categories. Declaration order
// matters: it is the tie-break order used by the classifier.
type Category string

const (
	CategoryAcademic       Category = "Academic"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryHostel         Category = "Hostel"
	CategoryLibrary        Category = "Library"
	CategoryTransport      Category = "Transport"
	CategoryAdministrative Category = "Administrative"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryAcademic,
	CategoryInfrastructure,
	CategoryHostel,
	CategoryLibrary,
	CategoryTransport,
	CategoryAdministrative,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusEscalated  Status = "Escalated"
)

// Statuses lists every valid status value.
var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved, StatusEscalated}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusEscalated:
		return true
	}
	return false
}

// MaxAttachmentSize is the largest attachment accepted, in bytes (500 KiB).
const MaxAttachmentSize = 500 * 1024

type Grievance struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	Category       Category  `gorm:"size:50;not null" json:"category"`
	Status         Status    `gorm:"size:20;not null;default:'Pending'" json:"status"`
	SubmitterID    uuid.UUID `gorm:"type:uuid;not null" json:"submitter_id"`
	SubmitterEmail string    `gorm:"size:100;not null;index" json:"submitter_email"`
	Department     *string   `gorm:"size:50" json:"department,omitempty"`

	AttachmentURL  *string `gorm:"type:text" json:"attachment_url,omitempty"`
	AttachmentName *string `gorm:"size:255" json:"attachment_name,omitempty"`
	AttachmentType *string `gorm:"size:100" json:"attachment_type,omitempty"`
	AttachmentSize *int64  `json:"attachment_size,omitempty"`

	ResolvedBy     *string `gorm:"size:100" json:"resolved_by,omitempty"`
	ResolutionNote *string `gorm:"type:text" json:"resolution_note,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (g *Grievance) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID, err = uuid.NewV7()
	}
	return
}

// DisplayID renders the short reference shown in lists and exports,
// e.g. "GR-0a1b2c3d". n is the number of id characters kept (4 in list
// views, 8 in detail views and CSV exports).
func (g *Grievance) DisplayID(n int) string {
	id := g.ID.String()
	if n > len(id) {
		n = len(id)
	}
	return "GR-" + id[:n]
}
