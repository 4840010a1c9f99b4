package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InstanceStatusScheduled = "SCHEDULED"
	InstanceStatusCancelled = "CANCELLED"
	InstanceStatusCompleted = "COMPLETED"
)

// ClassInstance is a single scheduled occurrence of a template. The booking
// ledger treats these rows as read-only input from the scheduler.
type ClassInstance struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrgID      uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	TemplateID uuid.UUID `gorm:"type:uuid;not null;index" json:"template_id"`
	Date       time.Time `gorm:"not null;index" json:"date"`
	Capacity   int       `gorm:"not null" json:"capacity"`
	Status     string    `gorm:"size:20;not null;default:'SCHEDULED'" json:"status"`

	Organization Organization  `gorm:"foreignkey:OrgID" json:"-"`
	Template     ClassTemplate `gorm:"foreignkey:TemplateID" json:"template,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *ClassInstance) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
