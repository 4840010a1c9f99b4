package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	Slug              string    `gorm:"size:100;not null;unique" json:"slug"`
	Description       *string   `gorm:"type:text" json:"description"`
	CancellationHours int       `gorm:"not null;default:2" json:"cancellation_hours"`
	DefaultCapacity   int       `gorm:"not null;default:10" json:"default_capacity"`
	StripeAccountID   *string   `gorm:"size:255" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
