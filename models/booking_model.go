package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
	// WAITLISTED is reserved; no transition in or out of it is implemented yet.
	BookingStatusWaitlisted = "WAITLISTED"
)

// Booking is one user's claim on one class instance. The unique index on
// (user_id, class_instance_id) is what makes double-booking impossible even
// when two requests race. Rows are never deleted; cancellation is a status
// transition.
type Booking struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_bookings_user_instance" json:"user_id"`
	ClassInstanceID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_bookings_user_instance" json:"class_instance_id"`
	Status          string     `gorm:"size:20;not null;default:'CONFIRMED'" json:"status"`
	PaymentID       *uuid.UUID `gorm:"type:uuid" json:"payment_id"`

	User          User          `gorm:"foreignkey:UserID" json:"-"`
	ClassInstance ClassInstance `gorm:"foreignkey:ClassInstanceID" json:"class_instance,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
