package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentTypeSingleClass = "SINGLE_CLASS"
	PaymentTypePackage     = "PACKAGE"

	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
)

// Payment is the immutable record of a monetary transaction. StripeEventID is
// the idempotency key for webhook redelivery: the unique index rejects a
// second insert for the same checkout event.
type Payment struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	OrgID           uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	Amount          int       `gorm:"not null" json:"amount"`
	Type            string    `gorm:"size:20;not null" json:"type"`
	Status          string    `gorm:"size:20;not null" json:"status"`
	StripeEventID   *string   `gorm:"size:255;uniqueIndex" json:"-"`
	StripePaymentID *string   `gorm:"size:255" json:"-"`

	User         User         `gorm:"foreignkey:UserID" json:"-"`
	Organization Organization `gorm:"foreignkey:OrgID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
