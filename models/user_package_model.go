package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPackage is a user's purchased instance of a Package. RemainingClasses
// is non-nil only for bundle entitlements and must never go below zero;
// ExpiresAt is non-nil only for monthly passes. Created exclusively by
// payment fulfillment.
type UserPackage struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	PackageID        uuid.UUID  `gorm:"type:uuid;not null" json:"package_id"`
	RemainingClasses *int       `json:"remaining_classes"`
	ExpiresAt        *time.Time `json:"expires_at"`
	PaymentID        uuid.UUID  `gorm:"type:uuid;not null" json:"payment_id"`
	PurchasedAt      time.Time  `gorm:"not null" json:"purchased_at"`

	User    User    `gorm:"foreignkey:UserID" json:"-"`
	Package Package `gorm:"foreignkey:PackageID" json:"package,omitempty"`
	Payment Payment `gorm:"foreignkey:PaymentID" json:"-"`
}

func (up *UserPackage) BeforeCreate(tx *gorm.DB) error {
	if up.ID == uuid.Nil {
		up.ID = uuid.New()
	}
	return nil
}
