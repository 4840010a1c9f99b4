package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PackageTypeBundle  = "BUNDLE"
	PackageTypeMonthly = "MONTHLY"
)

// Package is an org-defined purchasable offer: a credit bundle (ClassCount
// set, DurationDays nil) or a monthly pass (DurationDays set, ClassCount nil).
type Package struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrgID        uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Description  *string   `gorm:"type:text" json:"description"`
	Type         string    `gorm:"size:20;not null" json:"type"`
	ClassCount   *int      `json:"class_count"`
	DurationDays *int      `json:"duration_days"`
	Price        int       `gorm:"not null" json:"price"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`

	Organization Organization `gorm:"foreignkey:OrgID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Package) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
