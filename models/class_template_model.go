package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassTemplate struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrgID        uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null" json:"instructor_id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Description  *string   `gorm:"type:text" json:"description"`
	DayOfWeek    *int      `json:"day_of_week"`
	Time         string    `gorm:"size:5;not null" json:"time"`
	Duration     int       `gorm:"not null" json:"duration"`
	Capacity     int       `gorm:"not null" json:"capacity"`
	Price        int       `gorm:"not null" json:"price"`
	IsRecurring  bool      `gorm:"not null;default:false" json:"is_recurring"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`

	Organization Organization `gorm:"foreignkey:OrgID" json:"-"`
	Instructor   User         `gorm:"foreignkey:InstructorID" json:"instructor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *ClassTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
