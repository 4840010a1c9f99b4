package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Membership roles mirror what the admin surface assigns; the ledger only
// cares about MEMBER vs the staff roles when scoping org access.
const (
	MembershipRoleOwner      = "OWNER"
	MembershipRoleAdmin      = "ADMIN"
	MembershipRoleInstructor = "INSTRUCTOR"
	MembershipRoleMember     = "MEMBER"
)

type Membership struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_org" json:"user_id"`
	OrgID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_org" json:"org_id"`
	Role   string    `gorm:"size:20;not null;default:'MEMBER'" json:"role"`
	Status string    `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`

	User         User         `gorm:"foreignkey:UserID" json:"-"`
	Organization Organization `gorm:"foreignkey:OrgID" json:"organization,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
