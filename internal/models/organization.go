package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Role is a member's role inside one organization.
type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleManager Role = "MANAGER"
	RoleOps     Role = "OPS"
	RoleViewer  Role = "VIEWER"
)

// ParseRole maps a stored role onto the closed enumeration. Unknown values
// come back as ok=false.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleOwner, RoleManager, RoleOps, RoleViewer:
		return r, true
	}
	return "", false
}

// OrgContext is the resolved caller: who they are, where, and with what role.
type OrgContext struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	OrgSlug        string    `json:"org_slug"`
	Role           Role      `json:"role"`
}
