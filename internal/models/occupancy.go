package models

import (
	"time"

	"github.com/google/uuid"
)

// Occupancy links one tenant to one unit for a date range.
type Occupancy struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	UnitID         uuid.UUID  `json:"unit_id" db:"unit_id"`
	TenantID       uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	ActiveFrom     time.Time  `json:"active_from" db:"active_from"`
	ActiveTo       *time.Time `json:"active_to" db:"active_to"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// OccupancyInput is the caller-supplied payload for create and update.
// Dates are YYYY-MM-DD strings.
type OccupancyInput struct {
	UnitID     string  `json:"unit_id" validate:"required"`
	TenantID   string  `json:"tenant_id" validate:"required"`
	ActiveFrom string  `json:"active_from" validate:"required,datetime=2006-01-02"`
	ActiveTo   *string `json:"active_to" validate:"omitempty,datetime=2006-01-02"`
}

// OccupancyQuery holds the list filters as the caller sent them.
// Empty values are ignored.
type OccupancyQuery struct {
	UnitID   string
	TenantID string
}

// OccupancyFilter narrows a listing; nil fields are ignored.
type OccupancyFilter struct {
	UnitID   *uuid.UUID
	TenantID *uuid.UUID
}
