package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a person renting a unit, not an organization.
type Tenant struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	FullName       string    `json:"full_name" db:"full_name"`
	Email          *string   `json:"email" db:"email"`
	Phone          *string   `json:"phone" db:"phone"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
