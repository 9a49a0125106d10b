package models

import (
	"time"

	"github.com/google/uuid"
)

type Building struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Address        *string   `json:"address" db:"address"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Unit struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	BuildingID     uuid.UUID `json:"building_id" db:"building_id"`
	UnitNumber     string    `json:"unit_number" db:"unit_number"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
