package models

import (
	"time"

	"github.com/google/uuid"
)

// RentStatus is the lifecycle state of a rent period.
type RentStatus string

const (
	RentStatusDue     RentStatus = "DUE"
	RentStatusOverdue RentStatus = "OVERDUE"
	RentStatusPaid    RentStatus = "PAID"
)

// RentConfig is the recurring rent amount for an occupancy.
type RentConfig struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	OccupancyID    uuid.UUID `json:"occupancy_id" db:"occupancy_id"`
	Amount         float64   `json:"amount" db:"amount"`
}

type RentPeriod struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	RentConfigID   uuid.UUID  `json:"rent_config_id" db:"rent_config_id"`
	PeriodStart    time.Time  `json:"period_start" db:"period_start"`
	PeriodEnd      time.Time  `json:"period_end" db:"period_end"`
	DueDate        time.Time  `json:"due_date" db:"due_date"`
	Status         RentStatus `json:"status" db:"status"`
	DaysOverdue    *int       `json:"days_overdue" db:"days_overdue"`
}

type Payment struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	RentPeriodID   uuid.UUID `json:"rent_period_id" db:"rent_period_id"`
	Amount         float64   `json:"amount" db:"amount"`
	PaidAt         time.Time `json:"paid_at" db:"paid_at"`
}

// The types below are flat projections produced by the ledger store. Rows
// that cannot be projected are dropped before they reach an aggregator.

// UnpaidPeriod is a DUE or OVERDUE period with its rent amount.
type UnpaidPeriod struct {
	PeriodID    uuid.UUID
	Status      RentStatus
	DaysOverdue *int
	Amount      float64
}

// BuildingUnpaidPeriod is an unpaid period resolved to the building it belongs to.
type BuildingUnpaidPeriod struct {
	PeriodID        uuid.UUID
	Status          RentStatus
	Amount          float64
	BuildingID      uuid.UUID
	BuildingName    string
	BuildingAddress *string
}

// DuePeriod is a period whose due date falls in a reporting window.
type DuePeriod struct {
	PeriodID uuid.UUID
	DueDate  time.Time
	Amount   float64
}

// PeriodPayment is a payment against one rent period.
type PeriodPayment struct {
	PaymentID    uuid.UUID
	RentPeriodID uuid.UUID
	Amount       float64
	PaidAt       time.Time
}
