package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// StatTarget names one countable slice of an organization's data.
type StatTarget string

const (
	StatBuildings      StatTarget = "buildings"
	StatUnits          StatTarget = "units"
	StatTenants        StatTarget = "tenants"
	StatOccupancies    StatTarget = "occupancies"
	StatRentConfigs    StatTarget = "rent_configs"
	StatRentPeriods    StatTarget = "rent_periods"
	StatOverduePeriods StatTarget = "overdue_periods"
)

var statQueries = map[StatTarget]string{
	StatBuildings:      `SELECT COUNT(*) FROM buildings WHERE organization_id = $1`,
	StatUnits:          `SELECT COUNT(*) FROM units WHERE organization_id = $1`,
	StatTenants:        `SELECT COUNT(*) FROM tenants WHERE organization_id = $1`,
	StatOccupancies:    `SELECT COUNT(*) FROM occupancies WHERE organization_id = $1`,
	StatRentConfigs:    `SELECT COUNT(*) FROM rent_configs WHERE organization_id = $1`,
	StatRentPeriods:    `SELECT COUNT(*) FROM rent_periods WHERE organization_id = $1`,
	StatOverduePeriods: `SELECT COUNT(*) FROM rent_periods WHERE organization_id = $1 AND status = 'OVERDUE'`,
}

type StatsRepository interface {
	Count(ctx context.Context, orgID uuid.UUID, target StatTarget) (int64, error)
}

type statsRepo struct {
	db DB
}

func NewStatsRepo(db DB) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) Count(ctx context.Context, orgID uuid.UUID, target StatTarget) (int64, error) {
	query, ok := statQueries[target]
	if !ok {
		return 0, fmt.Errorf("unknown stat target %q", target)
	}
	var count int64
	if err := r.db.QueryRow(ctx, query, orgID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
