package repositories

import (
	"context"

	"rentledger/internal/models"

	"github.com/google/uuid"
)

type UnitRepository interface {
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Unit, error)
}

type unitRepo struct {
	db DB
}

func NewUnitRepo(db DB) UnitRepository {
	return &unitRepo{db: db}
}

func (r *unitRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Unit, error) {
	unit := &models.Unit{}
	query := `
		SELECT id, organization_id, building_id, unit_number, created_at
		FROM units
		WHERE organization_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, orgID, id).Scan(
		&unit.ID, &unit.OrganizationID, &unit.BuildingID, &unit.UnitNumber, &unit.CreatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return unit, nil
}
