package repositories

import (
	"context"
	"fmt"
	"strings"

	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OccupancyRepository interface {
	List(ctx context.Context, orgID uuid.UUID, filter models.OccupancyFilter) ([]*models.Occupancy, error)
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Occupancy, error)
	Create(ctx context.Context, occupancy *models.Occupancy) error
	Update(ctx context.Context, occupancy *models.Occupancy) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

type occupancyRepo struct {
	db DB
}

func NewOccupancyRepo(db DB) OccupancyRepository {
	return &occupancyRepo{db: db}
}

const occupancyColumns = `id, organization_id, unit_id, tenant_id, active_from, active_to, created_at, updated_at`

func scanOccupancy(row pgx.Row) (*models.Occupancy, error) {
	o := &models.Occupancy{}
	err := row.Scan(&o.ID, &o.OrganizationID, &o.UnitID, &o.TenantID, &o.ActiveFrom, &o.ActiveTo, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *occupancyRepo) List(ctx context.Context, orgID uuid.UUID, filter models.OccupancyFilter) ([]*models.Occupancy, error) {
	conditions := []string{"organization_id = $1"}
	args := []any{orgID}

	if filter.UnitID != nil {
		args = append(args, *filter.UnitID)
		conditions = append(conditions, fmt.Sprintf("unit_id = $%d", len(args)))
	}
	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		conditions = append(conditions, fmt.Sprintf("tenant_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM occupancies
		WHERE %s
		ORDER BY active_from DESC, created_at DESC
	`, occupancyColumns, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occupancies := make([]*models.Occupancy, 0)
	for rows.Next() {
		o, err := scanOccupancy(rows)
		if err != nil {
			return nil, err
		}
		occupancies = append(occupancies, o)
	}
	return occupancies, rows.Err()
}

func (r *occupancyRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Occupancy, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM occupancies
		WHERE organization_id = $1 AND id = $2
	`, occupancyColumns)
	o, err := scanOccupancy(r.db.QueryRow(ctx, query, orgID, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return o, nil
}

func (r *occupancyRepo) Create(ctx context.Context, occupancy *models.Occupancy) error {
	query := `
		INSERT INTO occupancies (id, organization_id, unit_id, tenant_id, active_from, active_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		occupancy.ID, occupancy.OrganizationID, occupancy.UnitID, occupancy.TenantID, occupancy.ActiveFrom, occupancy.ActiveTo,
	).Scan(&occupancy.CreatedAt, &occupancy.UpdatedAt)
}

func (r *occupancyRepo) Update(ctx context.Context, occupancy *models.Occupancy) error {
	query := `
		UPDATE occupancies
		SET unit_id = $1, tenant_id = $2, active_from = $3, active_to = $4, updated_at = NOW()
		WHERE id = $5 AND organization_id = $6
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		occupancy.UnitID, occupancy.TenantID, occupancy.ActiveFrom, occupancy.ActiveTo, occupancy.ID, occupancy.OrganizationID,
	).Scan(&occupancy.CreatedAt, &occupancy.UpdatedAt)
	return mapNoRows(err)
}

func (r *occupancyRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `
		DELETE FROM occupancies
		WHERE id = $1 AND organization_id = $2
		RETURNING id
	`
	var deleted uuid.UUID
	err := r.db.QueryRow(ctx, query, id, orgID).Scan(&deleted)
	return mapNoRows(err)
}
