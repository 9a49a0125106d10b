package repositories

import (
	"context"

	"rentledger/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Tenant, error)
}

type tenantRepo struct {
	db DB
}

func NewTenantRepo(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, organization_id, full_name, email, phone, created_at
		FROM tenants
		WHERE organization_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, orgID, id).Scan(
		&tenant.ID, &tenant.OrganizationID, &tenant.FullName, &tenant.Email, &tenant.Phone, &tenant.CreatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return tenant, nil
}
