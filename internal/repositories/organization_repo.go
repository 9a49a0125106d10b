package repositories

import (
	"context"

	"rentledger/internal/models"

	"github.com/google/uuid"
)

// Membership is a user's role in one organization.
type Membership struct {
	Organization models.Organization
	Role         string
}

type OrganizationRepository interface {
	// GetMembership resolves an organization by slug together with the
	// user's membership role. It returns ErrNotFound when either is missing.
	GetMembership(ctx context.Context, slug string, userID uuid.UUID) (*Membership, error)
	List(ctx context.Context) ([]*models.Organization, error)
}

type organizationRepo struct {
	db DB
}

func NewOrganizationRepo(db DB) OrganizationRepository {
	return &organizationRepo{db: db}
}

func (r *organizationRepo) GetMembership(ctx context.Context, slug string, userID uuid.UUID) (*Membership, error) {
	m := &Membership{}
	query := `
		SELECT o.id, o.name, o.slug, o.created_at, om.role
		FROM organizations o
		JOIN organization_members om ON om.organization_id = o.id
		WHERE o.slug = $1 AND om.user_id = $2
	`
	err := r.db.QueryRow(ctx, query, slug, userID).Scan(
		&m.Organization.ID, &m.Organization.Name, &m.Organization.Slug, &m.Organization.CreatedAt, &m.Role,
	)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return m, nil
}

func (r *organizationRepo) List(ctx context.Context) ([]*models.Organization, error) {
	query := `
		SELECT id, name, slug, created_at
		FROM organizations
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org := &models.Organization{}
		if err := rows.Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}
