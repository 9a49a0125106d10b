package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema. The test
// is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, connString, 4)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

func (db *TestDB) exec(t *testing.T, query string, args ...any) {
	t.Helper()
	if _, err := db.Pool.Exec(context.Background(), query, args...); err != nil {
		t.Fatalf("Failed to seed test data: %v", err)
	}
}

// SetupTestOrganization creates an organization and makes userID a member with role.
// Deleting the organization on cleanup cascades to everything seeded under it.
func SetupTestOrganization(t *testing.T, db *TestDB, userID uuid.UUID, role models.Role) *models.Organization {
	t.Helper()

	org := &models.Organization{
		ID:        uuid.New(),
		Name:      "Test Organization",
		Slug:      "test-" + uuid.NewString()[:8],
		CreatedAt: time.Now().UTC(),
	}
	db.exec(t, `INSERT INTO organizations (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`,
		org.ID, org.Name, org.Slug, org.CreatedAt)
	db.exec(t, `INSERT INTO organization_members (organization_id, user_id, role) VALUES ($1, $2, $3)`,
		org.ID, userID, string(role))

	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM organizations WHERE id = $1`, org.ID)
	})
	return org
}

// SetupTestMember adds another member to an existing organization.
func SetupTestMember(t *testing.T, db *TestDB, orgID, userID uuid.UUID, role models.Role) {
	t.Helper()
	db.exec(t, `INSERT INTO organization_members (organization_id, user_id, role) VALUES ($1, $2, $3)`,
		orgID, userID, string(role))
}

func SetupTestBuilding(t *testing.T, db *TestDB, orgID uuid.UUID, name string) *models.Building {
	t.Helper()
	building := &models.Building{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		CreatedAt:      time.Now().UTC(),
	}
	db.exec(t, `INSERT INTO buildings (id, organization_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		building.ID, building.OrganizationID, building.Name, building.CreatedAt)
	return building
}

func SetupTestUnit(t *testing.T, db *TestDB, orgID, buildingID uuid.UUID, unitNumber string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	db.exec(t, `INSERT INTO units (id, organization_id, building_id, unit_number) VALUES ($1, $2, $3, $4)`,
		id, orgID, buildingID, unitNumber)
	return id
}

func SetupTestTenant(t *testing.T, db *TestDB, orgID uuid.UUID, fullName string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	db.exec(t, `INSERT INTO tenants (id, organization_id, full_name) VALUES ($1, $2, $3)`, id, orgID, fullName)
	return id
}

func SetupTestOccupancy(t *testing.T, db *TestDB, orgID, unitID, tenantID uuid.UUID, activeFrom string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	db.exec(t, `INSERT INTO occupancies (id, organization_id, unit_id, tenant_id, active_from) VALUES ($1, $2, $3, $4, $5::date)`,
		id, orgID, unitID, tenantID, activeFrom)
	return id
}

func SetupTestRentConfig(t *testing.T, db *TestDB, orgID, occupancyID uuid.UUID, amount float64) *models.RentConfig {
	t.Helper()
	config := &models.RentConfig{
		ID:             uuid.New(),
		OrganizationID: orgID,
		OccupancyID:    occupancyID,
		Amount:         amount,
	}
	db.exec(t, `INSERT INTO rent_configs (id, organization_id, occupancy_id, amount) VALUES ($1, $2, $3, $4)`,
		config.ID, config.OrganizationID, config.OccupancyID, config.Amount)
	return config
}

// SetupTestRentPeriod creates a one-month period ending on dueDate (YYYY-MM-DD).
func SetupTestRentPeriod(t *testing.T, db *TestDB, orgID, rentConfigID uuid.UUID, dueDate string, status models.RentStatus, daysOverdue *int) *models.RentPeriod {
	t.Helper()
	due, err := time.Parse(common.DateLayout, dueDate)
	if err != nil {
		t.Fatalf("Invalid due date %q: %v", dueDate, err)
	}
	period := &models.RentPeriod{
		ID:             uuid.New(),
		OrganizationID: orgID,
		RentConfigID:   rentConfigID,
		PeriodStart:    due.AddDate(0, -1, 0),
		PeriodEnd:      due,
		DueDate:        due,
		Status:         status,
		DaysOverdue:    daysOverdue,
	}
	db.exec(t, `
		INSERT INTO rent_periods (id, organization_id, rent_config_id, period_start, period_end, due_date, status, days_overdue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, period.ID, period.OrganizationID, period.RentConfigID, period.PeriodStart, period.PeriodEnd, period.DueDate,
		string(period.Status), period.DaysOverdue)
	return period
}

func SetupTestPayment(t *testing.T, db *TestDB, orgID, rentPeriodID uuid.UUID, amount float64, paidAt time.Time) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		ID:             uuid.New(),
		OrganizationID: orgID,
		RentPeriodID:   rentPeriodID,
		Amount:         amount,
		PaidAt:         paidAt,
	}
	db.exec(t, `INSERT INTO payments (id, organization_id, rent_period_id, amount, paid_at) VALUES ($1, $2, $3, $4, $5)`,
		payment.ID, payment.OrganizationID, payment.RentPeriodID, payment.Amount, payment.PaidAt)
	return payment
}
