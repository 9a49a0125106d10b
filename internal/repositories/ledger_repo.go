package repositories

import (
	"context"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/google/uuid"
)

// LedgerRepository is the read side of rent periods and payments, projected
// into the flat rows the report aggregators consume.
type LedgerRepository interface {
	ListUnpaidPeriods(ctx context.Context, orgID uuid.UUID) ([]models.UnpaidPeriod, error)
	ListUnpaidPeriodsByBuilding(ctx context.Context, orgID uuid.UUID) ([]models.BuildingUnpaidPeriod, error)
	ListPeriodsDueBetween(ctx context.Context, orgID uuid.UUID, startDate, endDate string) ([]models.DuePeriod, error)
	ListPaymentsForPeriods(ctx context.Context, orgID uuid.UUID, periodIDs []uuid.UUID, from, to time.Time) ([]models.PeriodPayment, error)
	// MarkOverdue moves past-due DUE periods to OVERDUE and refreshes
	// days_overdue on every unpaid past-due period.
	MarkOverdue(ctx context.Context, orgID uuid.UUID, today time.Time) (int64, error)
}

type ledgerRepo struct {
	db DB
}

func NewLedgerRepo(db DB) LedgerRepository {
	return &ledgerRepo{db: db}
}

// amountOrZero treats a period without a rent config as owing nothing.
func amountOrZero(amount *float64) float64 {
	if amount == nil {
		return 0
	}
	return *amount
}

func (r *ledgerRepo) ListUnpaidPeriods(ctx context.Context, orgID uuid.UUID) ([]models.UnpaidPeriod, error) {
	query := `
		SELECT rp.id, rp.status, rp.days_overdue, rc.amount
		FROM rent_periods rp
		LEFT JOIN rent_configs rc ON rc.id = rp.rent_config_id AND rc.organization_id = rp.organization_id
		WHERE rp.organization_id = $1 AND rp.status IN ('DUE', 'OVERDUE')
	`
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	periods := make([]models.UnpaidPeriod, 0)
	for rows.Next() {
		var (
			p      models.UnpaidPeriod
			status string
			amount *float64
		)
		if err := rows.Scan(&p.PeriodID, &status, &p.DaysOverdue, &amount); err != nil {
			return nil, err
		}
		p.Status = models.RentStatus(status)
		p.Amount = amountOrZero(amount)
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *ledgerRepo) ListUnpaidPeriodsByBuilding(ctx context.Context, orgID uuid.UUID) ([]models.BuildingUnpaidPeriod, error) {
	query := `
		SELECT rp.id, rp.status, rc.amount, b.id, b.name, b.address
		FROM rent_periods rp
		LEFT JOIN rent_configs rc ON rc.id = rp.rent_config_id AND rc.organization_id = rp.organization_id
		LEFT JOIN occupancies o ON o.id = rc.occupancy_id AND o.organization_id = rp.organization_id
		LEFT JOIN units u ON u.id = o.unit_id AND u.organization_id = rp.organization_id
		LEFT JOIN buildings b ON b.id = u.building_id AND b.organization_id = rp.organization_id
		WHERE rp.organization_id = $1 AND rp.status IN ('DUE', 'OVERDUE')
	`
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	periods := make([]models.BuildingUnpaidPeriod, 0)
	for rows.Next() {
		var (
			p            models.BuildingUnpaidPeriod
			status       string
			amount       *float64
			buildingID   *uuid.UUID
			buildingName *string
		)
		if err := rows.Scan(&p.PeriodID, &status, &amount, &buildingID, &buildingName, &p.BuildingAddress); err != nil {
			return nil, err
		}
		// A period whose chain to a building is broken cannot be attributed.
		if buildingID == nil || buildingName == nil {
			continue
		}
		p.Status = models.RentStatus(status)
		p.Amount = amountOrZero(amount)
		p.BuildingID = *buildingID
		p.BuildingName = *buildingName
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *ledgerRepo) ListPeriodsDueBetween(ctx context.Context, orgID uuid.UUID, startDate, endDate string) ([]models.DuePeriod, error) {
	query := `
		SELECT rp.id, rp.due_date, rc.amount
		FROM rent_periods rp
		LEFT JOIN rent_configs rc ON rc.id = rp.rent_config_id AND rc.organization_id = rp.organization_id
		WHERE rp.organization_id = $1 AND rp.due_date >= $2::date AND rp.due_date <= $3::date
	`
	rows, err := r.db.Query(ctx, query, orgID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	periods := make([]models.DuePeriod, 0)
	for rows.Next() {
		var (
			p      models.DuePeriod
			amount *float64
		)
		if err := rows.Scan(&p.PeriodID, &p.DueDate, &amount); err != nil {
			return nil, err
		}
		p.Amount = amountOrZero(amount)
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *ledgerRepo) ListPaymentsForPeriods(ctx context.Context, orgID uuid.UUID, periodIDs []uuid.UUID, from, to time.Time) ([]models.PeriodPayment, error) {
	if len(periodIDs) == 0 {
		return []models.PeriodPayment{}, nil
	}
	ids := make([]string, len(periodIDs))
	for i, id := range periodIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT id, rent_period_id, amount, paid_at
		FROM payments
		WHERE organization_id = $1 AND rent_period_id = ANY($2::uuid[]) AND paid_at >= $3 AND paid_at <= $4
	`
	rows, err := r.db.Query(ctx, query, orgID, ids, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.PeriodPayment, 0)
	for rows.Next() {
		var p models.PeriodPayment
		if err := rows.Scan(&p.PaymentID, &p.RentPeriodID, &p.Amount, &p.PaidAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *ledgerRepo) MarkOverdue(ctx context.Context, orgID uuid.UUID, today time.Time) (int64, error) {
	query := `
		UPDATE rent_periods
		SET status = 'OVERDUE', days_overdue = ($2::date - due_date)
		WHERE organization_id = $1 AND status IN ('DUE', 'OVERDUE') AND due_date < $2::date
	`
	tag, err := r.db.Exec(ctx, query, orgID, common.FormatDate(today))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
