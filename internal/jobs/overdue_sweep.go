package jobs

import (
	"context"
	"fmt"
	"time"

	"rentledger/internal/models"
	"rentledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OrganizationLister enumerates every organization a job must visit.
type OrganizationLister interface {
	List(ctx context.Context) ([]*models.Organization, error)
}

// OverdueMarker is the ledger write the sweep performs per organization.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, orgID uuid.UUID, today time.Time) (int64, error)
}

// ReportInvalidator drops an organization's cached reports.
type ReportInvalidator interface {
	InvalidateOrgReports(ctx context.Context, orgID uuid.UUID) error
}

// OverdueSweep moves past-due rent periods to OVERDUE and refreshes their
// days_overdue, one organization at a time.
type OverdueSweep struct {
	orgs   OrganizationLister
	ledger OverdueMarker
	cache  ReportInvalidator
	now    func() time.Time
}

func NewOverdueSweep(orgs OrganizationLister, ledger OverdueMarker, cache ReportInvalidator) *OverdueSweep {
	return &OverdueSweep{orgs: orgs, ledger: ledger, cache: cache, now: time.Now}
}

// Run sweeps all organizations. A failing organization is logged and skipped;
// the returned error reports how many failed.
func (s *OverdueSweep) Run(ctx context.Context) error {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	today := s.now().UTC()
	var updated int64
	failed := 0
	for _, org := range orgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.ledger.MarkOverdue(ctx, org.ID, today)
		if err != nil {
			failed++
			logger.Log.WithFields(logrus.Fields{
				"organization_id": org.ID,
				"error":           err,
			}).Error("overdue sweep failed for organization")
			continue
		}
		updated += n
		if n > 0 {
			s.invalidate(ctx, org.ID)
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"organizations":   len(orgs),
		"periods_updated": updated,
		"failed":          failed,
	}).Info("overdue sweep completed")

	if failed > 0 {
		return fmt.Errorf("overdue sweep failed for %d of %d organizations", failed, len(orgs))
	}
	return nil
}

// invalidate drops cached reports that still show the pre-sweep statuses.
// A cache failure is logged; the reports age out with their TTL.
func (s *OverdueSweep) invalidate(ctx context.Context, orgID uuid.UUID) {
	if err := s.cache.InvalidateOrgReports(ctx, orgID); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"organization_id": orgID,
			"error":           err,
		}).Warn("failed to invalidate cached reports after overdue sweep")
	}
}
