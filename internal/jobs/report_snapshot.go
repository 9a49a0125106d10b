package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// ReportSnapshotter renders and stores the point-in-time reports of one
// organization under the given day (YYYY-MM-DD).
type ReportSnapshotter interface {
	Snapshot(ctx context.Context, org *models.Organization, day string) ([]string, error)
}

// ReportSnapshot archives the aging and rollup reports of every organization.
// With a queue the work is fanned out as one task per organization;
// without one it runs inline.
type ReportSnapshot struct {
	orgs    OrganizationLister
	reports ReportSnapshotter
	queue   TaskEnqueuer
	now     func() time.Time
}

// NewReportSnapshot creates the job. queue may be nil.
func NewReportSnapshot(orgs OrganizationLister, reports ReportSnapshotter, queue TaskEnqueuer) *ReportSnapshot {
	return &ReportSnapshot{orgs: orgs, reports: reports, queue: queue, now: time.Now}
}

func (j *ReportSnapshot) Run(ctx context.Context) error {
	orgs, err := j.orgs.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	day := common.FormatDate(j.now().UTC())
	done, failed := 0, 0
	for _, org := range orgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := j.snapshot(ctx, org, day)
		if err != nil {
			failed++
			logger.Log.WithFields(logrus.Fields{
				"organization_id": org.ID,
				"org_slug":        org.Slug,
				"error":           err,
			}).Error("report snapshot failed for organization")
			continue
		}
		done += n
	}

	logger.Log.WithFields(logrus.Fields{
		"organizations": len(orgs),
		"queued":        j.queue != nil,
		"completed":     done,
		"failed":        failed,
	}).Info("report snapshot completed")

	if failed > 0 {
		return fmt.Errorf("report snapshot failed for %d of %d organizations", failed, len(orgs))
	}
	return nil
}

// snapshot returns the number of objects stored, or of tasks queued.
func (j *ReportSnapshot) snapshot(ctx context.Context, org *models.Organization, day string) (int, error) {
	if j.queue == nil {
		objects, err := j.reports.Snapshot(ctx, org, day)
		return len(objects), err
	}

	task, err := NewReportSnapshotTask(org, day)
	if err != nil {
		return 0, err
	}
	if _, err := j.queue.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return 0, nil
		}
		return 0, err
	}
	return 1, nil
}
