package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const (
	TypeReportSnapshot = "report:snapshot"
	ReportsQueue       = "reports"
)

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReportSnapshotPayload identifies the organization whose reports are archived.
type ReportSnapshotPayload struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Day            string    `json:"day"`
}

// NewReportSnapshotTask builds a snapshot task. The task id is unique per
// organization and day, so a pending snapshot is never queued twice.
func NewReportSnapshotTask(org *models.Organization, day string) (*asynq.Task, error) {
	payload := ReportSnapshotPayload{
		OrganizationID: org.ID,
		Slug:           org.Slug,
		Name:           org.Name,
		Day:            day,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReportSnapshot, data,
		asynq.Queue(ReportsQueue),
		asynq.MaxRetry(3),
		asynq.TaskID(fmt.Sprintf("snapshot:%s:%s", org.ID, day)),
	), nil
}

// SnapshotTaskHandler processes queued report snapshot tasks.
type SnapshotTaskHandler struct {
	reports ReportSnapshotter
}

func NewSnapshotTaskHandler(reports ReportSnapshotter) *SnapshotTaskHandler {
	return &SnapshotTaskHandler{reports: reports}
}

// ProcessTask implements asynq.Handler.
func (h *SnapshotTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ReportSnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.OrganizationID == uuid.Nil || payload.Slug == "" {
		return fmt.Errorf("snapshot payload missing organization: %w", asynq.SkipRetry)
	}
	if _, err := time.Parse(common.DateLayout, payload.Day); err != nil {
		return fmt.Errorf("snapshot payload has invalid day %q: %w", payload.Day, asynq.SkipRetry)
	}

	org := &models.Organization{
		ID:   payload.OrganizationID,
		Slug: payload.Slug,
		Name: payload.Name,
	}
	objects, err := h.reports.Snapshot(ctx, org, payload.Day)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", payload.Slug, err)
	}

	logger.Log.WithFields(logrus.Fields{
		"organization_id": payload.OrganizationID,
		"objects":         len(objects),
	}).Info("report snapshot stored")
	return nil
}
