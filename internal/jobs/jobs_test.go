package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrganizationLister struct {
	mock.Mock
}

func (m *MockOrganizationLister) List(ctx context.Context) ([]*models.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Organization), args.Error(1)
}

type MockOverdueMarker struct {
	mock.Mock
}

func (m *MockOverdueMarker) MarkOverdue(ctx context.Context, orgID uuid.UUID, today time.Time) (int64, error) {
	args := m.Called(ctx, orgID, today)
	return args.Get(0).(int64), args.Error(1)
}

type MockReportSnapshotter struct {
	mock.Mock
}

func (m *MockReportSnapshotter) Snapshot(ctx context.Context, org *models.Organization, day string) ([]string, error) {
	args := m.Called(ctx, org, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type fakeInvalidator struct {
	invalidated []uuid.UUID
	err         error
}

func (f *fakeInvalidator) InvalidateOrgReports(ctx context.Context, orgID uuid.UUID) error {
	f.invalidated = append(f.invalidated, orgID)
	return f.err
}

func testOrgs() []*models.Organization {
	return []*models.Organization{
		{ID: uuid.New(), Name: "Acme Rentals", Slug: "acme"},
		{ID: uuid.New(), Name: "Birch Homes", Slug: "birch"},
	}
}

func TestOverdueSweep_MarksEveryOrganization(t *testing.T) {
	orgs := testOrgs()
	lister := new(MockOrganizationLister)
	ledger := new(MockOverdueMarker)
	now := time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC)

	lister.On("List", mock.Anything).Return(orgs, nil)
	ledger.On("MarkOverdue", mock.Anything, orgs[0].ID, now).Return(int64(3), nil)
	ledger.On("MarkOverdue", mock.Anything, orgs[1].ID, now).Return(int64(0), nil)

	cache := &fakeInvalidator{}
	sweep := NewOverdueSweep(lister, ledger, cache)
	sweep.now = func() time.Time { return now }

	require.NoError(t, sweep.Run(context.Background()))
	ledger.AssertExpectations(t)
	// Only the organization whose periods changed loses its cached reports.
	assert.Equal(t, []uuid.UUID{orgs[0].ID}, cache.invalidated)
}

func TestOverdueSweep_CacheFailureIsNotASweepFailure(t *testing.T) {
	orgs := testOrgs()
	lister := new(MockOrganizationLister)
	ledger := new(MockOverdueMarker)

	lister.On("List", mock.Anything).Return(orgs, nil)
	ledger.On("MarkOverdue", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	cache := &fakeInvalidator{err: errors.New("redis down")}
	err := NewOverdueSweep(lister, ledger, cache).Run(context.Background())

	assert.NoError(t, err)
	assert.Len(t, cache.invalidated, 2)
}

func TestOverdueSweep_ContinuesPastFailures(t *testing.T) {
	orgs := testOrgs()
	lister := new(MockOrganizationLister)
	ledger := new(MockOverdueMarker)

	lister.On("List", mock.Anything).Return(orgs, nil)
	ledger.On("MarkOverdue", mock.Anything, orgs[0].ID, mock.Anything).Return(int64(0), errors.New("deadlock detected"))
	ledger.On("MarkOverdue", mock.Anything, orgs[1].ID, mock.Anything).Return(int64(2), nil)

	cache := &fakeInvalidator{}
	err := NewOverdueSweep(lister, ledger, cache).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 organizations")
	ledger.AssertNumberOfCalls(t, "MarkOverdue", 2)
	assert.Equal(t, []uuid.UUID{orgs[1].ID}, cache.invalidated)
}

func TestOverdueSweep_ListFailure(t *testing.T) {
	lister := new(MockOrganizationLister)
	ledger := new(MockOverdueMarker)
	lister.On("List", mock.Anything).Return(nil, errors.New("connection refused"))

	err := NewOverdueSweep(lister, ledger, &fakeInvalidator{}).Run(context.Background())

	require.Error(t, err)
	ledger.AssertNotCalled(t, "MarkOverdue", mock.Anything, mock.Anything, mock.Anything)
}

func TestOverdueSweep_StopsOnCancellation(t *testing.T) {
	lister := new(MockOrganizationLister)
	ledger := new(MockOverdueMarker)
	lister.On("List", mock.Anything).Return(testOrgs(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewOverdueSweep(lister, ledger, &fakeInvalidator{}).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	ledger.AssertNotCalled(t, "MarkOverdue", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportSnapshot(t *testing.T) {
	orgs := testOrgs()
	lister := new(MockOrganizationLister)
	reports := new(MockReportSnapshotter)

	lister.On("List", mock.Anything).Return(orgs, nil)
	reports.On("Snapshot", mock.Anything, orgs[0], "2024-03-15").
		Return([]string{"snapshots/acme/2024-03-15/delinquency-aging.csv", "snapshots/acme/2024-03-15/building-rollups.csv"}, nil)
	reports.On("Snapshot", mock.Anything, orgs[1], "2024-03-15").Return(nil, errors.New("bucket unavailable"))

	job := NewReportSnapshot(lister, reports, nil)
	job.now = func() time.Time { return time.Date(2024, 3, 15, 2, 0, 0, 0, time.UTC) }
	err := job.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 organizations")
	reports.AssertExpectations(t)
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestReportSnapshot_QueuesOneTaskPerOrganization(t *testing.T) {
	orgs := testOrgs()
	lister := new(MockOrganizationLister)
	reports := new(MockReportSnapshotter)
	queue := &fakeEnqueuer{}
	lister.On("List", mock.Anything).Return(orgs, nil)

	job := NewReportSnapshot(lister, reports, queue)
	job.now = func() time.Time { return time.Date(2024, 3, 15, 2, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, queue.tasks, 2)
	var payload ReportSnapshotPayload
	require.NoError(t, json.Unmarshal(queue.tasks[1].Payload(), &payload))
	assert.Equal(t, TypeReportSnapshot, queue.tasks[1].Type())
	assert.Equal(t, orgs[1].ID, payload.OrganizationID)
	assert.Equal(t, "birch", payload.Slug)
	assert.Equal(t, "2024-03-15", payload.Day)
	reports.AssertNotCalled(t, "Snapshot", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportSnapshot_PendingTaskIsNotAFailure(t *testing.T) {
	lister := new(MockOrganizationLister)
	lister.On("List", mock.Anything).Return(testOrgs(), nil)

	job := NewReportSnapshot(lister, new(MockReportSnapshotter), &fakeEnqueuer{err: asynq.ErrTaskIDConflict})

	assert.NoError(t, job.Run(context.Background()))
}

func TestSnapshotTaskHandler(t *testing.T) {
	org := testOrgs()[0]
	reports := new(MockReportSnapshotter)
	reports.On("Snapshot", mock.Anything, mock.MatchedBy(func(o *models.Organization) bool {
		return o.ID == org.ID && o.Slug == org.Slug
	}), "2024-03-14").Return([]string{"snapshots/acme/2024-03-14/delinquency-aging.csv"}, nil)

	// The task keeps the day it was queued for, whenever it is processed.
	task, err := NewReportSnapshotTask(org, "2024-03-14")
	require.NoError(t, err)

	require.NoError(t, NewSnapshotTaskHandler(reports).ProcessTask(context.Background(), task))
	reports.AssertExpectations(t)
}

func TestSnapshotTaskHandler_BadPayloadSkipsRetry(t *testing.T) {
	handler := NewSnapshotTaskHandler(new(MockReportSnapshotter))

	err := handler.ProcessTask(context.Background(), asynq.NewTask(TypeReportSnapshot, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = handler.ProcessTask(context.Background(), asynq.NewTask(TypeReportSnapshot, []byte(`{"slug":"acme"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	payload := []byte(`{"organization_id":"` + uuid.NewString() + `","slug":"acme","day":""}`)
	err = handler.ProcessTask(context.Background(), asynq.NewTask(TypeReportSnapshot, payload))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSnapshotTaskHandler_PropagatesStorageFailure(t *testing.T) {
	reports := new(MockReportSnapshotter)
	reports.On("Snapshot", mock.Anything, mock.Anything, "2024-03-15").Return(nil, errors.New("bucket unavailable"))

	task, err := NewReportSnapshotTask(testOrgs()[0], "2024-03-15")
	require.NoError(t, err)

	err = NewSnapshotTaskHandler(reports).ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
