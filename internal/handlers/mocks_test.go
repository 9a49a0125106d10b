package handlers

import (
	"context"
	"io"
	"time"

	"rentledger/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockOccupancyService struct {
	mock.Mock
}

func (m *MockOccupancyService) List(ctx context.Context, orgSlug string, query models.OccupancyQuery) ([]*models.Occupancy, error) {
	args := m.Called(ctx, orgSlug, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Occupancy), args.Error(1)
}

func (m *MockOccupancyService) Create(ctx context.Context, orgSlug string, input models.OccupancyInput) (*models.Occupancy, error) {
	args := m.Called(ctx, orgSlug, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Occupancy), args.Error(1)
}

func (m *MockOccupancyService) Update(ctx context.Context, orgSlug, occupancyID string, input models.OccupancyInput) (*models.Occupancy, error) {
	args := m.Called(ctx, orgSlug, occupancyID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Occupancy), args.Error(1)
}

func (m *MockOccupancyService) Delete(ctx context.Context, orgSlug, occupancyID string) error {
	args := m.Called(ctx, orgSlug, occupancyID)
	return args.Error(0)
}

type MockReportReader struct {
	mock.Mock
}

func (m *MockReportReader) GetDelinquencyAging(ctx context.Context, orgSlug string) (*models.AgingReport, error) {
	args := m.Called(ctx, orgSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AgingReport), args.Error(1)
}

func (m *MockReportReader) GetBuildingRollups(ctx context.Context, orgSlug string) (*models.RollupReport, error) {
	args := m.Called(ctx, orgSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RollupReport), args.Error(1)
}

func (m *MockReportReader) GetCollectionRate(ctx context.Context, orgSlug, startDate, endDate string) (*models.CollectionReport, error) {
	args := m.Called(ctx, orgSlug, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CollectionReport), args.Error(1)
}

func (m *MockReportReader) ExportReport(ctx context.Context, orgSlug string, kind models.ReportKind, startDate, endDate string) (*models.ReportExport, error) {
	args := m.Called(ctx, orgSlug, kind, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReportExport), args.Error(1)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetOrgStats(ctx context.Context, orgSlug string) (*models.OrgStats, error) {
	args := m.Called(ctx, orgSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrgStats), args.Error(1)
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}

type fakeStorage struct {
	found bool
	err   error
}

func (f fakeStorage) UploadObject(context.Context, string, string, io.Reader, int64, string) error {
	return nil
}

func (f fakeStorage) GetPresignedURL(context.Context, string, string, time.Duration) (string, error) {
	return "", nil
}

func (f fakeStorage) EnsureBucketExists(context.Context, string) error {
	return nil
}

func (f fakeStorage) BucketExists(context.Context, string) (bool, error) {
	return f.found, f.err
}
