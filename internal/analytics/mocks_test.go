package analytics

import (
	"context"
	"io"
	"time"

	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) GetMembership(ctx context.Context, slug string, userID uuid.UUID) (*repositories.Membership, error) {
	args := m.Called(ctx, slug, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.Membership), args.Error(1)
}

func (m *MockOrganizationRepository) List(ctx context.Context) ([]*models.Organization, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Organization), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) ListUnpaidPeriods(ctx context.Context, orgID uuid.UUID) ([]models.UnpaidPeriod, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UnpaidPeriod), args.Error(1)
}

func (m *MockLedgerRepository) ListUnpaidPeriodsByBuilding(ctx context.Context, orgID uuid.UUID) ([]models.BuildingUnpaidPeriod, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BuildingUnpaidPeriod), args.Error(1)
}

func (m *MockLedgerRepository) ListPeriodsDueBetween(ctx context.Context, orgID uuid.UUID, startDate, endDate string) ([]models.DuePeriod, error) {
	args := m.Called(ctx, orgID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DuePeriod), args.Error(1)
}

func (m *MockLedgerRepository) ListPaymentsForPeriods(ctx context.Context, orgID uuid.UUID, periodIDs []uuid.UUID, from, to time.Time) ([]models.PeriodPayment, error) {
	args := m.Called(ctx, orgID, periodIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PeriodPayment), args.Error(1)
}

func (m *MockLedgerRepository) MarkOverdue(ctx context.Context, orgID uuid.UUID, today time.Time) (int64, error) {
	args := m.Called(ctx, orgID, today)
	return args.Get(0).(int64), args.Error(1)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) UploadObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockObjectStorage) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}
