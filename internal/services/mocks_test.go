package services

import (
	"context"
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

type MockOccupancyRepository struct {
	mock.Mock
}

func (m *MockOccupancyRepository) List(ctx context.Context, orgID uuid.UUID, filter models.OccupancyFilter) ([]*models.Occupancy, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Occupancy), args.Error(1)
}

func (m *MockOccupancyRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Occupancy, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Occupancy), args.Error(1)
}

func (m *MockOccupancyRepository) Create(ctx context.Context, occupancy *models.Occupancy) error {
	args := m.Called(ctx, occupancy)
	return args.Error(0)
}

func (m *MockOccupancyRepository) Update(ctx context.Context, occupancy *models.Occupancy) error {
	args := m.Called(ctx, occupancy)
	return args.Error(0)
}

func (m *MockOccupancyRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Unit, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Count(ctx context.Context, orgID uuid.UUID, target repositories.StatTarget) (int64, error) {
	args := m.Called(ctx, orgID, target)
	return args.Get(0).(int64), args.Error(1)
}

type MockReportCache struct {
	mock.Mock
}

func (m *MockReportCache) GetReport(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockReportCache) SetReport(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockReportCache) InvalidateOrgReports(ctx context.Context, orgID uuid.UUID) error {
	args := m.Called(ctx, orgID)
	return args.Error(0)
}

func (m *MockReportCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
