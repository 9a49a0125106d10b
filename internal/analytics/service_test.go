package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentledger/internal/caching"
	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"
	"rentledger/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReportServiceTestSuite struct {
	suite.Suite
	orgRepo *MockOrganizationRepository
	ledger  *MockLedgerRepository
	storage *MockObjectStorage
	service *ReportService
	userID  uuid.UUID
	org     models.Organization
	ctx     context.Context
}

func (suite *ReportServiceTestSuite) SetupTest() {
	suite.orgRepo = new(MockOrganizationRepository)
	suite.ledger = new(MockLedgerRepository)
	suite.storage = new(MockObjectStorage)
	suite.userID = uuid.New()
	suite.org = models.Organization{ID: uuid.New(), Name: "Acme Rentals", Slug: "acme"}
	suite.ctx = common.WithUserID(context.Background(), suite.userID)

	suite.service = NewReportService(
		services.NewAccessService(suite.orgRepo),
		suite.ledger,
		WithStorage(suite.storage, "reports"),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func (suite *ReportServiceTestSuite) TearDownTest() {
	suite.orgRepo.AssertExpectations(suite.T())
	suite.ledger.AssertExpectations(suite.T())
	suite.storage.AssertExpectations(suite.T())
}

func TestReportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}

func (suite *ReportServiceTestSuite) member(role models.Role) {
	suite.orgRepo.On("GetMembership", mock.Anything, "acme", suite.userID).
		Return(&repositories.Membership{Organization: suite.org, Role: string(role)}, nil)
}

func (suite *ReportServiceTestSuite) TestAging_Unauthenticated() {
	report, err := suite.service.GetDelinquencyAging(context.Background(), "acme")

	assert.Nil(suite.T(), report)
	assert.Equal(suite.T(), common.KindUnauthenticated, common.KindOf(err))
	suite.ledger.AssertNotCalled(suite.T(), "ListUnpaidPeriods", mock.Anything, mock.Anything)
}

func (suite *ReportServiceTestSuite) TestAging_NotAMember() {
	suite.orgRepo.On("GetMembership", mock.Anything, "acme", suite.userID).Return(nil, repositories.ErrNotFound)

	_, err := suite.service.GetDelinquencyAging(suite.ctx, "acme")
	assert.Equal(suite.T(), common.KindOrgResolutionFailed, common.KindOf(err))
	assert.Equal(suite.T(), "Organization not found or access denied", common.PublicMessage(err))
}

func (suite *ReportServiceTestSuite) TestAging_UnknownRole() {
	suite.orgRepo.On("GetMembership", mock.Anything, "acme", suite.userID).
		Return(&repositories.Membership{Organization: suite.org, Role: "JANITOR"}, nil)

	_, err := suite.service.GetDelinquencyAging(suite.ctx, "acme")
	assert.Equal(suite.T(), common.KindOrgResolutionFailed, common.KindOf(err))
}

func (suite *ReportServiceTestSuite) TestAging_OakTower() {
	suite.member(models.RoleViewer)
	suite.ledger.On("ListUnpaidPeriods", mock.Anything, suite.org.ID).Return([]models.UnpaidPeriod{
		{PeriodID: uuid.New(), Status: models.RentStatusDue, Amount: 1000},
		{PeriodID: uuid.New(), Status: models.RentStatusOverdue, DaysOverdue: intPtr(5), Amount: 500},
	}, nil)

	report, err := suite.service.GetDelinquencyAging(suite.ctx, "acme")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "0-7", report.Buckets[0].Label)
	assert.Equal(suite.T(), 2, report.Buckets[0].UnpaidPeriods)
	assert.Equal(suite.T(), 1500.0, report.Buckets[0].UnpaidAmount)
	assert.Equal(suite.T(), 1500.0, report.Totals.UnpaidAmount)
	assert.Equal(suite.T(), 1, report.Totals.DuePeriods)
	assert.Equal(suite.T(), 1, report.Totals.OverduePeriods)
	assert.Equal(suite.T(), fixedNow, report.GeneratedAt)
}

func (suite *ReportServiceTestSuite) TestAging_StorageFailure() {
	suite.member(models.RoleOwner)
	suite.ledger.On("ListUnpaidPeriods", mock.Anything, suite.org.ID).Return(nil, errors.New("relation rent_periods does not exist"))

	_, err := suite.service.GetDelinquencyAging(suite.ctx, "acme")
	assert.Equal(suite.T(), common.KindStorage, common.KindOf(err))
	assert.Equal(suite.T(), "Failed to fetch delinquency aging report", common.PublicMessage(err))
}

func (suite *ReportServiceTestSuite) TestRollups_TieBreak() {
	suite.member(models.RoleOps)
	birch := uuid.New()
	alder := uuid.New()
	suite.ledger.On("ListUnpaidPeriodsByBuilding", mock.Anything, suite.org.ID).Return([]models.BuildingUnpaidPeriod{
		{PeriodID: uuid.New(), Status: models.RentStatusDue, Amount: 100, BuildingID: birch, BuildingName: "Birch"},
		{PeriodID: uuid.New(), Status: models.RentStatusOverdue, Amount: 100, BuildingID: alder, BuildingName: "Alder"},
	}, nil)

	report, err := suite.service.GetBuildingRollups(suite.ctx, "acme")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), report.Buildings, 2)
	assert.Equal(suite.T(), "Alder", report.Buildings[0].BuildingName)
	assert.Equal(suite.T(), "Birch", report.Buildings[1].BuildingName)
}

func (suite *ReportServiceTestSuite) TestCollection_InvalidRange() {
	suite.member(models.RoleManager)

	_, err := suite.service.GetCollectionRate(suite.ctx, "acme", "2024-02-01", "2024-01-01")
	assert.Equal(suite.T(), common.KindInvalidDateRange, common.KindOf(err))
	suite.ledger.AssertNotCalled(suite.T(), "ListPeriodsDueBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReportServiceTestSuite) TestCollection_NoPeriodsSkipsPayments() {
	suite.member(models.RoleManager)
	suite.ledger.On("ListPeriodsDueBetween", mock.Anything, suite.org.ID, "2024-01-01", "2024-01-31").
		Return([]models.DuePeriod{}, nil)

	report, err := suite.service.GetCollectionRate(suite.ctx, "acme", "2024-01-01", "2024-01-31")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CollectionMetrics{}, report.Metrics)
	assert.Equal(suite.T(), models.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"}, report.DateRange)
	suite.ledger.AssertNotCalled(suite.T(), "ListPaymentsForPeriods", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReportServiceTestSuite) TestCollection_FortyPercent() {
	suite.member(models.RoleViewer)
	a, b := uuid.New(), uuid.New()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	suite.ledger.On("ListPeriodsDueBetween", mock.Anything, suite.org.ID, "2024-01-01", "2024-01-31").
		Return([]models.DuePeriod{
			{PeriodID: a, DueDate: day("2024-01-05"), Amount: 50},
			{PeriodID: b, DueDate: day("2024-01-20"), Amount: 50},
		}, nil)
	suite.ledger.On("ListPaymentsForPeriods", mock.Anything, suite.org.ID, []uuid.UUID{a, b}, from, to).
		Return([]models.PeriodPayment{
			{PaymentID: uuid.New(), RentPeriodID: a, Amount: 40, PaidAt: day("2024-01-10")},
		}, nil)

	report, err := suite.service.GetCollectionRate(suite.ctx, "acme", "2024-01-01T08:00:00Z", "2024-01-31")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 100.0, report.Metrics.TotalDue)
	assert.Equal(suite.T(), 40.0, report.Metrics.TotalCollected)
	assert.Equal(suite.T(), 40.0, report.Metrics.CollectionRate)
	assert.Equal(suite.T(), 2, report.Metrics.PeriodCount)
	assert.Equal(suite.T(), 1, report.Metrics.PaidPeriodCount)
}

func (suite *ReportServiceTestSuite) TestExport_ViewerDenied() {
	suite.member(models.RoleViewer)

	_, err := suite.service.ExportReport(suite.ctx, "acme", models.ReportDelinquencyAging, "", "")
	assert.Equal(suite.T(), common.KindInsufficientPermissions, common.KindOf(err))
}

func (suite *ReportServiceTestSuite) TestExport_UnknownKind() {
	suite.member(models.RoleOwner)

	_, err := suite.service.ExportReport(suite.ctx, "acme", models.ReportKind("rent-roll"), "", "")
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *ReportServiceTestSuite) TestExport_Aging() {
	suite.member(models.RoleManager)
	suite.ledger.On("ListUnpaidPeriods", mock.Anything, suite.org.ID).Return([]models.UnpaidPeriod{}, nil)

	objectName := "exports/acme/delinquency-aging-20240315T120000Z.csv"
	suite.storage.On("UploadObject", mock.Anything, "reports", objectName, mock.Anything, mock.AnythingOfType("int64"), "text/csv").Return(nil)
	suite.storage.On("GetPresignedURL", mock.Anything, "reports", objectName, 15*time.Minute).Return("https://files.example/acme.csv", nil)

	export, err := suite.service.ExportReport(suite.ctx, "acme", models.ReportDelinquencyAging, "", "")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), objectName, export.ObjectName)
	assert.Equal(suite.T(), "reports", export.Bucket)
	assert.Equal(suite.T(), "https://files.example/acme.csv", export.URL)
	assert.Positive(suite.T(), export.SizeBytes)
	assert.Equal(suite.T(), fixedNow, export.GeneratedAt)
}

func (suite *ReportServiceTestSuite) TestExport_UploadFailure() {
	suite.member(models.RoleOwner)
	suite.ledger.On("ListUnpaidPeriodsByBuilding", mock.Anything, suite.org.ID).Return([]models.BuildingUnpaidPeriod{}, nil)
	suite.storage.On("UploadObject", mock.Anything, "reports", mock.Anything, mock.Anything, mock.Anything, "text/csv").
		Return(errors.New("bucket is read-only"))

	_, err := suite.service.ExportReport(suite.ctx, "acme", models.ReportBuildingRollups, "", "")
	assert.Equal(suite.T(), common.KindStorage, common.KindOf(err))
	assert.Equal(suite.T(), "Failed to export report", common.PublicMessage(err))
}

func (suite *ReportServiceTestSuite) TestSnapshot() {
	suite.ledger.On("ListUnpaidPeriods", mock.Anything, suite.org.ID).Return([]models.UnpaidPeriod{}, nil)
	suite.ledger.On("ListUnpaidPeriodsByBuilding", mock.Anything, suite.org.ID).Return([]models.BuildingUnpaidPeriod{}, nil)
	suite.storage.On("UploadObject", mock.Anything, "reports", mock.Anything, mock.Anything, mock.Anything, "text/csv").Return(nil).Twice()

	// A retry that runs after midnight still writes under the scheduled day.
	written, err := suite.service.Snapshot(context.Background(), &suite.org, "2024-03-14")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{
		"snapshots/acme/2024-03-14/delinquency-aging.csv",
		"snapshots/acme/2024-03-14/building-rollups.csv",
	}, written)
}

func TestReportService_CachesReports(t *testing.T) {
	srv := miniredis.RunT(t)
	cache := caching.NewRedisCacheService(srv.Addr(), "", 0)

	orgRepo := new(MockOrganizationRepository)
	ledger := new(MockLedgerRepository)
	userID := uuid.New()
	org := models.Organization{ID: uuid.New(), Slug: "acme"}
	orgRepo.On("GetMembership", mock.Anything, "acme", userID).
		Return(&repositories.Membership{Organization: org, Role: "OWNER"}, nil)
	ledger.On("ListUnpaidPeriods", mock.Anything, org.ID).Return([]models.UnpaidPeriod{
		{PeriodID: uuid.New(), Status: models.RentStatusDue, Amount: 250},
	}, nil).Once()

	clock := fixedNow
	service := NewReportService(services.NewAccessService(orgRepo), ledger,
		WithCache(cache, time.Minute),
		WithClock(func() time.Time { return clock }),
	)
	ctx := common.WithUserID(context.Background(), userID)

	first, err := service.GetDelinquencyAging(ctx, "acme")
	require.NoError(t, err)

	clock = fixedNow.Add(10 * time.Second)
	second, err := service.GetDelinquencyAging(ctx, "acme")
	require.NoError(t, err)

	assert.Equal(t, first.Totals, second.Totals)
	assert.True(t, first.GeneratedAt.Equal(second.GeneratedAt))
	ledger.AssertNumberOfCalls(t, "ListUnpaidPeriods", 1)

	require.NoError(t, cache.InvalidateOrgReports(ctx, org.ID))
	ledger.On("ListUnpaidPeriods", mock.Anything, org.ID).Return([]models.UnpaidPeriod{}, nil).Once()
	third, err := service.GetDelinquencyAging(ctx, "acme")
	require.NoError(t, err)
	assert.Zero(t, third.Totals.UnpaidPeriods)
	assert.True(t, third.GeneratedAt.Equal(clock))
}
