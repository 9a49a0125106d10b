package analytics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"rentledger/internal/caching"
	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"
	"rentledger/internal/services"
	"rentledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const presignExpiry = 15 * time.Minute

// ReportService is the entry point for every report: resolve the caller,
// authorize, fetch the ledger rows, aggregate.
type ReportService struct {
	access   services.AccessService
	ledger   repositories.LedgerRepository
	cache    caching.ReportCache
	cacheTTL time.Duration
	storage  services.ObjectStorage
	bucket   string
	now      func() time.Time
}

// ReportServiceOption configures optional collaborators.
type ReportServiceOption func(*ReportService)

// WithCache enables report caching for ttl. A zero ttl leaves caching off.
func WithCache(cache caching.ReportCache, ttl time.Duration) ReportServiceOption {
	return func(s *ReportService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithStorage enables exports and snapshots into bucket.
func WithStorage(storage services.ObjectStorage, bucket string) ReportServiceOption {
	return func(s *ReportService) {
		s.storage = storage
		s.bucket = bucket
	}
}

// WithClock overrides the source of generatedAt.
func WithClock(now func() time.Time) ReportServiceOption {
	return func(s *ReportService) {
		s.now = now
	}
}

func NewReportService(access services.AccessService, ledger repositories.LedgerRepository, opts ...ReportServiceOption) *ReportService {
	s := &ReportService{
		access: access,
		ledger: ledger,
		cache:  caching.NewNoopCache(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) GetDelinquencyAging(ctx context.Context, orgSlug string) (*models.AgingReport, error) {
	orgCtx, err := s.access.ResolveFor(ctx, orgSlug, services.OpReadReports)
	if err != nil {
		return nil, err
	}
	return s.AgingFor(ctx, orgCtx.OrganizationID)
}

func (s *ReportService) GetBuildingRollups(ctx context.Context, orgSlug string) (*models.RollupReport, error) {
	orgCtx, err := s.access.ResolveFor(ctx, orgSlug, services.OpReadReports)
	if err != nil {
		return nil, err
	}
	return s.RollupsFor(ctx, orgCtx.OrganizationID)
}

func (s *ReportService) GetCollectionRate(ctx context.Context, orgSlug, startDate, endDate string) (*models.CollectionReport, error) {
	orgCtx, err := s.access.ResolveFor(ctx, orgSlug, services.OpReadReports)
	if err != nil {
		return nil, err
	}
	window, err := ParseReportWindow(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.CollectionFor(ctx, orgCtx.OrganizationID, window)
}

// AgingFor builds the aging report for an already-authorized organization.
func (s *ReportService) AgingFor(ctx context.Context, orgID uuid.UUID) (*models.AgingReport, error) {
	key := caching.ReportKey(orgID, models.ReportDelinquencyAging)
	report := &models.AgingReport{}
	if s.cached(ctx, key, report) {
		return report, nil
	}

	periods, err := s.ledger.ListUnpaidPeriods(ctx, orgID)
	if err != nil {
		return nil, common.NewStorageError("fetch delinquency aging report", err)
	}
	report = BuildAgingReport(periods, s.now().UTC())

	logger.Log.WithFields(logrus.Fields{
		"organization_id": orgID,
		"report":          models.ReportDelinquencyAging,
		"unpaid_periods":  report.Totals.UnpaidPeriods,
	}).Debug("report generated")
	s.store(ctx, key, report)
	return report, nil
}

// RollupsFor builds the building rollup for an already-authorized organization.
func (s *ReportService) RollupsFor(ctx context.Context, orgID uuid.UUID) (*models.RollupReport, error) {
	key := caching.ReportKey(orgID, models.ReportBuildingRollups)
	report := &models.RollupReport{}
	if s.cached(ctx, key, report) {
		return report, nil
	}

	periods, err := s.ledger.ListUnpaidPeriodsByBuilding(ctx, orgID)
	if err != nil {
		return nil, common.NewStorageError("fetch building rollup report", err)
	}
	report = BuildBuildingRollups(periods, s.now().UTC())

	logger.Log.WithFields(logrus.Fields{
		"organization_id": orgID,
		"report":          models.ReportBuildingRollups,
		"buildings":       len(report.Buildings),
	}).Debug("report generated")
	s.store(ctx, key, report)
	return report, nil
}

// CollectionFor builds the collection report for an already-authorized organization.
func (s *ReportService) CollectionFor(ctx context.Context, orgID uuid.UUID, window ReportWindow) (*models.CollectionReport, error) {
	dr := window.DateRange()
	key := caching.ReportKey(orgID, models.ReportCollectionRate, dr.StartDate, dr.EndDate)
	report := &models.CollectionReport{}
	if s.cached(ctx, key, report) {
		return report, nil
	}

	now := s.now().UTC()
	periods, err := s.ledger.ListPeriodsDueBetween(ctx, orgID, dr.StartDate, dr.EndDate)
	if err != nil {
		return nil, common.NewStorageError("fetch collection rate report", err)
	}

	if len(periods) == 0 {
		report = EmptyCollectionReport(window, now)
	} else {
		ids := make([]uuid.UUID, len(periods))
		for i, p := range periods {
			ids[i] = p.PeriodID
		}
		payments, err := s.ledger.ListPaymentsForPeriods(ctx, orgID, ids, window.PaidAtFrom(), window.PaidAtTo())
		if err != nil {
			return nil, common.NewStorageError("fetch collection rate report", err)
		}
		report = BuildCollectionReport(window, periods, payments, now)
	}

	logger.Log.WithFields(logrus.Fields{
		"organization_id": orgID,
		"report":          models.ReportCollectionRate,
		"period_count":    report.Metrics.PeriodCount,
	}).Debug("report generated")
	s.store(ctx, key, report)
	return report, nil
}

// ExportReport renders one report to CSV, uploads it and returns a
// short-lived download link. Only collection-rate uses the date bounds.
func (s *ReportService) ExportReport(ctx context.Context, orgSlug string, kind models.ReportKind, startDate, endDate string) (*models.ReportExport, error) {
	orgCtx, err := s.access.ResolveFor(ctx, orgSlug, services.OpExportReports)
	if err != nil {
		return nil, err
	}

	var (
		body        []byte
		generatedAt time.Time
	)
	switch kind {
	case models.ReportDelinquencyAging:
		report, err := s.AgingFor(ctx, orgCtx.OrganizationID)
		if err != nil {
			return nil, err
		}
		generatedAt = report.GeneratedAt
		body, err = RenderAgingCSV(report)
		if err != nil {
			return nil, common.NewStorageError("render report", err)
		}
	case models.ReportBuildingRollups:
		report, err := s.RollupsFor(ctx, orgCtx.OrganizationID)
		if err != nil {
			return nil, err
		}
		generatedAt = report.GeneratedAt
		body, err = RenderRollupCSV(report)
		if err != nil {
			return nil, common.NewStorageError("render report", err)
		}
	case models.ReportCollectionRate:
		window, err := ParseReportWindow(startDate, endDate)
		if err != nil {
			return nil, err
		}
		report, err := s.CollectionFor(ctx, orgCtx.OrganizationID, window)
		if err != nil {
			return nil, err
		}
		generatedAt = report.GeneratedAt
		body, err = RenderCollectionCSV(report)
		if err != nil {
			return nil, common.NewStorageError("render report", err)
		}
	default:
		return nil, common.NewValidationError(fmt.Sprintf("Unknown report kind %q", kind))
	}

	objectName := fmt.Sprintf("exports/%s/%s-%s.csv", orgCtx.OrgSlug, kind, s.now().UTC().Format("20060102T150405Z"))
	if err := s.upload(ctx, objectName, body); err != nil {
		return nil, common.NewStorageError("export report", err)
	}
	url, err := s.storage.GetPresignedURL(ctx, s.bucket, objectName, presignExpiry)
	if err != nil {
		return nil, common.NewStorageError("export report", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"organization_id": orgCtx.OrganizationID,
		"report":          kind,
		"object":          objectName,
		"size_bytes":      len(body),
	}).Info("report exported")

	return &models.ReportExport{
		Kind:        kind,
		Bucket:      s.bucket,
		ObjectName:  objectName,
		URL:         url,
		SizeBytes:   int64(len(body)),
		GeneratedAt: generatedAt,
	}, nil
}

// Snapshot uploads the aging and rollup reports of org under
// snapshots/<slug>/<day>/ and returns the object names written.
func (s *ReportService) Snapshot(ctx context.Context, org *models.Organization, day string) ([]string, error) {
	aging, err := s.AgingFor(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	rollups, err := s.RollupsFor(ctx, org.ID)
	if err != nil {
		return nil, err
	}

	agingCSV, err := RenderAgingCSV(aging)
	if err != nil {
		return nil, err
	}
	rollupCSV, err := RenderRollupCSV(rollups)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("snapshots/%s/%s", org.Slug, day)
	objects := []struct {
		name string
		body []byte
	}{
		{prefix + "/" + string(models.ReportDelinquencyAging) + ".csv", agingCSV},
		{prefix + "/" + string(models.ReportBuildingRollups) + ".csv", rollupCSV},
	}

	written := make([]string, 0, len(objects))
	for _, obj := range objects {
		if err := s.upload(ctx, obj.name, obj.body); err != nil {
			return written, fmt.Errorf("upload %s: %w", obj.name, err)
		}
		written = append(written, obj.name)
	}
	return written, nil
}

var errStorageNotConfigured = errors.New("object storage is not configured")

func (s *ReportService) upload(ctx context.Context, objectName string, body []byte) error {
	if s.storage == nil || s.bucket == "" {
		return errStorageNotConfigured
	}
	return s.storage.UploadObject(ctx, s.bucket, objectName, bytes.NewReader(body), int64(len(body)), csvContentType)
}

// cached loads key into dest. Cache failures count as misses.
func (s *ReportService) cached(ctx context.Context, key string, dest any) bool {
	if s.cacheTTL <= 0 {
		return false
	}
	hit, err := s.cache.GetReport(ctx, key, dest)
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("report cache read failed")
		return false
	}
	return hit
}

func (s *ReportService) store(ctx context.Context, key string, report any) {
	if s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.SetReport(ctx, key, report, s.cacheTTL); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("report cache write failed")
	}
}
