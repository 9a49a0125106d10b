package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"rentledger/internal/caching"
	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"
	"rentledger/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OccupancyService interface {
	List(ctx context.Context, orgSlug string, query models.OccupancyQuery) ([]*models.Occupancy, error)
	Create(ctx context.Context, orgSlug string, input models.OccupancyInput) (*models.Occupancy, error)
	Update(ctx context.Context, orgSlug, occupancyID string, input models.OccupancyInput) (*models.Occupancy, error)
	Delete(ctx context.Context, orgSlug, occupancyID string) error
}

type occupancyService struct {
	access        AccessService
	occupancyRepo repositories.OccupancyRepository
	unitRepo      repositories.UnitRepository
	tenantRepo    repositories.TenantRepository
	cache         caching.ReportCache
	validate      *validator.Validate
}

func NewOccupancyService(
	access AccessService,
	occupancyRepo repositories.OccupancyRepository,
	unitRepo repositories.UnitRepository,
	tenantRepo repositories.TenantRepository,
	cache caching.ReportCache,
) OccupancyService {
	if cache == nil {
		cache = caching.NewNoopCache()
	}
	return &occupancyService{
		access:        access,
		occupancyRepo: occupancyRepo,
		unitRepo:      unitRepo,
		tenantRepo:    tenantRepo,
		cache:         cache,
		validate:      newInputValidator(),
	}
}

// newInputValidator reports fields by their JSON names.
func newInputValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func parseOccupancyFilter(query models.OccupancyQuery) (models.OccupancyFilter, error) {
	var filter models.OccupancyFilter
	if query.UnitID != "" {
		unitID, err := common.ValidateUUID(query.UnitID, "unit_id")
		if err != nil {
			return filter, common.NewValidationError(err.Error())
		}
		filter.UnitID = &unitID
	}
	if query.TenantID != "" {
		tenantID, err := common.ValidateUUID(query.TenantID, "tenant_id")
		if err != nil {
			return filter, common.NewValidationError(err.Error())
		}
		filter.TenantID = &tenantID
	}
	return filter, nil
}

// occupancyDates is an input that passed field validation.
type occupancyDates struct {
	activeFrom time.Time
	activeTo   *time.Time
}

func (s *occupancyService) List(ctx context.Context, orgSlug string, query models.OccupancyQuery) ([]*models.Occupancy, error) {
	orgCtx, err := s.access.ResolveFor(ctx, orgSlug, OpListOccupancies)
	if err != nil {
		return nil, err
	}
	filter, err := parseOccupancyFilter(query)
	if err != nil {
		return nil, err
	}

	occupancies, err := s.occupancyRepo.List(ctx, orgCtx.OrganizationID, filter)
	if err != nil {
		return nil, common.NewStorageError("fetch occupancies", err)
	}
	return occupancies, nil
}

func (s *occupancyService) Create(ctx context.Context, orgSlug string, input models.OccupancyInput) (*models.Occupancy, error) {
	orgCtx, err := s.access.ResolveFor(ctx, orgSlug, OpCreateOccupancy)
	if err != nil {
		return nil, err
	}

	dates, err := s.validateInput(&input)
	if err != nil {
		return nil, err
	}
	unitID, tenantID, err := s.resolveReferences(ctx, orgCtx.OrganizationID, input)
	if err != nil {
		return nil, err
	}

	occupancy := &models.Occupancy{
		ID:             uuid.New(),
		OrganizationID: orgCtx.OrganizationID,
		UnitID:         unitID,
		TenantID:       tenantID,
		ActiveFrom:     dates.activeFrom,
		ActiveTo:       dates.activeTo,
	}
	if err := s.occupancyRepo.Create(ctx, occupancy); err != nil {
		return nil, common.NewStorageError("create occupancy", err)
	}

	s.logMutation(orgCtx, occupancy.ID, "created")
	s.invalidateReports(ctx, orgCtx.OrganizationID)
	return occupancy, nil
}

func (s *occupancyService) Update(ctx context.Context, orgSlug, occupancyID string, input models.OccupancyInput) (*models.Occupancy, error) {
	orgCtx, err := s.access.ResolveFor(ctx, orgSlug, OpUpdateOccupancy)
	if err != nil {
		return nil, err
	}

	dates, err := s.validateInput(&input)
	if err != nil {
		return nil, err
	}
	unitID, tenantID, err := s.resolveReferences(ctx, orgCtx.OrganizationID, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.findOccupancy(ctx, orgCtx.OrganizationID, occupancyID)
	if err != nil {
		return nil, err
	}

	existing.UnitID = unitID
	existing.TenantID = tenantID
	existing.ActiveFrom = dates.activeFrom
	existing.ActiveTo = dates.activeTo
	if err := s.occupancyRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NewNotFoundError("Occupancy")
		}
		return nil, common.NewStorageError("update occupancy", err)
	}

	s.logMutation(orgCtx, existing.ID, "updated")
	s.invalidateReports(ctx, orgCtx.OrganizationID)
	return existing, nil
}

func (s *occupancyService) Delete(ctx context.Context, orgSlug, occupancyID string) error {
	orgCtx, err := s.access.ResolveFor(ctx, orgSlug, OpDeleteOccupancy)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(strings.TrimSpace(occupancyID))
	if err != nil {
		return common.NewNotFoundError("Occupancy")
	}
	if err := s.occupancyRepo.Delete(ctx, orgCtx.OrganizationID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.NewNotFoundError("Occupancy")
		}
		return common.NewStorageError("delete occupancy", err)
	}

	s.logMutation(orgCtx, id, "deleted")
	s.invalidateReports(ctx, orgCtx.OrganizationID)
	return nil
}

// validateInput trims the input in place, checks required fields and date
// formats, then the ordering of the two dates.
func (s *occupancyService) validateInput(input *models.OccupancyInput) (*occupancyDates, error) {
	input.UnitID = strings.TrimSpace(input.UnitID)
	input.TenantID = strings.TrimSpace(input.TenantID)
	input.ActiveFrom = strings.TrimSpace(input.ActiveFrom)
	if input.ActiveTo != nil {
		trimmed := strings.TrimSpace(*input.ActiveTo)
		if trimmed == "" {
			input.ActiveTo = nil
		} else {
			input.ActiveTo = &trimmed
		}
	}

	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, common.NewValidationError(fieldMessage(fieldErrs[0]))
		}
		return nil, common.NewValidationError("Invalid occupancy input")
	}

	// Formats were checked above.
	activeFrom, _ := time.Parse(common.DateLayout, input.ActiveFrom)
	dates := &occupancyDates{activeFrom: activeFrom}
	if input.ActiveTo != nil {
		activeTo, _ := time.Parse(common.DateLayout, *input.ActiveTo)
		if activeTo.Before(activeFrom) {
			return nil, common.NewValidationError("active_to must be on or after active_from")
		}
		dates.activeTo = &activeTo
	}
	return dates, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// resolveReferences checks that the unit and tenant both belong to the organization.
func (s *occupancyService) resolveReferences(ctx context.Context, orgID uuid.UUID, input models.OccupancyInput) (uuid.UUID, uuid.UUID, error) {
	unitID, err := uuid.Parse(input.UnitID)
	if err != nil {
		return uuid.Nil, uuid.Nil, common.NewNotFoundError("Unit")
	}
	if _, err := s.unitRepo.GetByID(ctx, orgID, unitID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return uuid.Nil, uuid.Nil, common.NewNotFoundError("Unit")
		}
		return uuid.Nil, uuid.Nil, common.NewStorageError("verify unit", err)
	}

	tenantID, err := uuid.Parse(input.TenantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, common.NewNotFoundError("Tenant")
	}
	if _, err := s.tenantRepo.GetByID(ctx, orgID, tenantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return uuid.Nil, uuid.Nil, common.NewNotFoundError("Tenant")
		}
		return uuid.Nil, uuid.Nil, common.NewStorageError("verify tenant", err)
	}

	return unitID, tenantID, nil
}

func (s *occupancyService) findOccupancy(ctx context.Context, orgID uuid.UUID, occupancyID string) (*models.Occupancy, error) {
	id, err := uuid.Parse(strings.TrimSpace(occupancyID))
	if err != nil {
		return nil, common.NewNotFoundError("Occupancy")
	}
	occupancy, err := s.occupancyRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NewNotFoundError("Occupancy")
		}
		return nil, common.NewStorageError("fetch occupancy", err)
	}
	return occupancy, nil
}

func (s *occupancyService) logMutation(orgCtx *models.OrgContext, occupancyID uuid.UUID, action string) {
	logger.Log.WithFields(logrus.Fields{
		"organization_id": orgCtx.OrganizationID,
		"user_id":         orgCtx.UserID,
		"occupancy_id":    occupancyID,
	}).Infof("occupancy %s", action)
}

// invalidateReports is best effort. Failures are logged and dropped.
func (s *occupancyService) invalidateReports(ctx context.Context, orgID uuid.UUID) {
	if err := s.cache.InvalidateOrgReports(ctx, orgID); err != nil {
		logger.Log.WithError(err).WithField("organization_id", orgID).Warn("failed to invalidate report cache")
	}
}
