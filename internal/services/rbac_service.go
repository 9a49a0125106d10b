package services

import (
	"context"
	"errors"
	"fmt"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"
	"rentledger/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Operation is a guarded entry point.
type Operation string

const (
	OpListOccupancies Operation = "occupancies:list"
	OpCreateOccupancy Operation = "occupancies:create"
	OpUpdateOccupancy Operation = "occupancies:update"
	OpDeleteOccupancy Operation = "occupancies:delete"
	OpReadReports     Operation = "reports:read"
	OpExportReports   Operation = "reports:export"
	OpReadStats       Operation = "stats:read"
)

var allRoles = map[models.Role]bool{
	models.RoleOwner:   true,
	models.RoleManager: true,
	models.RoleOps:     true,
	models.RoleViewer:  true,
}

// capabilities is the full (operation, role) grant table. Anything absent is denied.
var capabilities = map[Operation]map[models.Role]bool{
	OpListOccupancies: allRoles,
	OpCreateOccupancy: {models.RoleOwner: true, models.RoleManager: true, models.RoleOps: true},
	OpUpdateOccupancy: {models.RoleOwner: true, models.RoleManager: true, models.RoleOps: true},
	OpDeleteOccupancy: {models.RoleOwner: true},
	OpReadReports:     allRoles,
	OpExportReports:   {models.RoleOwner: true, models.RoleManager: true},
	OpReadStats:       allRoles,
}

var denialMessages = map[Operation]string{
	OpCreateOccupancy: "Insufficient permissions to create occupancies",
	OpUpdateOccupancy: "Insufficient permissions to update occupancies",
	OpDeleteOccupancy: "Only organization owners can delete occupancies",
	OpExportReports:   "Insufficient permissions to export reports",
}

// Authorize reports whether the role carried by orgCtx may perform op.
func Authorize(orgCtx *models.OrgContext, op Operation) error {
	if orgCtx != nil && capabilities[op][orgCtx.Role] {
		return nil
	}
	if msg, ok := denialMessages[op]; ok {
		return common.NewPermissionError(msg)
	}
	return common.NewPermissionError(fmt.Sprintf("Insufficient permissions for %s", op))
}

// AccessService resolves the caller of a request into an organization context.
type AccessService interface {
	// Resolve reads the authenticated user from ctx and looks up their
	// membership in the organization named by orgSlug.
	Resolve(ctx context.Context, orgSlug string) (*models.OrgContext, error)
	// ResolveFor is Resolve followed by Authorize.
	ResolveFor(ctx context.Context, orgSlug string, op Operation) (*models.OrgContext, error)
}

type accessService struct {
	orgRepo repositories.OrganizationRepository
}

func NewAccessService(orgRepo repositories.OrganizationRepository) AccessService {
	return &accessService{orgRepo: orgRepo}
}

func (s *accessService) Resolve(ctx context.Context, orgSlug string) (*models.OrgContext, error) {
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return nil, common.NewUnauthenticatedError()
	}
	if orgSlug == "" {
		return nil, common.NewOrgResolutionError(errors.New("empty organization slug"))
	}

	membership, err := s.orgRepo.GetMembership(ctx, orgSlug, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"org_slug": orgSlug,
				"user_id":  userID,
			}).Error("organization membership lookup failed")
		}
		return nil, common.NewOrgResolutionError(err)
	}

	role, ok := models.ParseRole(membership.Role)
	if !ok {
		logger.Log.WithFields(logrus.Fields{
			"organization_id": membership.Organization.ID,
			"user_id":         userID,
			"role":            membership.Role,
		}).Warn("membership carries unknown role")
		return nil, common.NewOrgResolutionError(fmt.Errorf("unknown role %q", membership.Role))
	}

	return &models.OrgContext{
		UserID:         userID,
		OrganizationID: membership.Organization.ID,
		OrgSlug:        membership.Organization.Slug,
		Role:           role,
	}, nil
}

func (s *accessService) ResolveFor(ctx context.Context, orgSlug string, op Operation) (*models.OrgContext, error) {
	orgCtx, err := s.Resolve(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	if err := Authorize(orgCtx, op); err != nil {
		return nil, err
	}
	return orgCtx, nil
}
