package handlers

import (
	"net/http"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/services"

	"github.com/labstack/echo/v4"
)

// OccupancyHandlers handles occupancy-related HTTP requests
type OccupancyHandlers struct {
	occupancyService services.OccupancyService
}

// NewOccupancyHandlers creates a new occupancy handlers instance
func NewOccupancyHandlers(occupancyService services.OccupancyService) *OccupancyHandlers {
	return &OccupancyHandlers{occupancyService: occupancyService}
}

// ListOccupancies godoc
// @Summary List occupancies
// @Description List occupancies of an organization, newest first
// @Tags Occupancies
// @Produce json
// @Param orgSlug path string true "Organization slug"
// @Param unit_id query string false "Filter by unit"
// @Param tenant_id query string false "Filter by tenant"
// @Success 200 {object} common.Envelope
// @Failure 400 {object} common.Envelope
// @Failure 403 {object} common.Envelope
// @Security BearerAuth
// @Router /orgs/{orgSlug}/occupancies [get]
func (h *OccupancyHandlers) ListOccupancies(c echo.Context) error {
	query := models.OccupancyQuery{
		UnitID:   c.QueryParam("unit_id"),
		TenantID: c.QueryParam("tenant_id"),
	}

	occupancies, err := h.occupancyService.List(c.Request().Context(), c.Param("orgSlug"), query)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendData(c, http.StatusOK, occupancies)
}

// CreateOccupancy godoc
// @Summary Create occupancy
// @Tags Occupancies
// @Accept json
// @Produce json
// @Param orgSlug path string true "Organization slug"
// @Param occupancy body models.OccupancyInput true "Occupancy"
// @Success 201 {object} common.Envelope
// @Failure 400 {object} common.Envelope
// @Failure 404 {object} common.Envelope
// @Security BearerAuth
// @Router /orgs/{orgSlug}/occupancies [post]
func (h *OccupancyHandlers) CreateOccupancy(c echo.Context) error {
	var input models.OccupancyInput
	if err := c.Bind(&input); err != nil {
		return common.SendError(c, common.NewValidationError("Invalid request body"))
	}

	occupancy, err := h.occupancyService.Create(c.Request().Context(), c.Param("orgSlug"), input)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendData(c, http.StatusCreated, occupancy)
}

// UpdateOccupancy godoc
// @Summary Update occupancy
// @Tags Occupancies
// @Accept json
// @Produce json
// @Param orgSlug path string true "Organization slug"
// @Param id path string true "Occupancy ID"
// @Param occupancy body models.OccupancyInput true "Occupancy"
// @Success 200 {object} common.Envelope
// @Failure 400 {object} common.Envelope
// @Failure 404 {object} common.Envelope
// @Security BearerAuth
// @Router /orgs/{orgSlug}/occupancies/{id} [put]
func (h *OccupancyHandlers) UpdateOccupancy(c echo.Context) error {
	var input models.OccupancyInput
	if err := c.Bind(&input); err != nil {
		return common.SendError(c, common.NewValidationError("Invalid request body"))
	}

	occupancy, err := h.occupancyService.Update(c.Request().Context(), c.Param("orgSlug"), c.Param("id"), input)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendData(c, http.StatusOK, occupancy)
}

// DeleteOccupancy godoc
// @Summary Delete occupancy
// @Tags Occupancies
// @Produce json
// @Param orgSlug path string true "Organization slug"
// @Param id path string true "Occupancy ID"
// @Success 200 {object} common.Envelope
// @Failure 403 {object} common.Envelope
// @Failure 404 {object} common.Envelope
// @Security BearerAuth
// @Router /orgs/{orgSlug}/occupancies/{id} [delete]
func (h *OccupancyHandlers) DeleteOccupancy(c echo.Context) error {
	id := c.Param("id")
	if err := h.occupancyService.Delete(c.Request().Context(), c.Param("orgSlug"), id); err != nil {
		return common.SendError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]string{"id": id})
}
