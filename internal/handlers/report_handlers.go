package handlers

import (
	"context"
	"net/http"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/labstack/echo/v4"
)

// ReportReader is the part of the report service the HTTP layer needs.
type ReportReader interface {
	GetDelinquencyAging(ctx context.Context, orgSlug string) (*models.AgingReport, error)
	GetBuildingRollups(ctx context.Context, orgSlug string) (*models.RollupReport, error)
	GetCollectionRate(ctx context.Context, orgSlug, startDate, endDate string) (*models.CollectionReport, error)
	ExportReport(ctx context.Context, orgSlug string, kind models.ReportKind, startDate, endDate string) (*models.ReportExport, error)
}

// ReportHandlers serves the read-only financial reports
type ReportHandlers struct {
	reports ReportReader
}

// NewReportHandlers creates a new report handlers instance
func NewReportHandlers(reports ReportReader) *ReportHandlers {
	return &ReportHandlers{reports: reports}
}

// GetDelinquencyAging godoc
// @Summary Delinquency aging report
// @Description Unpaid rent periods grouped into days-overdue buckets
// @Tags Reports
// @Produce json
// @Param orgSlug path string true "Organization slug"
// @Success 200 {object} common.Envelope
// @Failure 401 {object} common.Envelope
// @Failure 403 {object} common.Envelope
// @Security BearerAuth
// @Router /orgs/{orgSlug}/reports/delinquency-aging [get]
func (h *ReportHandlers) GetDelinquencyAging(c echo.Context) error {
	report, err := h.reports.GetDelinquencyAging(c.Request().Context(), c.Param("orgSlug"))
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendData(c, http.StatusOK, report)
}

// GetBuildingRollups godoc
// @Summary Building rollup report
// @Description Unpaid rent per building, largest balance first
// @Tags Reports
// @Produce json
// @Param orgSlug path string true "Organization slug"
// @Success 200 {object} common.Envelope
// @Failure 403 {object} common.Envelope
// @Security BearerAuth
// @Router /orgs/{orgSlug}/reports/building-rollups [get]
func (h *ReportHandlers) GetBuildingRollups(c echo.Context) error {
	report, err := h.reports.GetBuildingRollups(c.Request().Context(), c.Param("orgSlug"))
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendData(c, http.StatusOK, report)
}

// GetCollectionRate godoc
// @Summary Collection rate report
// @Description Share of rent due in the window that has been collected
// @Tags Reports
// @Produce json
// @Param orgSlug path string true "Organization slug"
// @Param start_date query string true "Window start (YYYY-MM-DD)"
// @Param end_date query string true "Window end (YYYY-MM-DD)"
// @Success 200 {object} common.Envelope
// @Failure 400 {object} common.Envelope
// @Security BearerAuth
// @Router /orgs/{orgSlug}/reports/collection-rate [get]
func (h *ReportHandlers) GetCollectionRate(c echo.Context) error {
	report, err := h.reports.GetCollectionRate(
		c.Request().Context(),
		c.Param("orgSlug"),
		c.QueryParam("start_date"),
		c.QueryParam("end_date"),
	)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendData(c, http.StatusOK, report)
}

// ExportReport godoc
// @Summary Export report as CSV
// @Description Renders a report to CSV, stores it and returns a short-lived download link
// @Tags Reports
// @Produce json
// @Param orgSlug path string true "Organization slug"
// @Param kind path string true "delinquency-aging, building-rollups or collection-rate"
// @Param start_date query string false "Window start, collection-rate only"
// @Param end_date query string false "Window end, collection-rate only"
// @Success 201 {object} common.Envelope
// @Failure 400 {object} common.Envelope
// @Failure 403 {object} common.Envelope
// @Security BearerAuth
// @Router /orgs/{orgSlug}/reports/{kind}/export [post]
func (h *ReportHandlers) ExportReport(c echo.Context) error {
	export, err := h.reports.ExportReport(
		c.Request().Context(),
		c.Param("orgSlug"),
		models.ReportKind(c.Param("kind")),
		c.QueryParam("start_date"),
		c.QueryParam("end_date"),
	)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendData(c, http.StatusCreated, export)
}
