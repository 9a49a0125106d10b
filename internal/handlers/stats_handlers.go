package handlers

import (
	"net/http"

	"rentledger/internal/common"
	"rentledger/internal/services"

	"github.com/labstack/echo/v4"
)

type StatsHandlers struct {
	statsService services.StatsService
}

func NewStatsHandlers(statsService services.StatsService) *StatsHandlers {
	return &StatsHandlers{statsService: statsService}
}

// GetOrgStats godoc
// @Summary Organization stats
// @Description Row counts for the organization dashboard
// @Tags Stats
// @Produce json
// @Param orgSlug path string true "Organization slug"
// @Success 200 {object} common.Envelope
// @Failure 403 {object} common.Envelope
// @Security BearerAuth
// @Router /orgs/{orgSlug}/stats [get]
func (h *StatsHandlers) GetOrgStats(c echo.Context) error {
	stats, err := h.statsService.GetOrgStats(c.Request().Context(), c.Param("orgSlug"))
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendData(c, http.StatusOK, stats)
}
