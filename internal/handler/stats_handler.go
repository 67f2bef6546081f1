package handler

import (
	"github.com/gin-gonic/gin"

	"pocketpilot/internal/service"
)

// StatsHandler handles stats endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Summary handles GET /api/v1/stats/summary
func (h *StatsHandler) Summary(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}

	summary, err := h.statsService.Summary(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, summary)
}
