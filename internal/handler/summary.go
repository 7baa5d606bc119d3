package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roleradar/internal/report"
)

type SummaryHandler struct {
	Report *report.Service
}

func (h *SummaryHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/summary", h.summary)
}

// @Summary Dashboard summary
// @Tags summary
// @Success 200 {object} apiResponse
// @Router /api/v1/summary [get]
func (h *SummaryHandler) summary(c *gin.Context) {
	item, err := h.Report.DashboardSummary(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}
