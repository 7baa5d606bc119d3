package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"roleradar/internal/repository"
)

type SignalHandler struct {
	Repo repository.Repository
}

func (h *SignalHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/signals")
	group.GET("", h.list)
}

// @Summary List hiring signals
// @Tags signals
// @Param company_id query int false "filter by company"
// @Param type query string false "filter by signal type"
// @Param since query string false "RFC3339 lower bound on detected_date"
// @Success 200 {object} apiResponse
// @Router /api/v1/signals [get]
func (h *SignalHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	params := repository.ListSignalsParams{
		Limit:   limit,
		Offset:  offset,
		OrderBy: "detected_date",
		Asc:     boolPtr(false),
	}
	if val := c.Query("company_id"); val != "" {
		id, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid company_id", nil)
			return
		}
		params.CompanyID = &id
	}
	if val := strings.TrimSpace(c.Query("type")); val != "" {
		params.Type = &val
	}
	if val := strings.TrimSpace(c.Query("since")); val != "" {
		parsed, err := time.Parse(time.RFC3339, val)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid since timestamp", nil)
			return
		}
		parsed = parsed.UTC()
		params.Since = &parsed
	}

	items, err := h.Repo.ListSignals(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(len(items))))
}
