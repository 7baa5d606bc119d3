package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"roleradar/internal/repository"
	"roleradar/internal/resolver"
)

type ResultHandler struct {
	Repo     repository.Repository
	Resolver *resolver.Engine

	// BatchLimit caps how many records one POST /process pass drains.
	BatchLimit int
}

func (h *ResultHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/results", h.list)
	r.POST("/api/v1/process", h.process)
}

// @Summary List raw search results
// @Tags results
// @Param processed query bool false "filter by processed flag"
// @Param quarantined query bool false "filter by quarantined flag"
// @Param query query string false "filter by originating query"
// @Success 200 {object} apiResponse
// @Router /api/v1/results [get]
func (h *ResultHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	params := repository.ListSearchResultsParams{
		Limit:   limit,
		Offset:  offset,
		OrderBy: "retrieved_at",
		Asc:     boolPtr(false),
	}
	if val := c.Query("processed"); val != "" {
		processed, err := strconv.ParseBool(val)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid processed flag", nil)
			return
		}
		params.Processed = &processed
	}
	if val := c.Query("quarantined"); val != "" {
		quarantined, err := strconv.ParseBool(val)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid quarantined flag", nil)
			return
		}
		params.Quarantined = &quarantined
	}
	if val := strings.TrimSpace(c.Query("query")); val != "" {
		params.Query = &val
	}

	items, err := h.Repo.ListSearchResults(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountSearchResults(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Drain the unprocessed queue now
// @Tags results
// @Param limit query int false "max records to process"
// @Success 200 {object} apiResponse
// @Router /api/v1/process [post]
func (h *ResultHandler) process(c *gin.Context) {
	limit := intQuery(c, "limit", h.BatchLimit)
	if limit <= 0 {
		limit = 100
	}
	res, err := h.Resolver.ProcessUnprocessed(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, res, nil)
}
