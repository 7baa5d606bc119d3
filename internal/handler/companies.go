package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roleradar/internal/graph"
	"roleradar/internal/report"
	"roleradar/internal/repository"
)

type CompanyHandler struct {
	Repo   repository.Repository
	Report *report.Service
	Graph  *graph.Store
}

func (h *CompanyHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/companies")
	group.GET("", h.listTop)
	group.GET("/:id", h.get)
	group.GET("/:id/connections", h.connections)
}

// @Summary Top companies by score
// @Tags companies
// @Param limit query int false "max rows" default(20)
// @Success 200 {object} apiResponse
// @Router /api/v1/companies [get]
func (h *CompanyHandler) listTop(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	items, err := h.Report.TopCompanies(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func (h *CompanyHandler) get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid company id", nil)
		return
	}
	item, err := h.Repo.GetCompanyByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "company not found", nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary Graph neighborhood of a company
// @Tags companies
// @Param id path int true "company id"
// @Success 200 {object} apiResponse
// @Router /api/v1/companies/{id}/connections [get]
func (h *CompanyHandler) connections(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid company id", nil)
		return
	}
	item, err := h.Repo.GetCompanyByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "company not found", nil)
		return
	}
	conns := h.Graph.ConnectionsOf(id)
	Ok(c, gin.H{
		"company":       item,
		"opportunities": conns.Opportunities,
		"signals":       conns.Signals,
	}, nil)
}
