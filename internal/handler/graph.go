package handler

import (
	"github.com/gin-gonic/gin"

	"roleradar/internal/graph"
)

type GraphHandler struct {
	Graph *graph.Store
}

func (h *GraphHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/graph")
	group.GET("/multi-signal", h.multiSignal)
	group.GET("/stats", h.stats)
}

// @Summary Companies with at least N distinct signals
// @Tags graph
// @Param min query int false "minimum signal count" default(2)
// @Success 200 {object} apiResponse
// @Router /api/v1/graph/multi-signal [get]
func (h *GraphHandler) multiSignal(c *gin.Context) {
	min := intQuery(c, "min", 2)
	if min < 1 {
		min = 1
	}
	Ok(c, h.Graph.CompaniesWithAtLeastNSignals(min), nil)
}

func (h *GraphHandler) stats(c *gin.Context) {
	Ok(c, gin.H{"nodes": h.Graph.NodeCount()}, nil)
}
