package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"roleradar/internal/graph"
)

type HealthHandler struct {
	DB    *gorm.DB
	Graph *graph.Store
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

// @Summary Health check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Readiness check, reports the relational and graph stores
// @Tags health
// @Success 200 {object} map[string]string
// @Router /readyz [get]
func (h *HealthHandler) ready(c *gin.Context) {
	stores := gin.H{"relational": "ok", "graph": "ok"}
	ready := true

	switch {
	case h.DB == nil:
		stores["relational"] = "missing"
		ready = false
	default:
		sqlDB, err := h.DB.DB()
		if err != nil {
			stores["relational"] = "error"
			ready = false
		} else if err := sqlDB.Ping(); err != nil {
			stores["relational"] = "unreachable"
			ready = false
		}
	}

	if h.Graph == nil {
		stores["graph"] = "missing"
		ready = false
	} else {
		stores["graph"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "stores": stores})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "stores": stores})
}
