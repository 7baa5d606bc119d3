package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"roleradar/internal/repository"
)

type OpportunityHandler struct {
	Repo repository.Repository
}

func (h *OpportunityHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/opportunities")
	group.GET("", h.list)
}

// @Summary List opportunities
// @Tags opportunities
// @Param company_id query int false "filter by company"
// @Param role_type query string false "filter by role type"
// @Param active query bool false "filter by active flag"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities [get]
func (h *OpportunityHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	params := repository.ListOpportunitiesParams{
		Limit:   limit,
		Offset:  offset,
		OrderBy: "discovered_date",
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
	if val := strings.TrimSpace(c.Query("role_type")); val != "" {
		params.RoleType = &val
	}
	if val := c.Query("active"); val != "" {
		active, err := strconv.ParseBool(val)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid active flag", nil)
			return
		}
		params.Active = &active
	}

	items, err := h.Repo.ListOpportunities(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(len(items))))
}
