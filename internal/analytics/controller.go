package analytics

import (
	"net/http"
	"strconv"

	"cinetix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetDashboard handles GET /api/v1/admin/analytics/dashboard
func (c *Controller) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.service.GetDashboard(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Dashboard retrieved", dashboard, nil)
}

// GetSalesOverview handles GET /api/v1/admin/analytics/overview
func (c *Controller) GetSalesOverview(ctx *gin.Context) {
	overview, err := c.service.GetSalesOverview(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sales overview retrieved", overview, nil)
}

// GetTopEvents handles GET /api/v1/admin/analytics/events?limit=N
func (c *Controller) GetTopEvents(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "5"))

	events, err := c.service.GetTopEvents(ctx.Request.Context(), limit)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event sales retrieved", events, nil)
}

// GetDailySales handles GET /api/v1/admin/analytics/daily?days=N
func (c *Controller) GetDailySales(ctx *gin.Context) {
	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "14"))

	daily, err := c.service.GetDailySales(ctx.Request.Context(), days)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Daily sales retrieved", daily, nil)
}
