package analytics

import (
	"cinetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller *Controller) {
	adminAnalytics := rg.Group("/admin/analytics")
	adminAnalytics.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminAnalytics.GET("/dashboard", controller.GetDashboard) // GET /api/v1/admin/analytics/dashboard
		adminAnalytics.GET("/overview", controller.GetSalesOverview)
		adminAnalytics.GET("/events", controller.GetTopEvents)
		adminAnalytics.GET("/daily", controller.GetDailySales)
	}
}
