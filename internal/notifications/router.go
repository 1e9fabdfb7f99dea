package notifications

import (
	"cinetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupNotificationRoutes registers push subscription endpoints.
func SetupNotificationRoutes(rg *gin.RouterGroup, controller *Controller, extra ...gin.HandlerFunc) {
	notificationGroup := rg.Group("/notifications")
	notificationGroup.Use(middleware.JWTAuth())
	notificationGroup.Use(extra...)
	{
		notificationGroup.GET("/subscriptions", controller.ListSubscriptions)  // GET /api/v1/notifications/subscriptions
		notificationGroup.POST("/subscriptions", controller.Subscribe)         // POST /api/v1/notifications/subscriptions
		notificationGroup.DELETE("/subscriptions", controller.Unsubscribe)     // DELETE /api/v1/notifications/subscriptions
	}
}
