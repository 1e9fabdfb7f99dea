package checkout

import (
	"cinetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCheckoutRoutes registers checkout endpoints. The webhook is called by
// the payment provider and carries no user session; reconciliation resolves
// everything from the provider's payment record.
func SetupCheckoutRoutes(rg *gin.RouterGroup, controller *Controller, extra ...gin.HandlerFunc) {
	checkoutGroup := rg.Group("/checkout")
	{
		checkoutGroup.POST("/webhook", controller.Webhook) // POST /api/v1/checkout/webhook
		checkoutGroup.GET("/return", controller.Return)    // GET /api/v1/checkout/return

		authed := checkoutGroup.Group("")
		authed.Use(middleware.JWTAuth())
		authed.Use(extra...)
		{
			authed.POST("", controller.Initiate) // POST /api/v1/checkout
		}
	}
}
