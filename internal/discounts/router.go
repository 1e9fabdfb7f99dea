package discounts

import (
	"cinetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupDiscountRoutes(rg *gin.RouterGroup, controller *Controller) {
	adminDiscounts := rg.Group("/admin/discounts")
	adminDiscounts.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminDiscounts.POST("", controller.CreateDiscount)       // POST /api/v1/admin/discounts
		adminDiscounts.GET("", controller.ListDiscounts)         // GET /api/v1/admin/discounts
		adminDiscounts.PUT("/:id", controller.UpdateDiscount)    // PUT /api/v1/admin/discounts/:id
		adminDiscounts.DELETE("/:id", controller.DeleteDiscount) // DELETE /api/v1/admin/discounts/:id
	}
}
