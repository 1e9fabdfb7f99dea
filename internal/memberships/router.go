package memberships

import (
	"cinetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupMembershipRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public routes
	tiers := rg.Group("/memberships/tiers")
	{
		tiers.GET("", controller.ListTiers)    // GET /api/v1/memberships/tiers
		tiers.GET("/:id", controller.GetTier)  // GET /api/v1/memberships/tiers/:id
	}

	// Admin routes
	adminTiers := rg.Group("/admin/memberships/tiers")
	adminTiers.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminTiers.POST("", controller.CreateTier)       // POST /api/v1/admin/memberships/tiers
		adminTiers.PUT("/:id", controller.UpdateTier)    // PUT /api/v1/admin/memberships/tiers/:id
		adminTiers.DELETE("/:id", controller.DeleteTier) // DELETE /api/v1/admin/memberships/tiers/:id
	}

	adminUsers := rg.Group("/admin/memberships/users")
	adminUsers.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminUsers.PUT("/:id", controller.AssignUserTier) // PUT /api/v1/admin/memberships/users/:id
	}
}
