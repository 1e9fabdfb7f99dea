package events

import (
	"cinetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public browsing
	events := rg.Group("/events")
	{
		events.GET("", controller.ListEvents)    // GET /api/v1/events
		events.GET("/:id", controller.GetEvent)  // GET /api/v1/events/:id
	}

	// Admin event management
	adminEvents := rg.Group("/admin/events")
	adminEvents.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminEvents.POST("", controller.CreateEvent)         // POST /api/v1/admin/events
		adminEvents.GET("", controller.ListAllEvents)        // GET /api/v1/admin/events
		adminEvents.PUT("/:id", controller.UpdateEvent)      // PUT /api/v1/admin/events/:id
		adminEvents.DELETE("/:id", controller.DeleteEvent)   // DELETE /api/v1/admin/events/:id
		adminEvents.POST("/:id/seats", controller.AddSeats)  // POST /api/v1/admin/events/:id/seats
	}

	adminSeats := rg.Group("/admin/seats")
	adminSeats.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminSeats.DELETE("/:id", controller.DeleteSeat) // DELETE /api/v1/admin/seats/:id
	}
}
