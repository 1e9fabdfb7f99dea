package reservations

import (
	"cinetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReservationRoutes registers seat map browsing and reservation
// endpoints. Extra middleware (rate limiting) applies to the mutating
// reservation routes only.
func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller, extra ...gin.HandlerFunc) {
	// Public seat map
	rg.GET("/events/:id/seats", controller.GetSeatMap)

	reservations := rg.Group("/reservations")
	reservations.Use(middleware.JWTAuth())
	reservations.Use(extra...)
	{
		reservations.POST("", controller.Reserve)           // POST /api/v1/reservations
		reservations.GET("", controller.ListMyReservations) // GET /api/v1/reservations
		reservations.GET("/:id", controller.GetReservation) // GET /api/v1/reservations/:id
		reservations.DELETE("/:id", controller.Release)     // DELETE /api/v1/reservations/:id
	}
}
