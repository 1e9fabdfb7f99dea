package orders

import (
	"cinetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupOrderRoutes(rg *gin.RouterGroup, controller *Controller) {
	cart := rg.Group("/cart")
	cart.Use(middleware.JWTAuth())
	{
		cart.GET("", controller.GetCart)                     // GET /api/v1/cart
		cart.POST("/items", controller.AddItem)              // POST /api/v1/cart/items
		cart.DELETE("/items/:id", controller.RemoveItem)     // DELETE /api/v1/cart/items/:id
		cart.POST("/discount", controller.ApplyDiscount)     // POST /api/v1/cart/discount
		cart.DELETE("/discount", controller.RemoveDiscount)  // DELETE /api/v1/cart/discount
	}

	ordersGroup := rg.Group("/orders")
	ordersGroup.Use(middleware.JWTAuth())
	{
		ordersGroup.GET("", controller.ListMyOrders)   // GET /api/v1/orders
		ordersGroup.GET("/:id", controller.GetOrder)   // GET /api/v1/orders/:id
	}
}
