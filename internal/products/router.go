package products

import (
	"cinetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupProductRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public catalog
	products := rg.Group("/products")
	{
		products.GET("", controller.ListProducts)   // GET /api/v1/products
		products.GET("/:id", controller.GetProduct) // GET /api/v1/products/:id
	}

	// Admin product management
	adminProducts := rg.Group("/admin/products")
	adminProducts.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminProducts.POST("", controller.CreateProduct)       // POST /api/v1/admin/products
		adminProducts.GET("", controller.ListAllProducts)      // GET /api/v1/admin/products
		adminProducts.PUT("/:id", controller.UpdateProduct)    // PUT /api/v1/admin/products/:id
		adminProducts.DELETE("/:id", controller.DeleteProduct) // DELETE /api/v1/admin/products/:id
	}
}
