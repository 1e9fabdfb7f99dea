package products

import (
	"net/http"

	"cinetix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateProduct handles POST /api/v1/admin/products
func (c *Controller) CreateProduct(ctx *gin.Context) {
	var req CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	product, err := c.service.CreateProduct(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Product created", product, nil)
}

// ListProducts handles GET /api/v1/products
func (c *Controller) ListProducts(ctx *gin.Context) {
	products, err := c.service.ListProducts(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Products retrieved", products, nil)
}

// ListAllProducts handles GET /api/v1/admin/products (includes inactive)
func (c *Controller) ListAllProducts(ctx *gin.Context) {
	products, err := c.service.ListAllProducts(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Products retrieved", products, nil)
}

// GetProduct handles GET /api/v1/products/:id
func (c *Controller) GetProduct(ctx *gin.Context) {
	product, err := c.service.GetProduct(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Product retrieved", product, nil)
}

// UpdateProduct handles PUT /api/v1/admin/products/:id
func (c *Controller) UpdateProduct(ctx *gin.Context) {
	var req UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	product, err := c.service.UpdateProduct(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Product updated", product, nil)
}

// DeleteProduct handles DELETE /api/v1/admin/products/:id
func (c *Controller) DeleteProduct(ctx *gin.Context) {
	if err := c.service.DeleteProduct(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Product deleted", nil, nil)
}
