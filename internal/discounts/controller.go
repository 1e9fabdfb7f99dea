package discounts

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

// CreateDiscount handles POST /api/v1/admin/discounts
func (c *Controller) CreateDiscount(ctx *gin.Context) {
	var req CreateDiscountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	discount, err := c.service.CreateDiscount(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Discount created", discount, nil)
}

// ListDiscounts handles GET /api/v1/admin/discounts
func (c *Controller) ListDiscounts(ctx *gin.Context) {
	discounts, err := c.service.ListDiscounts(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Discounts retrieved", discounts, nil)
}

// UpdateDiscount handles PUT /api/v1/admin/discounts/:id
func (c *Controller) UpdateDiscount(ctx *gin.Context) {
	var req UpdateDiscountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	discount, err := c.service.UpdateDiscount(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Discount updated", discount, nil)
}

// DeleteDiscount handles DELETE /api/v1/admin/discounts/:id
func (c *Controller) DeleteDiscount(ctx *gin.Context) {
	if err := c.service.DeleteDiscount(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Discount deleted", nil, nil)
}
