package memberships

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

// CreateTier handles POST /api/v1/memberships/tiers (admin)
func (c *Controller) CreateTier(ctx *gin.Context) {
	var req CreateTierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	tier, err := c.service.CreateTier(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Membership tier created", tier, nil)
}

// ListTiers handles GET /api/v1/memberships/tiers
func (c *Controller) ListTiers(ctx *gin.Context) {
	tiers, err := c.service.ListTiers(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Membership tiers retrieved", tiers, nil)
}

// GetTier handles GET /api/v1/memberships/tiers/:id
func (c *Controller) GetTier(ctx *gin.Context) {
	tier, err := c.service.GetTier(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Membership tier retrieved", tier, nil)
}

// UpdateTier handles PUT /api/v1/memberships/tiers/:id (admin)
func (c *Controller) UpdateTier(ctx *gin.Context) {
	var req UpdateTierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	tier, err := c.service.UpdateTier(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Membership tier updated", tier, nil)
}

// AssignUserTier handles PUT /api/v1/admin/memberships/users/:id (admin)
func (c *Controller) AssignUserTier(ctx *gin.Context) {
	var req AssignTierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.service.AssignUserTier(ctx.Request.Context(), ctx.Param("id"), req); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Membership assigned", nil, nil)
}

// DeleteTier handles DELETE /api/v1/memberships/tiers/:id (admin)
func (c *Controller) DeleteTier(ctx *gin.Context) {
	if err := c.service.DeleteTier(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Membership tier deleted", nil, nil)
}
