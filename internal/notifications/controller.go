package notifications

import (
	"net/http"

	"cinetix/internal/shared/middleware"
	"cinetix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Subscribe handles POST /api/v1/notifications/subscriptions
func (c *Controller) Subscribe(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req SubscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	subscription, err := c.service.Subscribe(ctx.Request.Context(), userID, &req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Subscription registered", subscription, nil)
}

// Unsubscribe handles DELETE /api/v1/notifications/subscriptions
func (c *Controller) Unsubscribe(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req struct {
		Endpoint string `json:"endpoint" binding:"required,url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.service.Unsubscribe(ctx.Request.Context(), userID, req.Endpoint); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Subscription removed", nil, nil)
}

// ListSubscriptions handles GET /api/v1/notifications/subscriptions
func (c *Controller) ListSubscriptions(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	subscriptions, err := c.service.ListSubscriptions(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Subscriptions retrieved", subscriptions, nil)
}
