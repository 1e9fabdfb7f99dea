package checkout

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

// Initiate handles POST /api/v1/checkout
func (c *Controller) Initiate(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req InitiateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.Initiate(ctx.Request.Context(), userID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Checkout session created", result, nil)
}

// Return handles GET /api/v1/checkout/return?payment_id=...
// The provider redirects the buyer here after the hosted checkout.
func (c *Controller) Return(ctx *gin.Context) {
	paymentID := ctx.Query("payment_id")
	if paymentID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "payment_id query parameter is required", nil, nil)
		return
	}

	result, err := c.service.Reconcile(ctx.Request.Context(), paymentID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment reconciled", result, nil)
}

// Webhook handles POST /api/v1/checkout/webhook from the payment provider.
func (c *Controller) Webhook(ctx *gin.Context) {
	var payload WebhookPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid webhook payload", nil, err.Error())
		return
	}

	result, err := c.service.Reconcile(ctx.Request.Context(), payload.PaymentID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Webhook processed", result, nil)
}
