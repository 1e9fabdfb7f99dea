package checkout

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus mirrors the provider's view of a payment as last seen by us.
type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "CREATED"
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentDeclined PaymentStatus = "DECLINED"
	PaymentExpired  PaymentStatus = "EXPIRED"
)

// Payment links one order to the provider's transaction.
type Payment struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderID uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	// ExternalID is the provider's payment id; ExternalRef is the order
	// reference we placed on the payment request.
	ExternalID  string `json:"external_id" gorm:"uniqueIndex;not null;size:128"`
	ExternalRef string `json:"external_ref" gorm:"not null;size:64"`

	Status   PaymentStatus `json:"status" gorm:"type:varchar(20);not null;default:'CREATED'"`
	Amount   float64       `json:"amount" gorm:"not null"`
	Currency string        `json:"currency" gorm:"size:3;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

type InitiateRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
}

type InitiateResponse struct {
	PaymentID   string  `json:"payment_id"`
	ExternalID  string  `json:"external_id"`
	RedirectURL string  `json:"redirect_url"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

type ReconcileResult struct {
	OrderID       string        `json:"order_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	OrderPaid     bool          `json:"order_paid"`
	// AlreadyProcessed is true when a prior reconciliation had settled the
	// payment; the call is then a no-op.
	AlreadyProcessed bool `json:"already_processed"`
}

type WebhookPayload struct {
	PaymentID string `json:"payment_id" binding:"required"`
	EventType string `json:"event_type"`
}
