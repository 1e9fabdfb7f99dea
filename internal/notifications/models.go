package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Subscription is a browser push endpoint registered by a user.
type Subscription struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Endpoint string    `json:"endpoint" gorm:"uniqueIndex;not null;size:500"`
	P256dh   string    `json:"p256dh" gorm:"size:255"`
	Auth     string    `json:"auth" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "push_subscriptions"
}

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusSending NotificationStatus = "SENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// PushNotification is the message flowing through the Kafka pipeline.
type PushNotification struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	OrderID *string   `json:"order_id,omitempty"`

	Title string `json:"title"`
	Body  string `json:"body"`

	Status    NotificationStatus `json:"status"`
	LastError *string            `json:"last_error,omitempty"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPushNotification(userID uuid.UUID, title, body string) *PushNotification {
	now := time.Now()
	return &PushNotification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		Status:    NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (n *PushNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// GetPartitionKey routes all of a user's notifications to one partition so
// they arrive in order.
func (n *PushNotification) GetPartitionKey() string {
	return n.UserID.String()
}

func (n *PushNotification) IsExpired() bool {
	return n.ExpiresAt != nil && time.Now().After(*n.ExpiresAt)
}

func (n *PushNotification) MarkSent() {
	n.Status = NotificationStatusSent
	n.UpdatedAt = time.Now()
}

func (n *PushNotification) MarkFailed(err error) {
	n.Status = NotificationStatusFailed
	msg := err.Error()
	n.LastError = &msg
	n.UpdatedAt = time.Now()
}

type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url,max=500"`
	P256dh   string `json:"p256dh" binding:"omitempty,max=255"`
	Auth     string `json:"auth" binding:"omitempty,max=255"`
}

type SubscriptionResponse struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Subscription) ToResponse() SubscriptionResponse {
	return SubscriptionResponse{
		ID:        s.ID.String(),
		Endpoint:  s.Endpoint,
		CreatedAt: s.CreatedAt,
	}
}
