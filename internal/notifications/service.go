package notifications

import (
	"context"
	"fmt"
	"time"

	"cinetix/internal/shared/apperrors"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
)

var ErrSubscriptionNotFound = apperrors.New(apperrors.KindNotFound, "subscription not found")

type Service interface {
	Subscribe(ctx context.Context, userID string, req *SubscribeRequest) (*SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, userID string, endpoint string) error
	ListSubscriptions(ctx context.Context, userID string) ([]SubscriptionResponse, error)

	NotifyOrderPaid(ctx context.Context, userID uuid.UUID, orderID string, total float64)
}

type service struct {
	repo     Repository
	producer Producer
	sender   PushSender
}

// NewService builds the notification service. When producer is nil (Kafka
// disabled) notifications are delivered directly through sender; when that is
// also nil they are dropped.
func NewService(repo Repository, producer Producer, sender PushSender) Service {
	return &service{
		repo:     repo,
		producer: producer,
		sender:   sender,
	}
}

func (s *service) Subscribe(ctx context.Context, userID string, req *SubscribeRequest) (*SubscriptionResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalid, "invalid user id")
	}

	subscription := &Subscription{
		ID:       uuid.New(),
		UserID:   uid,
		Endpoint: req.Endpoint,
		P256dh:   req.P256dh,
		Auth:     req.Auth,
	}

	if err := s.repo.Upsert(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to register subscription: %w", err)
	}

	resp := subscription.ToResponse()
	return &resp, nil
}

func (s *service) Unsubscribe(ctx context.Context, userID string, endpoint string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return apperrors.New(apperrors.KindInvalid, "invalid user id")
	}

	affected, err := s.repo.DeleteByUser(ctx, uid, endpoint)
	if err != nil {
		return fmt.Errorf("failed to remove subscription: %w", err)
	}
	if affected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (s *service) ListSubscriptions(ctx context.Context, userID string) ([]SubscriptionResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalid, "invalid user id")
	}

	subscriptions, err := s.repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	responses := make([]SubscriptionResponse, 0, len(subscriptions))
	for _, sub := range subscriptions {
		responses = append(responses, sub.ToResponse())
	}
	return responses, nil
}

// NotifyOrderPaid queues a push notification for a settled order. Delivery is
// fire-and-forget: failures are logged and never surface to the checkout flow.
func (s *service) NotifyOrderPaid(ctx context.Context, userID uuid.UUID, orderID string, total float64) {
	notification := NewPushNotification(userID,
		"Payment received",
		fmt.Sprintf("Your order is confirmed. Total charged: %.2f", total),
	)
	notification.OrderID = &orderID
	expiry := time.Now().Add(24 * time.Hour)
	notification.ExpiresAt = &expiry

	go s.dispatch(notification)
}

func (s *service) dispatch(notification *PushNotification) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.producer != nil {
		if err := s.producer.PublishNotification(ctx, notification); err != nil {
			logger.GetDefault().LogNotificationFailed(ctx, notification.UserID.String(), err)
		}
		return
	}

	if s.sender != nil {
		if err := s.sender.SendNotification(ctx, notification); err != nil {
			logger.GetDefault().LogNotificationFailed(ctx, notification.UserID.String(), err)
		}
		return
	}

	logger.GetDefault().LogNotificationDropped(ctx, notification.UserID.String())
}
