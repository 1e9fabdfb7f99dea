package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cinetix/pkg/logger"
)

// PushSender delivers a notification to every endpoint the user subscribed.
type PushSender interface {
	SendNotification(ctx context.Context, notification *PushNotification) error
}

// PushConfig holds HTTP push delivery configuration
type PushConfig struct {
	Timeout   time.Duration
	UserAgent string
}

func DefaultPushConfig() *PushConfig {
	return &PushConfig{
		Timeout:   10 * time.Second,
		UserAgent: "cinetix-push/1.0",
	}
}

type httpPushSender struct {
	repo   Repository
	client *http.Client
	config *PushConfig
}

// NewHTTPPushSender creates a sender that POSTs the notification payload to
// each registered subscription endpoint.
func NewHTTPPushSender(repo Repository, config *PushConfig) PushSender {
	if config == nil {
		config = DefaultPushConfig()
	}
	return &httpPushSender{
		repo:   repo,
		client: &http.Client{Timeout: config.Timeout},
		config: config,
	}
}

type pushPayload struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	OrderID string `json:"order_id,omitempty"`
}

func (s *httpPushSender) SendNotification(ctx context.Context, notification *PushNotification) error {
	subscriptions, err := s.repo.ListByUser(ctx, notification.UserID)
	if err != nil {
		return fmt.Errorf("failed to load subscriptions: %w", err)
	}

	if len(subscriptions) == 0 {
		logger.GetDefault().LogNotificationDropped(ctx, notification.UserID.String())
		return nil
	}

	payload := pushPayload{Title: notification.Title, Body: notification.Body}
	if notification.OrderID != nil {
		payload.OrderID = *notification.OrderID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	var lastErr error
	delivered := 0
	for _, sub := range subscriptions {
		if err := s.deliver(ctx, &sub, body); err != nil {
			logger.GetDefault().Warn("push delivery failed",
				"endpoint", sub.Endpoint, "notification_id", notification.ID.String(), "error", err)
			lastErr = err
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return fmt.Errorf("push delivery failed for all %d endpoints: %w", len(subscriptions), lastErr)
	}

	logger.GetDefault().Info("push notification delivered",
		"notification_id", notification.ID.String(),
		"delivered", delivered,
		"endpoints", len(subscriptions))
	return nil
}

func (s *httpPushSender) deliver(ctx context.Context, sub *Subscription, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 512))

	// 404/410 mean the subscription is dead, drop it so we stop retrying
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		if delErr := s.repo.DeleteByEndpoint(ctx, sub.Endpoint); delErr != nil {
			logger.GetDefault().Warn("failed to remove dead push subscription",
				"endpoint", sub.Endpoint, "error", delErr)
		} else {
			logger.GetDefault().Info("removed dead push subscription", "endpoint", sub.Endpoint)
		}
		return fmt.Errorf("subscription gone: status %d", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
