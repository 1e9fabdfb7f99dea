package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetix/internal/shared/apperrors"
)

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*Subscription // keyed by endpoint
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*Subscription)}
}

func (f *fakeSubscriptionRepo) Upsert(_ context.Context, subscription *Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[subscription.Endpoint] = subscription
	return nil
}

func (f *fakeSubscriptionRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Subscription
	for _, sub := range f.subs {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) GetByEndpoint(_ context.Context, endpoint string) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[endpoint]; ok {
		return sub, nil
	}
	return nil, ErrSubscriptionNotFound
}

func (f *fakeSubscriptionRepo) DeleteByEndpoint(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, endpoint)
	return nil
}

func (f *fakeSubscriptionRepo) DeleteByUser(_ context.Context, userID uuid.UUID, endpoint string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[endpoint]
	if !ok || sub.UserID != userID {
		return 0, nil
	}
	delete(f.subs, endpoint)
	return 1, nil
}

type capturingProducer struct {
	mu        sync.Mutex
	published []*PushNotification
	done      chan struct{}
}

func newCapturingProducer() *capturingProducer {
	return &capturingProducer{done: make(chan struct{}, 8)}
}

func (p *capturingProducer) PublishNotification(_ context.Context, notification *PushNotification) error {
	p.mu.Lock()
	p.published = append(p.published, notification)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func (p *capturingProducer) Close() error { return nil }

type capturingSender struct {
	mu   sync.Mutex
	sent []*PushNotification
	done chan struct{}
}

func newCapturingSender() *capturingSender {
	return &capturingSender{done: make(chan struct{}, 8)}
}

func (s *capturingSender) SendNotification(_ context.Context, notification *PushNotification) error {
	s.mu.Lock()
	s.sent = append(s.sent, notification)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async dispatch")
	}
}

func TestSubscribeAndList(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewService(repo, nil, nil)

	userID := uuid.New()
	resp, err := svc.Subscribe(context.Background(), userID.String(), &SubscribeRequest{
		Endpoint: "https://push.example.com/send/abc",
		P256dh:   "p256dh-key",
		Auth:     "auth-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://push.example.com/send/abc", resp.Endpoint)

	list, err := svc.ListSubscriptions(context.Background(), userID.String())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://push.example.com/send/abc", list[0].Endpoint)
}

func TestSubscribeInvalidUserID(t *testing.T) {
	svc := NewService(newFakeSubscriptionRepo(), nil, nil)

	_, err := svc.Subscribe(context.Background(), "not-a-uuid", &SubscribeRequest{
		Endpoint: "https://push.example.com/send/abc",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalid, apperrors.KindOf(err))
}

func TestUnsubscribe(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewService(repo, nil, nil)

	userID := uuid.New()
	endpoint := "https://push.example.com/send/xyz"
	_, err := svc.Subscribe(context.Background(), userID.String(), &SubscribeRequest{Endpoint: endpoint})
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(context.Background(), userID.String(), endpoint))

	// Second removal finds nothing.
	err = svc.Unsubscribe(context.Background(), userID.String(), endpoint)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestUnsubscribeOtherUsersEndpoint(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewService(repo, nil, nil)

	owner := uuid.New()
	endpoint := "https://push.example.com/send/owned"
	_, err := svc.Subscribe(context.Background(), owner.String(), &SubscribeRequest{Endpoint: endpoint})
	require.NoError(t, err)

	err = svc.Unsubscribe(context.Background(), uuid.New().String(), endpoint)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestNotifyOrderPaidPublishesToProducer(t *testing.T) {
	producer := newCapturingProducer()
	svc := NewService(newFakeSubscriptionRepo(), producer, nil)

	userID := uuid.New()
	svc.NotifyOrderPaid(context.Background(), userID, "order-123", 42.50)
	waitSignal(t, producer.done)

	producer.mu.Lock()
	defer producer.mu.Unlock()
	require.Len(t, producer.published, 1)
	notification := producer.published[0]
	assert.Equal(t, userID, notification.UserID)
	require.NotNil(t, notification.OrderID)
	assert.Equal(t, "order-123", *notification.OrderID)
	assert.Contains(t, notification.Body, "42.50")
	require.NotNil(t, notification.ExpiresAt)
	assert.True(t, notification.ExpiresAt.After(time.Now()))
}

func TestNotifyOrderPaidFallsBackToDirectDelivery(t *testing.T) {
	sender := newCapturingSender()
	svc := NewService(newFakeSubscriptionRepo(), nil, sender)

	svc.NotifyOrderPaid(context.Background(), uuid.New(), "order-456", 10)
	waitSignal(t, sender.done)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Payment received", sender.sent[0].Title)
}
