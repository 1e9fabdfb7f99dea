package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscribeEndpoint(t *testing.T, repo Repository, userID uuid.UUID, endpoint string) {
	t.Helper()
	err := repo.Upsert(context.Background(), &Subscription{
		ID:       uuid.New(),
		UserID:   userID,
		Endpoint: endpoint,
	})
	require.NoError(t, err)
}

func TestSendNotificationDelivers(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	repo := newFakeSubscriptionRepo()
	userID := uuid.New()
	subscribeEndpoint(t, repo, userID, server.URL)

	sender := NewHTTPPushSender(repo, nil)
	notification := NewPushNotification(userID, "Payment received", "Your order is confirmed.")

	require.NoError(t, sender.SendNotification(context.Background(), notification))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestSendNotificationNoSubscriptionsIsNoop(t *testing.T) {
	sender := NewHTTPPushSender(newFakeSubscriptionRepo(), nil)
	notification := NewPushNotification(uuid.New(), "Payment received", "Your order is confirmed.")

	assert.NoError(t, sender.SendNotification(context.Background(), notification))
}

func TestSendNotificationPrunesDeadEndpoint(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer dead.Close()
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer live.Close()

	repo := newFakeSubscriptionRepo()
	userID := uuid.New()
	subscribeEndpoint(t, repo, userID, dead.URL)
	subscribeEndpoint(t, repo, userID, live.URL)

	sender := NewHTTPPushSender(repo, nil)
	notification := NewPushNotification(userID, "Payment received", "Your order is confirmed.")

	// One live endpoint is enough for overall success.
	require.NoError(t, sender.SendNotification(context.Background(), notification))

	remaining, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, live.URL, remaining[0].Endpoint)
}

func TestSendNotificationAllEndpointsFailing(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	repo := newFakeSubscriptionRepo()
	userID := uuid.New()
	subscribeEndpoint(t, repo, userID, broken.URL)

	sender := NewHTTPPushSender(repo, nil)
	notification := NewPushNotification(userID, "Payment received", "Your order is confirmed.")

	err := sender.SendNotification(context.Background(), notification)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push delivery failed")
}
