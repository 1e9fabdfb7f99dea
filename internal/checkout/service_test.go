package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cinetix/internal/orders"
	"cinetix/internal/shared/apperrors"
	"cinetix/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{payments: make(map[uuid.UUID]*Payment)}
}

func (f *fakeRepo) Create(_ context.Context, payment *Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *payment
	f.payments[payment.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByExternalID(_ context.Context, externalID string) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ExternalID == externalID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.OrderID == orderID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[id]; ok {
		p.Status = status
	}
	return nil
}

type fakeProvider struct {
	mu       sync.Mutex
	sessions map[string]*ProviderPayment
	nextID   int
	down     bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: make(map[string]*ProviderPayment)}
}

func (f *fakeProvider) CreateSession(_ context.Context, req CreateSessionRequest) (*ProviderSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, apperrors.Upstream("payment provider unreachable", errors.New("connection refused"))
	}
	f.nextID++
	id := uuid.New().String()
	f.sessions[id] = &ProviderPayment{
		ID:        id,
		Status:    providerStatusOpen,
		Reference: req.Reference,
		Amount:    req.Amount,
		Currency:  req.Currency,
	}
	return &ProviderSession{PaymentID: id, RedirectURL: "https://pay.example.com/session/" + id}, nil
}

func (f *fakeProvider) GetPayment(_ context.Context, externalID string) (*ProviderPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, apperrors.Upstream("payment provider unreachable", errors.New("connection refused"))
	}
	if p, ok := f.sessions[externalID]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, ErrPaymentNotFound
}

func (f *fakeProvider) approve(externalID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[externalID].Status = providerStatusApproved
}

type fakeOrderService struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*orders.Order
}

func (f *fakeOrderService) GetForCheckout(_ context.Context, userID, orderID uuid.UUID) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, orders.ErrNotOwner
	}
	if order.Status != orders.StatusPending {
		return nil, orders.ErrOrderNotOpen
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrderService) MarkPaid(_ context.Context, orderID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return false, orders.ErrOrderNotFound
	}
	if order.Status == orders.StatusPaid {
		return false, nil
	}
	if order.Status != orders.StatusPending {
		return false, orders.ErrOrderNotOpen
	}
	order.Status = orders.StatusPaid
	return true, nil
}

type fakeConfirmer struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (f *fakeConfirmer) ConfirmForOrder(_ context.Context, orderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, orderID)
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	count int
}

func (f *fakeNotifier) NotifyOrderPaid(_ context.Context, _ uuid.UUID, _ string, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
}

type fixture struct {
	repo      *fakeRepo
	provider  *fakeProvider
	orderSvc  *fakeOrderService
	confirmer *fakeConfirmer
	notifier  *fakeNotifier
	svc       Service
	userID    uuid.UUID
	order     *orders.Order
}

func newFixture() *fixture {
	userID := uuid.New()
	order := &orders.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: orders.StatusPending,
		Total:  2700,
		Items:  []orders.OrderItem{{ID: uuid.New(), Kind: orders.ItemSeat}},
	}

	repo := newFakeRepo()
	provider := newFakeProvider()
	orderSvc := &fakeOrderService{orders: map[uuid.UUID]*orders.Order{order.ID: order}}
	confirmer := &fakeConfirmer{}
	notifier := &fakeNotifier{}

	cfg := config.PaymentConfig{Currency: "EUR", RedirectURL: "https://cinetix.example.com/checkout/return"}
	svc := NewService(repo, provider, orderSvc, confirmer, notifier, cfg)

	return &fixture{
		repo:      repo,
		provider:  provider,
		orderSvc:  orderSvc,
		confirmer: confirmer,
		notifier:  notifier,
		svc:       svc,
		userID:    userID,
		order:     order,
	}
}

func TestInitiateCreatesSession(t *testing.T) {
	fx := newFixture()

	resp, err := fx.svc.Initiate(context.Background(), fx.userID.String(), InitiateRequest{OrderID: fx.order.ID.String()})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RedirectURL)
	assert.Equal(t, 2700.0, resp.Amount)
	assert.Equal(t, "EUR", resp.Currency)

	stored, err := fx.repo.GetByExternalID(context.Background(), resp.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, fx.order.ID, stored.OrderID)
	assert.Equal(t, PaymentCreated, stored.Status)
	assert.Equal(t, fx.order.ID.String(), stored.ExternalRef)
}

func TestInitiateRejectsForeignOrder(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.Initiate(context.Background(), uuid.New().String(), InitiateRequest{OrderID: fx.order.ID.String()})
	assert.ErrorIs(t, err, orders.ErrNotOwner)
}

func TestInitiateSurfacesProviderOutage(t *testing.T) {
	fx := newFixture()
	fx.provider.down = true

	_, err := fx.svc.Initiate(context.Background(), fx.userID.String(), InitiateRequest{OrderID: fx.order.ID.String()})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstream, apperrors.KindOf(err))
}

func TestReconcileApprovedPayment(t *testing.T) {
	fx := newFixture()

	resp, err := fx.svc.Initiate(context.Background(), fx.userID.String(), InitiateRequest{OrderID: fx.order.ID.String()})
	require.NoError(t, err)
	fx.provider.approve(resp.ExternalID)

	result, err := fx.svc.Reconcile(context.Background(), resp.ExternalID)
	require.NoError(t, err)

	assert.True(t, result.OrderPaid)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, PaymentApproved, result.PaymentStatus)
	assert.Equal(t, orders.StatusPaid, fx.orderSvc.orders[fx.order.ID].Status)
	assert.Equal(t, []uuid.UUID{fx.order.ID}, fx.confirmer.calls)
	assert.Equal(t, 1, fx.notifier.count)
}

func TestReconcileIsIdempotent(t *testing.T) {
	fx := newFixture()

	resp, err := fx.svc.Initiate(context.Background(), fx.userID.String(), InitiateRequest{OrderID: fx.order.ID.String()})
	require.NoError(t, err)
	fx.provider.approve(resp.ExternalID)

	_, err = fx.svc.Reconcile(context.Background(), resp.ExternalID)
	require.NoError(t, err)

	result, err := fx.svc.Reconcile(context.Background(), resp.ExternalID)
	require.NoError(t, err)

	assert.True(t, result.OrderPaid)
	assert.True(t, result.AlreadyProcessed)
	assert.Len(t, fx.confirmer.calls, 1, "reservations must be confirmed exactly once")
	assert.Equal(t, 1, fx.notifier.count, "buyer must be notified exactly once")
}

func TestReconcilePendingPaymentDoesNotTransition(t *testing.T) {
	fx := newFixture()

	resp, err := fx.svc.Initiate(context.Background(), fx.userID.String(), InitiateRequest{OrderID: fx.order.ID.String()})
	require.NoError(t, err)

	result, err := fx.svc.Reconcile(context.Background(), resp.ExternalID)
	require.NoError(t, err)

	assert.False(t, result.OrderPaid)
	assert.Equal(t, PaymentCreated, result.PaymentStatus)
	assert.Equal(t, orders.StatusPending, fx.orderSvc.orders[fx.order.ID].Status)
	assert.Empty(t, fx.confirmer.calls)
}

func TestReconcileUnknownPayment(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.Reconcile(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestReconcileUnresolvableReference(t *testing.T) {
	fx := newFixture()

	// Provider knows the payment but its reference maps to nothing.
	externalID := uuid.New().String()
	fx.provider.sessions[externalID] = &ProviderPayment{
		ID:        externalID,
		Status:    providerStatusApproved,
		Reference: "not-an-order",
	}

	_, err := fx.svc.Reconcile(context.Background(), externalID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
