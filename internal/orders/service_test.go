package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"cinetix/internal/discounts"
	"cinetix/internal/events"
	"cinetix/internal/products"
	"cinetix/internal/reservations"
	"cinetix/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*Order
	items  map[uuid.UUID]*OrderItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[uuid.UUID]*Order),
		items:  make(map[uuid.UUID]*OrderItem),
	}
}

func (f *fakeRepo) Create(_ context.Context, order *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// One pending order per user, like the partial unique index.
	if order.Status == StatusPending {
		for _, existing := range f.orders {
			if existing.UserID == order.UserID && existing.Status == StatusPending {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeRepo) withItems(order *Order) *Order {
	clone := *order
	clone.Items = nil
	for _, item := range f.items {
		if item.OrderID == order.ID {
			clone.Items = append(clone.Items, *item)
		}
	}
	return &clone
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[id]; ok {
		return f.withItems(order), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetPendingByUser(_ context.Context, userID uuid.UUID) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.UserID == userID && order.Status == StatusPending {
			return f.withItems(order), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, *f.withItems(order))
		}
	}
	return out, nil
}

func (f *fakeRepo) AddItem(_ context.Context, item *OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ReservationID != nil {
		for _, existing := range f.items {
			if existing.ReservationID != nil && *existing.ReservationID == *item.ReservationID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeRepo) GetItem(_ context.Context, itemID uuid.UUID) (*OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[itemID]; ok {
		clone := *item
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, itemID)
	return nil
}

func (f *fakeRepo) UpdatePricing(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["subtotal"]; ok {
		order.Subtotal = v.(float64)
	}
	if v, ok := updates["total"]; ok {
		order.Total = v.(float64)
	}
	if v, ok := updates["discount_code"]; ok {
		if v == nil {
			order.DiscountCode = nil
		} else {
			code := v.(string)
			order.DiscountCode = &code
		}
	}
	if v, ok := updates["discount_percent"]; ok {
		order.DiscountPercent = v.(float64)
	}
	return nil
}

func (f *fakeRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, from, to OrderStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	if to == StatusPaid {
		now := time.Now()
		order.PaidAt = &now
	}
	return true, nil
}

func (f *fakeRepo) CancelPending(_ context.Context, ids []uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if order, ok := f.orders[id]; ok && order.Status == StatusPending {
			order.Status = StatusCancelled
			n++
		}
	}
	return n, nil
}

type fakeReservationService struct {
	mu       sync.Mutex
	holds    map[uuid.UUID]*reservations.Reservation
	released []uuid.UUID
}

func newFakeReservationService() *fakeReservationService {
	return &fakeReservationService{holds: make(map[uuid.UUID]*reservations.Reservation)}
}

func (f *fakeReservationService) addHold(userID, seatID uuid.UUID) *reservations.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &reservations.Reservation{
		ID:        uuid.New(),
		SeatID:    seatID,
		UserID:    userID,
		Status:    reservations.StatusHeld,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	f.holds[r.ID] = r
	return r
}

func (f *fakeReservationService) GetActiveHold(_ context.Context, userID, reservationID uuid.UUID) (*reservations.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.holds[reservationID]
	if !ok {
		return nil, apperrors.NotFound("reservation not found")
	}
	if r.UserID != userID {
		return nil, apperrors.Forbidden("reservation belongs to another user")
	}
	clone := *r
	return &clone, nil
}

func (f *fakeReservationService) AttachOrder(_ context.Context, reservationID, orderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.holds[reservationID]; ok {
		r.OrderID = &orderID
	}
	return nil
}

func (f *fakeReservationService) ReleaseForOrder(_ context.Context, reservationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, reservationID)
	if r, ok := f.holds[reservationID]; ok {
		r.OrderID = nil
		r.Status = reservations.StatusReleased
	}
	return nil
}

type fakeCatalog struct {
	event *events.Event
	seats map[uuid.UUID]*events.Seat
}

func (f *fakeCatalog) GetSeat(_ context.Context, id string) (*events.Seat, error) {
	seatID, _ := uuid.Parse(id)
	if s, ok := f.seats[seatID]; ok {
		return s, nil
	}
	return nil, apperrors.NotFound("seat not found")
}

func (f *fakeCatalog) GetEvent(_ context.Context, id string) (*events.Event, error) {
	if f.event.ID.String() == id {
		return f.event, nil
	}
	return nil, apperrors.NotFound("event not found")
}

type fakeProductService struct {
	products map[uuid.UUID]*products.Product
}

func (f *fakeProductService) GetProduct(_ context.Context, id string) (*products.Product, error) {
	productID, _ := uuid.Parse(id)
	if p, ok := f.products[productID]; ok {
		return p, nil
	}
	return nil, apperrors.NotFound("product not found")
}

type fakeDiscountResolver struct {
	discounts map[string]*discounts.Discount
}

func (f *fakeDiscountResolver) Resolve(_ context.Context, code string, _ *uuid.UUID, _ time.Time) (*discounts.Discount, error) {
	if d, ok := f.discounts[discounts.NormalizeCode(code)]; ok {
		return d, nil
	}
	return nil, discounts.ErrNotFound
}

type fixture struct {
	repo     *fakeRepo
	resSvc   *fakeReservationService
	event    *events.Event
	bronze   *events.Seat
	gold     *events.Seat
	popcorn  *products.Product
	svc      Service
	userID   uuid.UUID
}

func newFixture() *fixture {
	event := &events.Event{
		ID:        uuid.New(),
		Name:      "Midnight Premiere",
		BasePrice: 1000,
		Status:    events.StatusPublished,
	}
	bronze := &events.Seat{ID: uuid.New(), EventID: event.ID, SeatNumber: "1", Row: "A", Tier: events.TierBronze}
	gold := &events.Seat{ID: uuid.New(), EventID: event.ID, SeatNumber: "1", Row: "G", Tier: events.TierGold}
	popcorn := &products.Product{ID: uuid.New(), Name: "Popcorn XL", Price: 250, Active: true}

	repo := newFakeRepo()
	resSvc := newFakeReservationService()
	svc := NewService(
		repo,
		resSvc,
		&fakeCatalog{event: event, seats: map[uuid.UUID]*events.Seat{bronze.ID: bronze, gold.ID: gold}},
		&fakeProductService{products: map[uuid.UUID]*products.Product{popcorn.ID: popcorn}},
		&fakeDiscountResolver{discounts: map[string]*discounts.Discount{
			"SAVE10": {ID: uuid.New(), Code: "SAVE10", Percentage: 10},
		}},
	)

	return &fixture{
		repo:    repo,
		resSvc:  resSvc,
		event:   event,
		bronze:  bronze,
		gold:    gold,
		popcorn: popcorn,
		svc:     svc,
		userID:  uuid.New(),
	}
}

func (fx *fixture) addSeat(t *testing.T, seat *events.Seat) *Order {
	t.Helper()
	hold := fx.resSvc.addHold(fx.userID, seat.ID)
	order, err := fx.svc.AddItem(context.Background(), fx.userID.String(), AddItemRequest{
		Kind:          ItemSeat,
		ReservationID: hold.ID.String(),
	})
	require.NoError(t, err)
	return order
}

func TestAddItemCreatesOrderImplicitly(t *testing.T) {
	fx := newFixture()

	order := fx.addSeat(t, fx.bronze)

	assert.Equal(t, StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1000.0, order.Total)

	// Seat hold is now linked to the order.
	hold, err := fx.resSvc.GetActiveHold(context.Background(), fx.userID, *order.Items[0].ReservationID)
	require.NoError(t, err)
	require.NotNil(t, hold.OrderID)
	assert.Equal(t, order.ID, *hold.OrderID)
}

func TestAddItemReusesPendingOrder(t *testing.T) {
	fx := newFixture()

	first := fx.addSeat(t, fx.bronze)
	second := fx.addSeat(t, fx.gold)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Items, 2)
	assert.Equal(t, 3000.0, second.Total)
}

// racingRepo reports no pending order on the first lookup, modelling a
// concurrent first-add that lands between the read and the insert.
type racingRepo struct {
	*fakeRepo
	missed bool
}

func (r *racingRepo) GetPendingByUser(ctx context.Context, userID uuid.UUID) (*Order, error) {
	if !r.missed {
		r.missed = true
		return nil, gorm.ErrRecordNotFound
	}
	return r.fakeRepo.GetPendingByUser(ctx, userID)
}

func TestConcurrentFirstAddReusesExistingOrder(t *testing.T) {
	fx := newFixture()

	// One cart already exists from the add that won the race.
	first := fx.addSeat(t, fx.bronze)

	svc := NewService(
		&racingRepo{fakeRepo: fx.repo},
		fx.resSvc,
		&fakeCatalog{event: fx.event, seats: map[uuid.UUID]*events.Seat{fx.bronze.ID: fx.bronze, fx.gold.ID: fx.gold}},
		&fakeProductService{products: map[uuid.UUID]*products.Product{fx.popcorn.ID: fx.popcorn}},
		&fakeDiscountResolver{},
	)

	hold := fx.resSvc.addHold(fx.userID, fx.gold.ID)
	second, err := svc.AddItem(context.Background(), fx.userID.String(), AddItemRequest{
		Kind:          ItemSeat,
		ReservationID: hold.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "loser of the create race must land in the winner's cart")
	assert.Len(t, second.Items, 2)
}

func TestAddItemRejectsDuplicateReservation(t *testing.T) {
	fx := newFixture()
	hold := fx.resSvc.addHold(fx.userID, fx.bronze.ID)

	_, err := fx.svc.AddItem(context.Background(), fx.userID.String(), AddItemRequest{
		Kind: ItemSeat, ReservationID: hold.ID.String(),
	})
	require.NoError(t, err)

	_, err = fx.svc.AddItem(context.Background(), fx.userID.String(), AddItemRequest{
		Kind: ItemSeat, ReservationID: hold.ID.String(),
	})
	assert.ErrorIs(t, err, ErrSeatInOrder)
}

func TestAddProductItem(t *testing.T) {
	fx := newFixture()

	order, err := fx.svc.AddItem(context.Background(), fx.userID.String(), AddItemRequest{
		Kind:      ItemProduct,
		ProductID: fx.popcorn.ID.String(),
		Quantity:  2,
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 500.0, order.Items[0].LineTotal)
	assert.Equal(t, 500.0, order.Total)
}

func TestDiscountedTotal(t *testing.T) {
	fx := newFixture()

	// Two seats priced 1000 and 2000, then 10 percent off.
	fx.addSeat(t, fx.bronze)
	fx.addSeat(t, fx.gold)

	order, err := fx.svc.ApplyDiscount(context.Background(), fx.userID.String(), "", ApplyDiscountRequest{Code: "save10"})
	require.NoError(t, err)

	assert.Equal(t, 3000.0, order.Subtotal)
	assert.Equal(t, 2700.0, order.Total)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	fx := newFixture()

	order := fx.addSeat(t, fx.bronze)
	_, err := fx.svc.ApplyDiscount(context.Background(), fx.userID.String(), "", ApplyDiscountRequest{Code: "SAVE10"})
	require.NoError(t, err)

	first, err := fx.svc.Recompute(context.Background(), order.ID)
	require.NoError(t, err)
	second, err := fx.svc.Recompute(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 900.0, second)
}

func TestRemoveLastItemCancelsOrder(t *testing.T) {
	fx := newFixture()

	order := fx.addSeat(t, fx.bronze)
	reservationID := *order.Items[0].ReservationID

	updated, err := fx.svc.RemoveItem(context.Background(), fx.userID.String(), order.Items[0].ID.String())
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, updated.Status)
	assert.Contains(t, fx.resSvc.released, reservationID)
}

func TestRemoveItemRecomputesTotal(t *testing.T) {
	fx := newFixture()

	fx.addSeat(t, fx.bronze)
	order := fx.addSeat(t, fx.gold)

	var bronzeItem OrderItem
	for _, item := range order.Items {
		if item.UnitPrice == 1000 {
			bronzeItem = item
		}
	}

	updated, err := fx.svc.RemoveItem(context.Background(), fx.userID.String(), bronzeItem.ID.String())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, updated.Status)
	assert.Equal(t, 2000.0, updated.Total)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	fx := newFixture()
	order := fx.addSeat(t, fx.bronze)

	transitioned, err := fx.svc.MarkPaid(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, transitioned)

	transitioned, err = fx.svc.MarkPaid(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, transitioned, "second reconciliation must not transition again")
}

func TestMarkPaidRejectsCancelledOrder(t *testing.T) {
	fx := newFixture()
	order := fx.addSeat(t, fx.bronze)

	_, err := fx.repo.UpdateStatusIf(context.Background(), order.ID, StatusPending, StatusCancelled)
	require.NoError(t, err)

	_, err = fx.svc.MarkPaid(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotOpen)
}

func TestCancelForExpiredReservations(t *testing.T) {
	fx := newFixture()
	order := fx.addSeat(t, fx.bronze)

	require.NoError(t, fx.svc.CancelForExpiredReservations(context.Background(), []uuid.UUID{order.ID}))

	stored, err := fx.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)

	// Cancelling again is a no-op.
	require.NoError(t, fx.svc.CancelForExpiredReservations(context.Background(), []uuid.UUID{order.ID}))
}

func TestGetForCheckoutGuards(t *testing.T) {
	fx := newFixture()
	order := fx.addSeat(t, fx.bronze)

	t.Run("owner with pending order passes", func(t *testing.T) {
		got, err := fx.svc.GetForCheckout(context.Background(), fx.userID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("other user is rejected", func(t *testing.T) {
		_, err := fx.svc.GetForCheckout(context.Background(), uuid.New(), order.ID)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("paid order is rejected", func(t *testing.T) {
		_, err := fx.svc.MarkPaid(context.Background(), order.ID)
		require.NoError(t, err)
		_, err = fx.svc.GetForCheckout(context.Background(), fx.userID, order.ID)
		assert.ErrorIs(t, err, ErrOrderNotOpen)
	})
}
