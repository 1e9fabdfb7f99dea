package reservations

import (
	"context"
	"sync"
	"testing"
	"time"

	"cinetix/internal/events"
	"cinetix/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*Reservation
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reservations: make(map[uuid.UUID]*Reservation)}
}

func (f *fakeRepo) CreateHold(_ context.Context, reservation *Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for _, existing := range f.reservations {
		if existing.SeatID != reservation.SeatID {
			continue
		}
		if existing.Status == StatusHeld && existing.ExpiresAt.Before(now) {
			existing.Status = StatusExpired
			continue
		}
		if existing.Status == StatusHeld || existing.Status == StatusConfirmed {
			return gorm.ErrDuplicatedKey
		}
	}

	clone := *reservation
	f.reservations[reservation.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reservations[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListActiveByEvent(_ context.Context, eventID uuid.UUID, now time.Time) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.reservations {
		if r.EventID != eventID {
			continue
		}
		if r.Status == StatusConfirmed || (r.Status == StatusHeld && r.ExpiresAt.After(now)) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.reservations {
		if r.OrderID != nil && *r.OrderID == orderID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (f *fakeRepo) SetOrder(_ context.Context, id uuid.UUID, orderID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reservations[id]; ok {
		r.OrderID = orderID
	}
	return nil
}

func (f *fakeRepo) ConfirmByOrder(_ context.Context, orderID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.reservations {
		if r.OrderID != nil && *r.OrderID == orderID && r.Status == StatusHeld {
			r.Status = StatusConfirmed
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ExpireLapsed(_ context.Context, now time.Time) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.reservations {
		if r.Status == StatusHeld && !r.ExpiresAt.After(now) {
			r.Status = StatusExpired
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeSeatService struct {
	event *events.Event
	seats map[uuid.UUID]*events.Seat
}

func newFakeSeatService(event *events.Event, seats ...*events.Seat) *fakeSeatService {
	f := &fakeSeatService{event: event, seats: make(map[uuid.UUID]*events.Seat)}
	for _, s := range seats {
		f.seats[s.ID] = s
	}
	return f
}

func (f *fakeSeatService) GetSeat(_ context.Context, id string) (*events.Seat, error) {
	seatID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Invalid("invalid seat ID")
	}
	if s, ok := f.seats[seatID]; ok {
		return s, nil
	}
	return nil, apperrors.NotFound("seat not found")
}

func (f *fakeSeatService) GetEvent(_ context.Context, id string) (*events.Event, error) {
	if f.event != nil && f.event.ID.String() == id {
		return f.event, nil
	}
	return nil, apperrors.NotFound("event not found")
}

func (f *fakeSeatService) ListSeats(_ context.Context, _ string) ([]events.Seat, error) {
	var out []events.Seat
	for _, s := range f.seats {
		out = append(out, *s)
	}
	return out, nil
}

type fakeMembershipResolver struct {
	priorities map[uuid.UUID]int
}

func (f *fakeMembershipResolver) PriorityFor(_ context.Context, tierID *uuid.UUID) (int, error) {
	if tierID == nil {
		return 100, nil
	}
	if p, ok := f.priorities[*tierID]; ok {
		return p, nil
	}
	return 100, nil
}

type fakeCanceller struct {
	mu       sync.Mutex
	orderIDs []uuid.UUID
}

func (f *fakeCanceller) CancelForExpiredReservations(_ context.Context, orderIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderIDs = append(f.orderIDs, orderIDs...)
	return nil
}

type fixture struct {
	repo    *fakeRepo
	seats   *fakeSeatService
	event   *events.Event
	bronze  *events.Seat
	gold    *events.Seat
	goldID  uuid.UUID
	resolve *fakeMembershipResolver
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

	goldTierID := uuid.New()
	return &fixture{
		repo:    newFakeRepo(),
		seats:   newFakeSeatService(event, bronze, gold),
		event:   event,
		bronze:  bronze,
		gold:    gold,
		goldID:  goldTierID,
		resolve: &fakeMembershipResolver{priorities: map[uuid.UUID]int{goldTierID: 1}},
	}
}

func (fx *fixture) service(holdTTL time.Duration) Service {
	return NewService(fx.repo, nil, fx.seats, fx.resolve, holdTTL)
}

func TestReserveHoldsSeat(t *testing.T) {
	fx := newFixture()
	svc := fx.service(10 * time.Minute)
	userID := uuid.New().String()

	reservation, err := svc.Reserve(context.Background(), userID, "", ReserveRequest{SeatID: fx.bronze.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, StatusHeld, reservation.Status)
	assert.Equal(t, fx.bronze.ID, reservation.SeatID)
	assert.True(t, reservation.ExpiresAt.After(time.Now()))
}

func TestReserveConflictsOnHeldSeat(t *testing.T) {
	fx := newFixture()
	svc := fx.service(10 * time.Minute)

	_, err := svc.Reserve(context.Background(), uuid.New().String(), "", ReserveRequest{SeatID: fx.bronze.ID.String()})
	require.NoError(t, err)

	_, err = svc.Reserve(context.Background(), uuid.New().String(), "", ReserveRequest{SeatID: fx.bronze.ID.String()})
	assert.ErrorIs(t, err, ErrSeatHeld)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestReserveSerializesConcurrentRequests(t *testing.T) {
	fx := newFixture()
	svc := fx.service(10 * time.Minute)

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), uuid.New().String(), "", ReserveRequest{SeatID: fx.bronze.ID.String()})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won int
	for err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrSeatHeld)
		}
	}
	assert.Equal(t, 1, won, "exactly one request should win the seat")
}

func TestReserveTierGate(t *testing.T) {
	fx := newFixture()
	svc := fx.service(10 * time.Minute)

	t.Run("non-member cannot hold a gold seat", func(t *testing.T) {
		_, err := svc.Reserve(context.Background(), uuid.New().String(), "", ReserveRequest{SeatID: fx.gold.ID.String()})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	})

	t.Run("gold member can hold a gold seat", func(t *testing.T) {
		_, err := svc.Reserve(context.Background(), uuid.New().String(), fx.goldID.String(), ReserveRequest{SeatID: fx.gold.ID.String()})
		assert.NoError(t, err)
	})
}

func TestExpiredHoldDoesNotBlockSeat(t *testing.T) {
	fx := newFixture()
	lapsed := fx.service(-time.Minute)
	svc := fx.service(10 * time.Minute)

	first, err := lapsed.Reserve(context.Background(), uuid.New().String(), "", ReserveRequest{SeatID: fx.bronze.ID.String()})
	require.NoError(t, err)
	require.False(t, first.IsActive(time.Now()))

	_, err = svc.Reserve(context.Background(), uuid.New().String(), "", ReserveRequest{SeatID: fx.bronze.ID.String()})
	assert.NoError(t, err, "lapsed hold must not block the next requester")
}

func TestRelease(t *testing.T) {
	fx := newFixture()
	svc := fx.service(10 * time.Minute)
	userID := uuid.New().String()

	reservation, err := svc.Reserve(context.Background(), userID, "", ReserveRequest{SeatID: fx.bronze.ID.String()})
	require.NoError(t, err)

	t.Run("only the holder may release", func(t *testing.T) {
		err := svc.Release(context.Background(), uuid.New().String(), reservation.ID.String())
		assert.ErrorIs(t, err, ErrNotHolder)
	})

	t.Run("release frees the seat", func(t *testing.T) {
		require.NoError(t, svc.Release(context.Background(), userID, reservation.ID.String()))

		_, err := svc.Reserve(context.Background(), uuid.New().String(), "", ReserveRequest{SeatID: fx.bronze.ID.String()})
		assert.NoError(t, err)
	})

	t.Run("reservation attached to an order is not releasable directly", func(t *testing.T) {
		attached, err := svc.Reserve(context.Background(), userID, fx.goldID.String(), ReserveRequest{SeatID: fx.gold.ID.String()})
		require.NoError(t, err)
		orderID := uuid.New()
		require.NoError(t, svc.AttachOrder(context.Background(), attached.ID, orderID))

		err = svc.Release(context.Background(), userID, attached.ID.String())
		assert.ErrorIs(t, err, ErrAttachedToOrder)
	})
}

func TestConfirmForOrderStopsExpiry(t *testing.T) {
	fx := newFixture()
	svc := fx.service(time.Millisecond)
	userID := uuid.New().String()

	reservation, err := svc.Reserve(context.Background(), userID, "", ReserveRequest{SeatID: fx.bronze.ID.String()})
	require.NoError(t, err)

	orderID := uuid.New()
	require.NoError(t, svc.AttachOrder(context.Background(), reservation.ID, orderID))
	require.NoError(t, svc.ConfirmForOrder(context.Background(), orderID))

	expired, err := svc.ExpireLapsed(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, expired, "confirmed reservations are no longer subject to expiry")

	stored, err := fx.repo.GetByID(context.Background(), reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)
	assert.True(t, stored.IsActive(time.Now().Add(time.Hour)))
}

func TestSeatMapStates(t *testing.T) {
	fx := newFixture()
	svc := fx.service(10 * time.Minute)

	held, err := svc.Reserve(context.Background(), uuid.New().String(), fx.goldID.String(), ReserveRequest{SeatID: fx.gold.ID.String()})
	require.NoError(t, err)

	seatMap, err := svc.SeatMap(context.Background(), fx.event.ID.String())
	require.NoError(t, err)
	require.Len(t, seatMap.Seats, 2)

	states := make(map[string]SeatState)
	for _, s := range seatMap.Seats {
		states[s.ID] = s
	}

	assert.Equal(t, SeatStateFree, states[fx.bronze.ID.String()].State)
	assert.Equal(t, SeatStateHeld, states[fx.gold.ID.String()].State)
	assert.Equal(t, 1000.0, states[fx.bronze.ID.String()].Price)
	assert.Equal(t, 2000.0, states[fx.gold.ID.String()].Price)

	orderID := uuid.New()
	require.NoError(t, svc.AttachOrder(context.Background(), held.ID, orderID))
	require.NoError(t, svc.ConfirmForOrder(context.Background(), orderID))

	seatMap, err = svc.SeatMap(context.Background(), fx.event.ID.String())
	require.NoError(t, err)
	for _, s := range seatMap.Seats {
		if s.ID == fx.gold.ID.String() {
			assert.Equal(t, SeatStateReserved, s.State)
		}
	}
}

func TestSweeperCancelsOrphanedOrders(t *testing.T) {
	fx := newFixture()
	svc := fx.service(-time.Minute)
	canceller := &fakeCanceller{}

	reservation, err := svc.Reserve(context.Background(), uuid.New().String(), "", ReserveRequest{SeatID: fx.bronze.ID.String()})
	require.NoError(t, err)
	orderID := uuid.New()
	require.NoError(t, svc.AttachOrder(context.Background(), reservation.ID, orderID))

	sweeper := NewSweeper(svc, canceller, time.Minute)
	sweeper.sweep(context.Background())

	require.Len(t, canceller.orderIDs, 1)
	assert.Equal(t, orderID, canceller.orderIDs[0])
}
