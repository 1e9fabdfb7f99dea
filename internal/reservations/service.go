package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinetix/internal/events"
	"cinetix/internal/shared/apperrors"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSeatHeld        = apperrors.Conflict("seat is already held or reserved")
	ErrNotFound        = apperrors.NotFound("reservation not found")
	ErrNotHolder       = apperrors.Forbidden("reservation belongs to another user")
	ErrAttachedToOrder = apperrors.Conflict("reservation is attached to an order; remove the order item instead")
)

// SeatService is the slice of the events service the reservation flow needs.
type SeatService interface {
	GetSeat(ctx context.Context, id string) (*events.Seat, error)
	GetEvent(ctx context.Context, id string) (*events.Event, error)
	ListSeats(ctx context.Context, eventID string) ([]events.Seat, error)
}

// MembershipResolver resolves a membership tier ID to its privilege priority.
type MembershipResolver interface {
	PriorityFor(ctx context.Context, tierID *uuid.UUID) (int, error)
}

// SeatHolder is the Redis fast path for conditional seat holds. The partial
// unique index on live reservations remains the correctness backstop, so the
// service degrades to database-only serialization when no holder is wired.
type SeatHolder interface {
	AtomicHoldSeat(ctx context.Context, seatID, userID, reservationID string, ttl time.Duration) error
	AtomicReleaseSeat(ctx context.Context, seatID, userID, reservationID string) error
}

type Service interface {
	Reserve(ctx context.Context, userID, membershipID string, req ReserveRequest) (*Reservation, error)
	Release(ctx context.Context, userID, reservationID string) error
	GetReservation(ctx context.Context, userID, reservationID string) (*Reservation, error)
	ListMyReservations(ctx context.Context, userID string) ([]ReservationResponse, error)
	SeatMap(ctx context.Context, eventID string) (*SeatMapResponse, error)

	// Cross-module operations used by the order and checkout flows.
	GetActiveHold(ctx context.Context, userID, reservationID uuid.UUID) (*Reservation, error)
	AttachOrder(ctx context.Context, reservationID, orderID uuid.UUID) error
	ReleaseForOrder(ctx context.Context, reservationID uuid.UUID) error
	ConfirmForOrder(ctx context.Context, orderID uuid.UUID) error
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]Reservation, error)
	ExpireLapsed(ctx context.Context, now time.Time) ([]Reservation, error)
}

type service struct {
	repo        Repository
	atomic      SeatHolder
	seats       SeatService
	memberships MembershipResolver
	holdTTL     time.Duration
}

func NewService(repo Repository, atomic SeatHolder, seats SeatService, memberships MembershipResolver, holdTTL time.Duration) Service {
	return &service{
		repo:        repo,
		atomic:      atomic,
		seats:       seats,
		memberships: memberships,
		holdTTL:     holdTTL,
	}
}

func (s *service) Reserve(ctx context.Context, userID, membershipID string, req ReserveRequest) (*Reservation, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid user identity")
	}

	seat, err := s.seats.GetSeat(ctx, req.SeatID)
	if err != nil {
		return nil, err
	}

	event, err := s.seats.GetEvent(ctx, seat.EventID.String())
	if err != nil {
		return nil, err
	}
	if !event.Status.IsBookable() {
		return nil, apperrors.Invalid("event is not open for booking")
	}

	var tierID *uuid.UUID
	if membershipID != "" {
		parsed, err := uuid.Parse(membershipID)
		if err == nil {
			tierID = &parsed
		}
	}
	priority, err := s.memberships.PriorityFor(ctx, tierID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve membership priority: %w", err)
	}
	if priority > seat.Tier.RequiredPriority() {
		return nil, apperrors.Forbidden(fmt.Sprintf("%s seats require a higher membership tier", seat.Tier))
	}

	now := time.Now()
	reservation := &Reservation{
		ID:        uuid.New(),
		SeatID:    seat.ID,
		EventID:   seat.EventID,
		UserID:    uid,
		Status:    StatusHeld,
		ExpiresAt: now.Add(s.holdTTL),
	}

	if s.atomic != nil {
		if err := s.atomic.AtomicHoldSeat(ctx, seat.ID.String(), userID, reservation.ID.String(), s.holdTTL); err != nil {
			return nil, err
		}
	}

	if err := s.repo.CreateHold(ctx, reservation); err != nil {
		if s.atomic != nil {
			if relErr := s.atomic.AtomicReleaseSeat(ctx, seat.ID.String(), userID, reservation.ID.String()); relErr != nil {
				logger.GetDefault().Warn("failed to roll back seat hold", "seat_id", seat.ID.String(), "error", relErr)
			}
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSeatHeld
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	logger.GetDefault().LogReservationCreated(ctx, reservation.ID.String(), seat.ID.String(), userID)
	return reservation, nil
}

func (s *service) Release(ctx context.Context, userID, reservationID string) error {
	id, err := uuid.Parse(reservationID)
	if err != nil {
		return apperrors.Invalid("invalid reservation ID")
	}

	reservation, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if reservation.UserID.String() != userID {
		return ErrNotHolder
	}
	if reservation.OrderID != nil {
		return ErrAttachedToOrder
	}

	return s.release(ctx, reservation, "released by user")
}

func (s *service) release(ctx context.Context, reservation *Reservation, reason string) error {
	ok, err := s.repo.UpdateStatus(ctx, reservation.ID, StatusHeld, StatusReleased)
	if err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	if !ok {
		return apperrors.Conflict("reservation is not in a releasable state")
	}

	if s.atomic != nil {
		if err := s.atomic.AtomicReleaseSeat(ctx, reservation.SeatID.String(), reservation.UserID.String(), reservation.ID.String()); err != nil {
			logger.GetDefault().Warn("failed to release redis seat hold", "seat_id", reservation.SeatID.String(), "error", err)
		}
	}

	logger.GetDefault().LogReservationReleased(ctx, reservation.ID.String(), reason)
	return nil
}

func (s *service) GetReservation(ctx context.Context, userID, reservationID string) (*Reservation, error) {
	id, err := uuid.Parse(reservationID)
	if err != nil {
		return nil, apperrors.Invalid("invalid reservation ID")
	}

	reservation, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID.String() != userID {
		return nil, ErrNotHolder
	}
	return reservation, nil
}

func (s *service) ListMyReservations(ctx context.Context, userID string) ([]ReservationResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid user identity")
	}

	reservations, err := s.repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	now := time.Now()
	responses := make([]ReservationResponse, 0, len(reservations))
	for i := range reservations {
		resp := reservations[i].ToResponse()
		// Surface lapsed holds as expired even before the sweeper runs.
		if reservations[i].Status == StatusHeld && !reservations[i].IsActive(now) {
			resp.Status = StatusExpired
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *service) SeatMap(ctx context.Context, eventID string) (*SeatMapResponse, error) {
	event, err := s.seats.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	seats, err := s.seats.ListSeats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}

	now := time.Now()
	active, err := s.repo.ListActiveByEvent(ctx, event.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active reservations: %w", err)
	}

	stateBySeat := make(map[uuid.UUID]string, len(active))
	for i := range active {
		if !active[i].IsActive(now) {
			continue
		}
		if active[i].Status == StatusConfirmed {
			stateBySeat[active[i].SeatID] = SeatStateReserved
		} else {
			stateBySeat[active[i].SeatID] = SeatStateHeld
		}
	}

	result := &SeatMapResponse{
		EventID: event.ID.String(),
		Seats:   make([]SeatState, 0, len(seats)),
	}
	for i := range seats {
		state, ok := stateBySeat[seats[i].ID]
		if !ok {
			state = SeatStateFree
		}
		result.Seats = append(result.Seats, SeatState{
			ID:         seats[i].ID.String(),
			SeatNumber: seats[i].SeatNumber,
			Row:        seats[i].Row,
			Tier:       seats[i].Tier,
			Price:      seats[i].Price(event.BasePrice),
			State:      state,
		})
	}
	return result, nil
}

func (s *service) GetActiveHold(ctx context.Context, userID, reservationID uuid.UUID) (*Reservation, error) {
	reservation, err := s.getByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, ErrNotHolder
	}
	if reservation.Status != StatusHeld || !reservation.IsActive(time.Now()) {
		return nil, apperrors.Conflict("reservation hold has expired or is no longer active")
	}
	return reservation, nil
}

func (s *service) AttachOrder(ctx context.Context, reservationID, orderID uuid.UUID) error {
	return s.repo.SetOrder(ctx, reservationID, &orderID)
}

func (s *service) ReleaseForOrder(ctx context.Context, reservationID uuid.UUID) error {
	reservation, err := s.getByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if err := s.repo.SetOrder(ctx, reservationID, nil); err != nil {
		return fmt.Errorf("failed to detach reservation from order: %w", err)
	}
	if reservation.Status != StatusHeld {
		return nil
	}
	return s.release(ctx, reservation, "order item removed")
}

func (s *service) ConfirmForOrder(ctx context.Context, orderID uuid.UUID) error {
	confirmed, err := s.repo.ConfirmByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to confirm reservations: %w", err)
	}

	// Drop the redis holds so TTL expiry can never race a paid seat.
	if s.atomic != nil && confirmed > 0 {
		reservations, err := s.repo.ListByOrder(ctx, orderID)
		if err != nil {
			logger.GetDefault().Warn("failed to list confirmed reservations for hold cleanup", "order_id", orderID.String(), "error", err)
			return nil
		}
		for i := range reservations {
			if reservations[i].Status != StatusConfirmed {
				continue
			}
			if err := s.atomic.AtomicReleaseSeat(ctx, reservations[i].SeatID.String(), reservations[i].UserID.String(), reservations[i].ID.String()); err != nil {
				logger.GetDefault().Warn("failed to drop redis hold for confirmed seat", "seat_id", reservations[i].SeatID.String(), "error", err)
			}
		}
	}
	return nil
}

func (s *service) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]Reservation, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *service) ExpireLapsed(ctx context.Context, now time.Time) ([]Reservation, error) {
	expired, err := s.repo.ExpireLapsed(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to expire lapsed reservations: %w", err)
	}

	if s.atomic != nil {
		for i := range expired {
			if err := s.atomic.AtomicReleaseSeat(ctx, expired[i].SeatID.String(), expired[i].UserID.String(), expired[i].ID.String()); err != nil {
				logger.GetDefault().Debug("failed to drop redis hold for expired reservation", "seat_id", expired[i].SeatID.String(), "error", err)
			}
		}
	}

	for i := range expired {
		logger.GetDefault().LogReservationReleased(ctx, expired[i].ID.String(), "hold window elapsed")
	}
	return expired, nil
}

func (s *service) getByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}
