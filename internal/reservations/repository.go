package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// CreateHold inserts a HELD reservation. Lapsed holds on the same seat
	// are marked EXPIRED first so the live-hold unique index accepts the new
	// row. A concurrent active hold surfaces as gorm.ErrDuplicatedKey.
	CreateHold(ctx context.Context, reservation *Reservation) error

	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Reservation, error)
	ListActiveByEvent(ctx context.Context, eventID uuid.UUID, now time.Time) ([]Reservation, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Reservation, error)

	// UpdateStatus transitions a reservation from one status to another.
	// Returns false when the reservation was not in the expected status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)

	SetOrder(ctx context.Context, id uuid.UUID, orderID *uuid.UUID) error

	// ConfirmByOrder promotes all HELD reservations of an order to CONFIRMED.
	ConfirmByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	// ExpireLapsed marks every lapsed HELD reservation EXPIRED and returns
	// the affected rows.
	ExpireLapsed(ctx context.Context, now time.Time) ([]Reservation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateHold(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Reservation{}).
			Where("seat_id = ? AND status = ? AND expires_at <= ?",
				reservation.SeatID, StatusHeld, time.Now()).
			Update("status", StatusExpired).Error
		if err != nil {
			return err
		}
		return tx.Create(reservation).Error
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reservations).Error
	return reservations, err
}

func (r *repository) ListActiveByEvent(ctx context.Context, eventID uuid.UUID, now time.Time) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND (status = ? OR (status = ? AND expires_at > ?))",
			eventID, StatusConfirmed, StatusHeld, now).
		Find(&reservations).Error
	return reservations, err
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&reservations).Error
	return reservations, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetOrder(ctx context.Context, id uuid.UUID, orderID *uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Reservation{}).
		Where("id = ?", id).
		Update("order_id", orderID).Error
}

func (r *repository) ConfirmByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("order_id = ? AND status = ?", orderID, StatusHeld).
		Updates(map[string]interface{}{
			"status":     StatusConfirmed,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *repository) ExpireLapsed(ctx context.Context, now time.Time) ([]Reservation, error) {
	var expired []Reservation
	err := r.db.WithContext(ctx).
		Model(&expired).
		Clauses(clause.Returning{}).
		Where("status = ? AND expires_at <= ?", StatusHeld, now).
		Updates(map[string]interface{}{
			"status":     StatusExpired,
			"updated_at": now,
		}).Error
	return expired, err
}
