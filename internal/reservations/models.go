package reservations

import (
	"time"

	"cinetix/internal/events"

	"github.com/google/uuid"
)

// Status tracks the reservation lifecycle. HELD reservations expire once
// their hold window elapses; CONFIRMED reservations survive until the event.
type Status string

const (
	StatusHeld      Status = "HELD"
	StatusConfirmed Status = "CONFIRMED"
	StatusReleased  Status = "RELEASED"
	StatusExpired   Status = "EXPIRED"
)

// Seat states as exposed on the seat map.
const (
	SeatStateFree     = "free"
	SeatStateHeld     = "held"
	SeatStateReserved = "reserved"
)

type Reservation struct {
	ID      uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SeatID  uuid.UUID  `json:"seat_id" gorm:"type:uuid;not null;index"`
	EventID uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;index"`
	UserID  uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	OrderID *uuid.UUID `json:"order_id" gorm:"type:uuid;index"`

	Status    Status    `json:"status" gorm:"type:varchar(20);not null;default:'HELD'"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}

// IsActive reports whether the reservation still blocks its seat at the given
// instant. Expiry is a computed predicate: a lapsed HELD row counts as void
// even before the sweeper rewrites its status.
func (r *Reservation) IsActive(now time.Time) bool {
	switch r.Status {
	case StatusConfirmed:
		return true
	case StatusHeld:
		return now.Before(r.ExpiresAt)
	}
	return false
}

type ReserveRequest struct {
	SeatID string `json:"seat_id" binding:"required,uuid"`
}

type ReservationResponse struct {
	ID        string    `json:"id"`
	SeatID    string    `json:"seat_id"`
	EventID   string    `json:"event_id"`
	OrderID   *string   `json:"order_id,omitempty"`
	Status    Status    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Reservation) ToResponse() ReservationResponse {
	resp := ReservationResponse{
		ID:        r.ID.String(),
		SeatID:    r.SeatID.String(),
		EventID:   r.EventID.String(),
		Status:    r.Status,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
	}
	if r.OrderID != nil {
		orderID := r.OrderID.String()
		resp.OrderID = &orderID
	}
	return resp
}

// SeatState is one entry of an event's seat map.
type SeatState struct {
	ID         string          `json:"id"`
	SeatNumber string          `json:"seat_number"`
	Row        string          `json:"row"`
	Tier       events.SeatTier `json:"tier"`
	Price      float64         `json:"price"`
	State      string          `json:"state"`
}

type SeatMapResponse struct {
	EventID string      `json:"event_id"`
	Seats   []SeatState `json:"seats"`
}
