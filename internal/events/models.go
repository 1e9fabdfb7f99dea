package events

import (
	"time"

	"cinetix/internal/memberships"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string      `json:"name" gorm:"not null;size:255"`
	Description string      `json:"description" gorm:"type:text"`
	Venue       string      `json:"venue" gorm:"not null;size:255"`
	DateTime    time.Time   `json:"date_time" gorm:"not null"`
	BasePrice   float64     `json:"base_price" gorm:"not null;check:base_price >= 0"`
	Status      EventStatus `json:"status" gorm:"type:varchar(20);default:'draft'"`
	ImageURL    string      `json:"image_url" gorm:"size:500"`

	Seats []Seat `json:"seats,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`

	CreatedBy uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	UpdatedBy *uuid.UUID `json:"updated_by" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// SeatTier enumerates seat quality bands within an auditorium.
type SeatTier string

const (
	TierGold   SeatTier = "GOLD"
	TierSilver SeatTier = "SILVER"
	TierBronze SeatTier = "BRONZE"
)

func (t SeatTier) IsValid() bool {
	switch t {
	case TierGold, TierSilver, TierBronze:
		return true
	}
	return false
}

// PriceMultiplier scales the event base price per tier.
func (t SeatTier) PriceMultiplier() float64 {
	switch t {
	case TierGold:
		return 2.0
	case TierSilver:
		return 1.5
	default:
		return 1.0
	}
}

// RequiredPriority is the highest membership priority value still allowed to
// reserve a seat of this tier (lower priority = more privileged). Bronze is
// open to everyone, including non-members.
func (t SeatTier) RequiredPriority() int {
	switch t {
	case TierGold:
		return 1
	case TierSilver:
		return 2
	default:
		return memberships.NonMemberPriority
	}
}

// Seat belongs to one event. Reservation state lives in the reservations
// table; a seat row only describes the physical seat.
type Seat struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID    uuid.UUID `json:"event_id" gorm:"type:uuid;index;not null"`
	SeatNumber string    `json:"seat_number" gorm:"not null;size:10"`
	Row        string    `json:"row" gorm:"not null;size:5"`
	Tier       SeatTier  `json:"tier" gorm:"type:varchar(10);not null;default:'BRONZE';check:tier IN ('GOLD','SILVER','BRONZE')"`
	CreatedAt  time.Time `json:"created_at"`
}

// Price computes the seat price from the event base price and tier multiplier.
func (s *Seat) Price(basePrice float64) float64 {
	return basePrice * s.Tier.PriceMultiplier()
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

// TableName specifies the table name for GORM
func (Seat) TableName() string {
	return "seats"
}

type EventResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Venue       string      `json:"venue"`
	DateTime    time.Time   `json:"date_time"`
	BasePrice   float64     `json:"base_price"`
	Status      EventStatus `json:"status"`
	ImageURL    string      `json:"image_url"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type SeatResponse struct {
	ID         string   `json:"id"`
	SeatNumber string   `json:"seat_number"`
	Row        string   `json:"row"`
	Tier       SeatTier `json:"tier"`
	Price      float64  `json:"price"`
	State      string   `json:"state"` // free | held | reserved
}

type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,min=3,max=255"`
	Description string    `json:"description" binding:"max=2000"`
	Venue       string    `json:"venue" binding:"required,min=3,max=255"`
	DateTime    time.Time `json:"date_time" binding:"required"`
	BasePrice   float64   `json:"base_price" binding:"required,min=0"`
	ImageURL    string    `json:"image_url" binding:"omitempty,url"`
	Seats       []SeatSpec `json:"seats" binding:"omitempty,dive"`
}

// SeatSpec describes a seat to create alongside an event.
type SeatSpec struct {
	SeatNumber string `json:"seat_number" binding:"required,max=10"`
	Row        string `json:"row" binding:"required,max=5"`
	Tier       string `json:"tier" binding:"omitempty,oneof=GOLD SILVER BRONZE"`
}

type UpdateEventRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=3,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Venue       *string    `json:"venue" binding:"omitempty,min=3,max=255"`
	DateTime    *time.Time `json:"date_time"`
	BasePrice   *float64   `json:"base_price" binding:"omitempty,min=0"`
	Status      *string    `json:"status" binding:"omitempty,oneof=draft published cancelled completed"`
	ImageURL    *string    `json:"image_url" binding:"omitempty,url"`
}

type EventListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	Venue    string `form:"venue"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Status   string `form:"status" binding:"omitempty,oneof=draft published cancelled completed"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// Helper method to convert Event to EventResponse
func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:          e.ID.String(),
		Name:        e.Name,
		Description: e.Description,
		Venue:       e.Venue,
		DateTime:    e.DateTime,
		BasePrice:   e.BasePrice,
		Status:      e.Status,
		ImageURL:    e.ImageURL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
