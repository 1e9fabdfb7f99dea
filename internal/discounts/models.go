package discounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Discount is a percentage code, optionally bounded in time and restricted to
// a membership tier. Codes are stored uppercase; lookups normalize first.
type Discount struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Code       string     `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Percentage float64    `json:"percentage" gorm:"not null;check:percentage > 0 AND percentage <= 100"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	TierID     *uuid.UUID `json:"tier_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Discount) TableName() string {
	return "discounts"
}

// NormalizeCode uppercases and trims a discount code for lookup and storage.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ActiveAt reports whether now falls inside the validity window. Absent
// bounds mean unbounded on that side.
func (d *Discount) ActiveAt(now time.Time) (notYetActive, expired bool) {
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return true, false
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return false, true
	}
	return false, false
}

type CreateDiscountRequest struct {
	Code       string     `json:"code" binding:"required,min=3,max=50"`
	Percentage float64    `json:"percentage" binding:"required,gt=0,lte=100"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	TierID     *string    `json:"tier_id" binding:"omitempty,uuid"`
}

type UpdateDiscountRequest struct {
	Percentage *float64   `json:"percentage" binding:"omitempty,gt=0,lte=100"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	TierID     *string    `json:"tier_id" binding:"omitempty,uuid"`
}
