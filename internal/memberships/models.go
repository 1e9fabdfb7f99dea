package memberships

import (
	"time"

	"github.com/google/uuid"
)

// Tier is a named privilege level. Lower priority means higher privilege:
// priority 1 outranks priority 2. Tiers gate seat-tier access and discount
// eligibility.
type Tier struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Priority  int       `json:"priority" gorm:"not null;check:priority > 0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Tier) TableName() string {
	return "membership_tiers"
}

// NonMemberPriority is the effective priority of a user without any
// membership. Any tier a venue defines outranks it.
const NonMemberPriority = 100

type CreateTierRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Priority int    `json:"priority" binding:"required,min=1,max=99"`
}

type UpdateTierRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=100"`
	Priority *int    `json:"priority" binding:"omitempty,min=1,max=99"`
}

// AssignTierRequest sets or clears a user's membership; a null tier_id
// revokes membership.
type AssignTierRequest struct {
	TierID *string `json:"tier_id" binding:"omitempty,uuid"`
}
