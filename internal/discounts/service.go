package discounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinetix/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolution failures, one sentinel per user-facing reason. The caller renders
// the specific message, never a generic one.
var (
	ErrNotFound     = apperrors.NotFound("discount code not found")
	ErrNotYetActive = apperrors.Invalid("discount code is not active yet")
	ErrExpired      = apperrors.Invalid("discount code has expired")
	ErrWrongTier    = apperrors.Invalid("discount code is not available for your membership tier")
)

type Service interface {
	// Resolve validates a code for the given membership at the given instant.
	// Check order: existence, temporal window, tier restriction.
	Resolve(ctx context.Context, code string, membershipTierID *uuid.UUID, now time.Time) (*Discount, error)

	// Admin management
	CreateDiscount(ctx context.Context, req CreateDiscountRequest) (*Discount, error)
	ListDiscounts(ctx context.Context) ([]Discount, error)
	UpdateDiscount(ctx context.Context, id string, req UpdateDiscountRequest) (*Discount, error)
	DeleteDiscount(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Resolve(ctx context.Context, code string, membershipTierID *uuid.UUID, now time.Time) (*Discount, error) {
	discount, err := s.repo.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up discount: %w", err)
	}

	notYetActive, expired := discount.ActiveAt(now)
	if notYetActive {
		return nil, ErrNotYetActive
	}
	if expired {
		return nil, ErrExpired
	}

	if discount.TierID != nil {
		if membershipTierID == nil || *membershipTierID != *discount.TierID {
			return nil, ErrWrongTier
		}
	}

	return discount, nil
}

func (s *service) CreateDiscount(ctx context.Context, req CreateDiscountRequest) (*Discount, error) {
	if req.ValidFrom != nil && req.ValidUntil != nil && !req.ValidUntil.After(*req.ValidFrom) {
		return nil, apperrors.Invalid("valid_until must be after valid_from")
	}

	discount := &Discount{
		Code:       NormalizeCode(req.Code),
		Percentage: req.Percentage,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
	}

	if req.TierID != nil {
		tierID, err := uuid.Parse(*req.TierID)
		if err != nil {
			return nil, apperrors.Invalid("invalid tier ID")
		}
		discount.TierID = &tierID
	}

	if err := s.repo.Create(ctx, discount); err != nil {
		return nil, fmt.Errorf("failed to create discount: %w", err)
	}
	return discount, nil
}

func (s *service) ListDiscounts(ctx context.Context) ([]Discount, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) UpdateDiscount(ctx context.Context, id string, req UpdateDiscountRequest) (*Discount, error) {
	discountID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Invalid("invalid discount ID")
	}

	if _, err := s.repo.GetByID(ctx, discountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("discount not found")
		}
		return nil, fmt.Errorf("failed to get discount: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Percentage != nil {
		updates["percentage"] = *req.Percentage
	}
	if req.ValidFrom != nil {
		updates["valid_from"] = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.TierID != nil {
		tierID, err := uuid.Parse(*req.TierID)
		if err != nil {
			return nil, apperrors.Invalid("invalid tier ID")
		}
		updates["tier_id"] = tierID
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, discountID, updates); err != nil {
			return nil, fmt.Errorf("failed to update discount: %w", err)
		}
	}

	return s.repo.GetByID(ctx, discountID)
}

func (s *service) DeleteDiscount(ctx context.Context, id string) error {
	discountID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.Invalid("invalid discount ID")
	}

	if _, err := s.repo.GetByID(ctx, discountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("discount not found")
		}
		return fmt.Errorf("failed to get discount: %w", err)
	}

	return s.repo.Delete(ctx, discountID)
}
