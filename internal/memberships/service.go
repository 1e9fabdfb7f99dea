package memberships

import (
	"context"
	"errors"
	"fmt"

	"cinetix/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserMembershipUpdater writes the resolved tier onto the user record. The
// auth package provides the implementation so user persistence stays in one
// place.
type UserMembershipUpdater interface {
	AssignMembership(ctx context.Context, userID string, tierID *uuid.UUID) error
}

type Service interface {
	CreateTier(ctx context.Context, req CreateTierRequest) (*Tier, error)
	GetTier(ctx context.Context, id string) (*Tier, error)
	ListTiers(ctx context.Context) ([]Tier, error)
	UpdateTier(ctx context.Context, id string, req UpdateTierRequest) (*Tier, error)
	DeleteTier(ctx context.Context, id string) error
	AssignUserTier(ctx context.Context, userID string, req AssignTierRequest) error

	// PriorityFor resolves the effective privilege priority for a membership
	// tier ID; users without membership get NonMemberPriority.
	PriorityFor(ctx context.Context, tierID *uuid.UUID) (int, error)
}

type service struct {
	repo  Repository
	users UserMembershipUpdater
}

func NewService(repo Repository, users UserMembershipUpdater) Service {
	return &service{repo: repo, users: users}
}

func (s *service) CreateTier(ctx context.Context, req CreateTierRequest) (*Tier, error) {
	tier := &Tier{
		Name:     req.Name,
		Priority: req.Priority,
	}
	if err := s.repo.Create(ctx, tier); err != nil {
		return nil, fmt.Errorf("failed to create membership tier: %w", err)
	}
	return tier, nil
}

func (s *service) GetTier(ctx context.Context, id string) (*Tier, error) {
	tierID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Invalid("invalid membership tier ID")
	}

	tier, err := s.repo.GetByID(ctx, tierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("membership tier not found")
		}
		return nil, fmt.Errorf("failed to get membership tier: %w", err)
	}
	return tier, nil
}

func (s *service) ListTiers(ctx context.Context) ([]Tier, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) UpdateTier(ctx context.Context, id string, req UpdateTierRequest) (*Tier, error) {
	tierID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Invalid("invalid membership tier ID")
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, tierID, updates); err != nil {
			return nil, fmt.Errorf("failed to update membership tier: %w", err)
		}
	}

	return s.GetTier(ctx, id)
}

func (s *service) DeleteTier(ctx context.Context, id string) error {
	tierID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.Invalid("invalid membership tier ID")
	}

	if _, err := s.repo.GetByID(ctx, tierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("membership tier not found")
		}
		return fmt.Errorf("failed to get membership tier: %w", err)
	}

	return s.repo.Delete(ctx, tierID)
}

func (s *service) AssignUserTier(ctx context.Context, userID string, req AssignTierRequest) error {
	var tierID *uuid.UUID
	if req.TierID != nil {
		parsed, err := uuid.Parse(*req.TierID)
		if err != nil {
			return apperrors.Invalid("invalid membership tier ID")
		}

		if _, err := s.repo.GetByID(ctx, parsed); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("membership tier not found")
			}
			return fmt.Errorf("failed to get membership tier: %w", err)
		}
		tierID = &parsed
	}

	if err := s.users.AssignMembership(ctx, userID, tierID); err != nil {
		return fmt.Errorf("failed to assign membership: %w", err)
	}
	return nil
}

func (s *service) PriorityFor(ctx context.Context, tierID *uuid.UUID) (int, error) {
	if tierID == nil {
		return NonMemberPriority, nil
	}

	tier, err := s.repo.GetByID(ctx, *tierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Dangling membership reference, treat as non-member
			return NonMemberPriority, nil
		}
		return 0, fmt.Errorf("failed to resolve membership tier: %w", err)
	}
	return tier.Priority, nil
}
