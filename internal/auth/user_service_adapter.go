package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UserMembershipAdapter implements the memberships UserMembershipUpdater
// interface over the auth repository. The adapter keeps user persistence in
// this package without a memberships -> auth import.
type UserMembershipAdapter struct {
	repo Repository
}

// NewUserMembershipAdapter creates a new user membership adapter
func NewUserMembershipAdapter(repo Repository) *UserMembershipAdapter {
	return &UserMembershipAdapter{
		repo: repo,
	}
}

// AssignMembership sets or clears the membership tier on the user record.
func (a *UserMembershipAdapter) AssignMembership(ctx context.Context, userID string, tierID *uuid.UUID) error {
	var tierIDStr *string
	if tierID != nil {
		s := tierID.String()
		tierIDStr = &s
	}

	if err := a.repo.UpdateMembership(ctx, userID, tierIDStr); err != nil {
		return fmt.Errorf("failed to update membership for user %s: %w", userID, err)
	}
	return nil
}
