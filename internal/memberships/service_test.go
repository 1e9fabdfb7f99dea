package memberships

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cinetix/internal/shared/apperrors"
)

type fakeTierRepo struct {
	tiers map[uuid.UUID]*Tier
}

func newFakeTierRepo(tiers ...*Tier) *fakeTierRepo {
	repo := &fakeTierRepo{tiers: make(map[uuid.UUID]*Tier)}
	for _, tier := range tiers {
		repo.tiers[tier.ID] = tier
	}
	return repo
}

func (f *fakeTierRepo) Create(_ context.Context, tier *Tier) error {
	if tier.ID == uuid.Nil {
		tier.ID = uuid.New()
	}
	f.tiers[tier.ID] = tier
	return nil
}

func (f *fakeTierRepo) GetByID(_ context.Context, id uuid.UUID) (*Tier, error) {
	if tier, ok := f.tiers[id]; ok {
		return tier, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTierRepo) GetAll(_ context.Context) ([]Tier, error) {
	var all []Tier
	for _, tier := range f.tiers {
		all = append(all, *tier)
	}
	return all, nil
}

func (f *fakeTierRepo) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	tier, ok := f.tiers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		tier.Name = name
	}
	if priority, ok := updates["priority"].(int); ok {
		tier.Priority = priority
	}
	return nil
}

func (f *fakeTierRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.tiers, id)
	return nil
}

type fakeUserUpdater struct {
	assigned map[string]*uuid.UUID
}

func newFakeUserUpdater() *fakeUserUpdater {
	return &fakeUserUpdater{assigned: make(map[string]*uuid.UUID)}
}

func (f *fakeUserUpdater) AssignMembership(_ context.Context, userID string, tierID *uuid.UUID) error {
	f.assigned[userID] = tierID
	return nil
}

func TestAssignUserTier(t *testing.T) {
	gold := &Tier{ID: uuid.New(), Name: "Gold", Priority: 1}
	repo := newFakeTierRepo(gold)
	updater := newFakeUserUpdater()
	svc := NewService(repo, updater)

	userID := uuid.New().String()
	goldID := gold.ID.String()

	err := svc.AssignUserTier(context.Background(), userID, AssignTierRequest{TierID: &goldID})
	require.NoError(t, err)

	assigned, ok := updater.assigned[userID]
	require.True(t, ok)
	require.NotNil(t, assigned)
	assert.Equal(t, gold.ID, *assigned)
}

func TestAssignUserTierUnknownTier(t *testing.T) {
	svc := NewService(newFakeTierRepo(), newFakeUserUpdater())

	unknown := uuid.New().String()
	err := svc.AssignUserTier(context.Background(), uuid.New().String(), AssignTierRequest{TierID: &unknown})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestAssignUserTierRevoke(t *testing.T) {
	updater := newFakeUserUpdater()
	svc := NewService(newFakeTierRepo(), updater)

	userID := uuid.New().String()
	err := svc.AssignUserTier(context.Background(), userID, AssignTierRequest{TierID: nil})
	require.NoError(t, err)

	assigned, ok := updater.assigned[userID]
	require.True(t, ok)
	assert.Nil(t, assigned)
}

func TestPriorityFor(t *testing.T) {
	gold := &Tier{ID: uuid.New(), Name: "Gold", Priority: 1}
	svc := NewService(newFakeTierRepo(gold), newFakeUserUpdater())

	priority, err := svc.PriorityFor(context.Background(), &gold.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, priority)

	// No membership falls back to the non-member priority.
	priority, err = svc.PriorityFor(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, NonMemberPriority, priority)

	// Dangling tier reference behaves like no membership.
	dangling := uuid.New()
	priority, err = svc.PriorityFor(context.Background(), &dangling)
	require.NoError(t, err)
	assert.Equal(t, NonMemberPriority, priority)
}
