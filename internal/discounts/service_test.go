package discounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	byCode map[string]*Discount
}

func newFakeRepo(discounts ...*Discount) *fakeRepo {
	repo := &fakeRepo{byCode: make(map[string]*Discount)}
	for _, d := range discounts {
		repo.byCode[d.Code] = d
	}
	return repo
}

func (f *fakeRepo) Create(_ context.Context, discount *Discount) error {
	f.byCode[discount.Code] = discount
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Discount, error) {
	for _, d := range f.byCode {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetByCode(_ context.Context, code string) (*Discount, error) {
	if d, ok := f.byCode[code]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetAll(_ context.Context) ([]Discount, error) {
	var all []Discount
	for _, d := range f.byCode {
		all = append(all, *d)
	}
	return all, nil
}

func (f *fakeRepo) Update(_ context.Context, _ uuid.UUID, _ map[string]interface{}) error {
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

func TestResolve(t *testing.T) {
	validFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	validUntil := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)

	goldTier := uuid.New()
	silverTier := uuid.New()

	save10 := &Discount{
		ID:         uuid.New(),
		Code:       "SAVE10",
		Percentage: 15,
		ValidFrom:  &validFrom,
		ValidUntil: &validUntil,
	}
	goldOnly := &Discount{
		ID:         uuid.New(),
		Code:       "GOLDONLY",
		Percentage: 25,
		TierID:     &goldTier,
	}

	svc := NewService(newFakeRepo(save10, goldOnly))

	t.Run("valid code inside window", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		discount, err := svc.Resolve(context.Background(), "SAVE10", nil, now)
		require.NoError(t, err)
		assert.Equal(t, 15.0, discount.Percentage)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		discount, err := svc.Resolve(context.Background(), "  save10 ", nil, now)
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", discount.Code)
	})

	t.Run("expired code", func(t *testing.T) {
		now := time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC)
		_, err := svc.Resolve(context.Background(), "SAVE10", nil, now)
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("not yet active code", func(t *testing.T) {
		now := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		_, err := svc.Resolve(context.Background(), "SAVE10", nil, now)
		assert.ErrorIs(t, err, ErrNotYetActive)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), "NOPE", nil, time.Now())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("tier restricted code rejects mismatched membership", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), "GOLDONLY", &silverTier, time.Now())
		assert.ErrorIs(t, err, ErrWrongTier)
	})

	t.Run("tier restricted code rejects non-members", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), "GOLDONLY", nil, time.Now())
		assert.ErrorIs(t, err, ErrWrongTier)
	})

	t.Run("tier restricted code accepts matching membership", func(t *testing.T) {
		discount, err := svc.Resolve(context.Background(), "GOLDONLY", &goldTier, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 25.0, discount.Percentage)
	})

	t.Run("unbounded code never expires", func(t *testing.T) {
		farFuture := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
		discount, err := svc.Resolve(context.Background(), "GOLDONLY", &goldTier, farFuture)
		require.NoError(t, err)
		assert.NotNil(t, discount)
	})
}
