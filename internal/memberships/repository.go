package memberships

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, tier *Tier) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tier, error)
	GetAll(ctx context.Context) ([]Tier, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, tier *Tier) error {
	return r.db.WithContext(ctx).Create(tier).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Tier, error) {
	var tier Tier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Tier, error) {
	var tiers []Tier
	err := r.db.WithContext(ctx).Order("priority ASC").Find(&tiers).Error
	return tiers, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&Tier{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Tier{}, "id = ?", id).Error
}
