package discounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, discount *Discount) error
	GetByID(ctx context.Context, id uuid.UUID) (*Discount, error)
	GetByCode(ctx context.Context, code string) (*Discount, error)
	GetAll(ctx context.Context) ([]Discount, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, discount *Discount) error {
	return r.db.WithContext(ctx).Create(discount).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Discount, error) {
	var discount Discount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Discount, error) {
	var discount Discount
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Discount, error) {
	var discounts []Discount
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&discounts).Error
	return discounts, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&Discount{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Discount{}, "id = ?", id).Error
}
