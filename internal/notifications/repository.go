package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, subscription *Subscription) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Subscription, error)
	GetByEndpoint(ctx context.Context, endpoint string) (*Subscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID, endpoint string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Upsert registers the endpoint, re-owning it if another user registered it
// before (browsers recycle push endpoints).
func (r *repository) Upsert(ctx context.Context, subscription *Subscription) error {
	existing, err := r.GetByEndpoint(ctx, subscription.Endpoint)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if existing != nil {
		updates := map[string]interface{}{
			"user_id": subscription.UserID,
			"p256dh":  subscription.P256dh,
			"auth":    subscription.Auth,
		}
		if err := r.db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
		*subscription = *existing
		return nil
	}

	if err := r.db.WithContext(ctx).Create(subscription).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Subscription, error) {
	var subscriptions []Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subscriptions, nil
}

func (r *repository) GetByEndpoint(ctx context.Context, endpoint string) (*Subscription, error) {
	var subscription Subscription
	err := r.db.WithContext(ctx).Where("endpoint = ?", endpoint).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &subscription, nil
}

func (r *repository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	err := r.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&Subscription{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func (r *repository) DeleteByUser(ctx context.Context, userID uuid.UUID, endpoint string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&Subscription{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	return result.RowsAffected, nil
}
