package analytics

import (
	"context"
	"fmt"
	"time"

	"cinetix/internal/shared/constants"
	"cinetix/pkg/cache"
	"cinetix/pkg/logger"
)

const (
	defaultTopEvents = 5
	defaultDays      = 14
)

type Service interface {
	GetDashboard(ctx context.Context) (*DashboardResponse, error)
	GetSalesOverview(ctx context.Context) (*SalesOverview, error)
	GetTopEvents(ctx context.Context, limit int) ([]EventSales, error)
	GetDailySales(ctx context.Context, days int) ([]DailySales, error)
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// SetCacheService injects the optional read-through cache.
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	if s.cacheService != nil {
		var cached DashboardResponse
		if err := s.cacheService.Get(ctx, constants.CACHE_KEY_ANALYTICS_DASHBOARD, &cached); err == nil {
			return &cached, nil
		}
	}

	overview, err := s.GetSalesOverview(ctx)
	if err != nil {
		return nil, err
	}

	topEvents, err := s.GetTopEvents(ctx, defaultTopEvents)
	if err != nil {
		return nil, err
	}

	daily, err := s.GetDailySales(ctx, defaultDays)
	if err != nil {
		return nil, err
	}

	dashboard := &DashboardResponse{
		Overview:   *overview,
		TopEvents:  topEvents,
		DailySales: daily,
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, constants.CACHE_KEY_ANALYTICS_DASHBOARD, dashboard, constants.TTL_ANALYTICS_DASHBOARD); err != nil {
			logger.GetDefault().Debug("failed to cache analytics dashboard", "error", err)
		}
	}

	return dashboard, nil
}

func (s *service) GetSalesOverview(ctx context.Context) (*SalesOverview, error) {
	overview, err := s.repo.GetSalesOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales overview: %w", err)
	}
	overview.GeneratedAt = time.Now().UTC()
	return overview, nil
}

func (s *service) GetTopEvents(ctx context.Context, limit int) ([]EventSales, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultTopEvents
	}
	return s.repo.GetEventSales(ctx, limit)
}

func (s *service) GetDailySales(ctx context.Context, days int) ([]DailySales, error) {
	if days <= 0 || days > 90 {
		days = defaultDays
	}
	return s.repo.GetDailySales(ctx, days)
}
