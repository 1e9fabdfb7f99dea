package events

import (
	"context"
	"errors"
	"fmt"
	"math"

	"cinetix/internal/shared/apperrors"
	"cinetix/internal/shared/constants"
	"cinetix/pkg/cache"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	UpdateEvent(ctx context.Context, userID uuid.UUID, id string, req UpdateEventRequest) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error

	// Seats
	ListSeats(ctx context.Context, eventID string) ([]Seat, error)
	GetSeat(ctx context.Context, id string) (*Seat, error)
	AddSeats(ctx context.Context, eventID string, specs []SeatSpec) ([]Seat, error)
	DeleteSeat(ctx context.Context, id string) error
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

// SetCacheService injects the optional read-through cache.
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateEvent(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*Event, error) {
	event := &Event{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		DateTime:    req.DateTime,
		BasePrice:   req.BasePrice,
		Status:      StatusDraft,
		ImageURL:    req.ImageURL,
		CreatedBy:   userID,
	}

	for _, spec := range req.Seats {
		tier := SeatTier(spec.Tier)
		if tier == "" {
			tier = TierBronze
		}
		event.Seats = append(event.Seats, Seat{
			SeatNumber: spec.SeatNumber,
			Row:        spec.Row,
			Tier:       tier,
		})
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.invalidateListCache(ctx)
	return event, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*Event, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Invalid("invalid event ID")
	}

	cacheKey := constants.BuildEventDetailKey(id)
	if s.cacheService != nil {
		var cached Event
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("event not found")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, event, constants.TTL_EVENT_DETAIL); err != nil {
			logger.GetDefault().Debug("failed to cache event detail", "error", err)
		}
	}

	return event, nil
}

func (s *service) ListEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	// Only unfiltered listings are cached; search results churn too much.
	cacheable := query.Search == "" && query.Venue == "" && query.DateFrom == "" && query.DateTo == ""
	cacheKey := constants.BuildEventsListKey(query.Page, query.Limit, query.Status)

	if cacheable && s.cacheService != nil {
		var cached PaginatedEvents
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	events, totalCount, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, events[i].ToResponse())
	}

	result := &PaginatedEvents{
		Events:     responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}

	if cacheable && s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, result, constants.TTL_EVENT_LIST); err != nil {
			logger.GetDefault().Debug("failed to cache event list", "error", err)
		}
	}

	return result, nil
}

func (s *service) UpdateEvent(ctx context.Context, userID uuid.UUID, id string, req UpdateEventRequest) (*Event, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Invalid("invalid event ID")
	}

	if _, err := s.repo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("event not found")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Venue != nil {
		updates["venue"] = *req.Venue
	}
	if req.DateTime != nil {
		updates["date_time"] = *req.DateTime
	}
	if req.BasePrice != nil {
		updates["base_price"] = *req.BasePrice
	}
	if req.Status != nil {
		status := EventStatus(*req.Status)
		if !status.IsValid() {
			return nil, apperrors.Invalid("invalid event status")
		}
		updates["status"] = status
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	updates["updated_by"] = userID

	if err := s.repo.Update(ctx, eventID, updates); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.invalidateEventCache(ctx, id)
	return s.repo.GetByID(ctx, eventID)
}

func (s *service) DeleteEvent(ctx context.Context, id string) error {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.Invalid("invalid event ID")
	}

	if _, err := s.repo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("event not found")
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.invalidateEventCache(ctx, id)
	return nil
}

func (s *service) ListSeats(ctx context.Context, eventID string) ([]Seat, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, apperrors.Invalid("invalid event ID")
	}
	return s.repo.GetSeatsByEventID(ctx, id)
}

func (s *service) GetSeat(ctx context.Context, id string) (*Seat, error) {
	seatID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Invalid("invalid seat ID")
	}

	seat, err := s.repo.GetSeatByID(ctx, seatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("seat not found")
		}
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}
	return seat, nil
}

func (s *service) AddSeats(ctx context.Context, eventID string, specs []SeatSpec) ([]Seat, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, apperrors.Invalid("invalid event ID")
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("event not found")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	seats := make([]Seat, 0, len(specs))
	for _, spec := range specs {
		tier := SeatTier(spec.Tier)
		if tier == "" {
			tier = TierBronze
		}
		seats = append(seats, Seat{
			EventID:    id,
			SeatNumber: spec.SeatNumber,
			Row:        spec.Row,
			Tier:       tier,
		})
	}

	if err := s.repo.CreateSeats(ctx, seats); err != nil {
		return nil, fmt.Errorf("failed to create seats: %w", err)
	}

	return seats, nil
}

func (s *service) DeleteSeat(ctx context.Context, id string) error {
	seatID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.Invalid("invalid seat ID")
	}

	if _, err := s.repo.GetSeatByID(ctx, seatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("seat not found")
		}
		return fmt.Errorf("failed to get seat: %w", err)
	}

	return s.repo.DeleteSeat(ctx, seatID)
}

func (s *service) invalidateEventCache(ctx context.Context, eventID string) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildEventDetailKey(eventID)); err != nil {
		logger.GetDefault().Debug("failed to invalidate event cache", "error", err)
	}
	s.invalidateListCache(ctx)
}

func (s *service) invalidateListCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.CACHE_KEY_EVENTS_LIST+"*"); err != nil {
		logger.GetDefault().Debug("failed to invalidate event list cache", "error", err)
	}
}
