package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cinetix/internal/discounts"
	"cinetix/internal/events"
	"cinetix/internal/products"
	"cinetix/internal/reservations"
	"cinetix/internal/shared/apperrors"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound  = apperrors.NotFound("order not found")
	ErrNotOwner       = apperrors.Forbidden("order belongs to another user")
	ErrOrderNotOpen   = apperrors.Conflict("order is no longer open for changes")
	ErrSeatInOrder    = apperrors.Conflict("reservation is already part of an order")
	ErrEmptyCart      = apperrors.Invalid("order has no items")
	ErrItemNotFound   = apperrors.NotFound("order item not found")
	ErrProductRetired = apperrors.Invalid("product is not available")
)

// ReservationService is the slice of the reservation module the cart needs.
type ReservationService interface {
	GetActiveHold(ctx context.Context, userID, reservationID uuid.UUID) (*reservations.Reservation, error)
	AttachOrder(ctx context.Context, reservationID, orderID uuid.UUID) error
	ReleaseForOrder(ctx context.Context, reservationID uuid.UUID) error
}

// CatalogService resolves seats and events for line-item pricing.
type CatalogService interface {
	GetSeat(ctx context.Context, id string) (*events.Seat, error)
	GetEvent(ctx context.Context, id string) (*events.Event, error)
}

// ProductService resolves concession products for line items.
type ProductService interface {
	GetProduct(ctx context.Context, id string) (*products.Product, error)
}

// DiscountResolver validates discount codes against membership and time.
type DiscountResolver interface {
	Resolve(ctx context.Context, code string, membershipTierID *uuid.UUID, now time.Time) (*discounts.Discount, error)
}

type Service interface {
	AddItem(ctx context.Context, userID string, req AddItemRequest) (*Order, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*Order, error)
	GetCart(ctx context.Context, userID string) (*Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*Order, error)
	ListMyOrders(ctx context.Context, userID string) ([]OrderResponse, error)
	ApplyDiscount(ctx context.Context, userID, membershipID string, req ApplyDiscountRequest) (*Order, error)
	RemoveDiscount(ctx context.Context, userID string) (*Order, error)
	Recompute(ctx context.Context, orderID uuid.UUID) (float64, error)

	// Checkout and sweeper entry points.
	GetForCheckout(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (bool, error)
	CancelForExpiredReservations(ctx context.Context, orderIDs []uuid.UUID) error
}

type service struct {
	repo         Repository
	reservations ReservationService
	catalog      CatalogService
	products     ProductService
	discounts    DiscountResolver
}

func NewService(repo Repository, reservationSvc ReservationService, catalog CatalogService, productSvc ProductService, discountSvc DiscountResolver) Service {
	return &service{
		repo:         repo,
		reservations: reservationSvc,
		catalog:      catalog,
		products:     productSvc,
		discounts:    discountSvc,
	}
}

func (s *service) AddItem(ctx context.Context, userID string, req AddItemRequest) (*Order, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid user identity")
	}

	order, err := s.getOrCreatePending(ctx, uid)
	if err != nil {
		return nil, err
	}

	item := &OrderItem{
		ID:       uuid.New(),
		OrderID:  order.ID,
		Kind:     req.Kind,
		Quantity: 1,
	}

	switch req.Kind {
	case ItemSeat:
		reservationID, err := uuid.Parse(req.ReservationID)
		if err != nil {
			return nil, apperrors.Invalid("invalid reservation ID")
		}

		reservation, err := s.reservations.GetActiveHold(ctx, uid, reservationID)
		if err != nil {
			return nil, err
		}
		if reservation.OrderID != nil {
			return nil, ErrSeatInOrder
		}

		seat, err := s.catalog.GetSeat(ctx, reservation.SeatID.String())
		if err != nil {
			return nil, err
		}
		event, err := s.catalog.GetEvent(ctx, seat.EventID.String())
		if err != nil {
			return nil, err
		}

		price := seat.Price(event.BasePrice)
		item.ReservationID = &reservationID
		item.Description = fmt.Sprintf("%s - seat %s%s (%s)", event.Name, seat.Row, seat.SeatNumber, seat.Tier)
		item.UnitPrice = price
		item.LineTotal = price

	case ItemProduct:
		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			return nil, apperrors.Invalid("invalid product ID")
		}

		product, err := s.products.GetProduct(ctx, productID.String())
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, ErrProductRetired
		}

		quantity := req.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		item.ProductID = &productID
		item.Description = product.Name
		item.UnitPrice = product.Price
		item.Quantity = quantity
		item.LineTotal = product.Price * float64(quantity)

	default:
		return nil, apperrors.Invalid("unknown item kind")
	}

	if err := s.repo.AddItem(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSeatInOrder
		}
		return nil, fmt.Errorf("failed to add order item: %w", err)
	}

	if item.ReservationID != nil {
		if err := s.reservations.AttachOrder(ctx, *item.ReservationID, order.ID); err != nil {
			return nil, fmt.Errorf("failed to attach reservation to order: %w", err)
		}
	}

	if _, err := s.Recompute(ctx, order.ID); err != nil {
		return nil, err
	}
	return s.getByID(ctx, order.ID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID string) (*Order, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid user identity")
	}
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, apperrors.Invalid("invalid order item ID")
	}

	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get order item: %w", err)
	}

	order, err := s.getByID(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != uid {
		return nil, ErrNotOwner
	}
	if order.Status != StatusPending {
		return nil, ErrOrderNotOpen
	}

	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete order item: %w", err)
	}

	if item.ReservationID != nil {
		if err := s.reservations.ReleaseForOrder(ctx, *item.ReservationID); err != nil {
			logger.GetDefault().Warn("failed to release reservation for removed item",
				"reservation_id", item.ReservationID.String(), "error", err)
		}
	}

	// Removing the last item cancels the order.
	if len(order.Items) <= 1 {
		if _, err := s.repo.UpdateStatusIf(ctx, order.ID, StatusPending, StatusCancelled); err != nil {
			return nil, fmt.Errorf("failed to cancel emptied order: %w", err)
		}
		return s.getByID(ctx, order.ID)
	}

	if _, err := s.Recompute(ctx, order.ID); err != nil {
		return nil, err
	}
	return s.getByID(ctx, order.ID)
}

func (s *service) GetCart(ctx context.Context, userID string) (*Order, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid user identity")
	}

	order, err := s.repo.GetPendingByUser(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no open order")
		}
		return nil, fmt.Errorf("failed to get pending order: %w", err)
	}
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID string) (*Order, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid user identity")
	}
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, apperrors.Invalid("invalid order ID")
	}

	order, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != uid {
		return nil, ErrNotOwner
	}
	return order, nil
}

func (s *service) ListMyOrders(ctx context.Context, userID string) ([]OrderResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid user identity")
	}

	orders, err := s.repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, orders[i].ToResponse())
	}
	return responses, nil
}

func (s *service) ApplyDiscount(ctx context.Context, userID, membershipID string, req ApplyDiscountRequest) (*Order, error) {
	order, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var tierID *uuid.UUID
	if membershipID != "" {
		if parsed, err := uuid.Parse(membershipID); err == nil {
			tierID = &parsed
		}
	}

	discount, err := s.discounts.Resolve(ctx, req.Code, tierID, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePricing(ctx, order.ID, map[string]interface{}{
		"discount_code":    discount.Code,
		"discount_percent": discount.Percentage,
	}); err != nil {
		return nil, fmt.Errorf("failed to apply discount: %w", err)
	}

	if _, err := s.Recompute(ctx, order.ID); err != nil {
		return nil, err
	}
	return s.getByID(ctx, order.ID)
}

func (s *service) RemoveDiscount(ctx context.Context, userID string) (*Order, error) {
	order, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePricing(ctx, order.ID, map[string]interface{}{
		"discount_code":    nil,
		"discount_percent": 0.0,
	}); err != nil {
		return nil, fmt.Errorf("failed to remove discount: %w", err)
	}

	if _, err := s.Recompute(ctx, order.ID); err != nil {
		return nil, err
	}
	return s.getByID(ctx, order.ID)
}

// Recompute derives the order totals from its items and discount. It is
// idempotent: recomputing without an intervening mutation yields the same
// total.
func (s *service) Recompute(ctx context.Context, orderID uuid.UUID) (float64, error) {
	order, err := s.getByID(ctx, orderID)
	if err != nil {
		return 0, err
	}

	var subtotal float64
	for i := range order.Items {
		subtotal += order.Items[i].LineTotal
	}

	total := subtotal * (1 - order.DiscountPercent/100)
	total = math.Round(total*100) / 100

	if err := s.repo.UpdatePricing(ctx, orderID, map[string]interface{}{
		"subtotal": subtotal,
		"total":    total,
	}); err != nil {
		return 0, fmt.Errorf("failed to store recomputed totals: %w", err)
	}
	return total, nil
}

func (s *service) GetForCheckout(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	order, err := s.getByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOwner
	}
	if order.Status != StatusPending {
		return nil, ErrOrderNotOpen
	}
	if len(order.Items) == 0 {
		return nil, ErrEmptyCart
	}
	return order, nil
}

// MarkPaid transitions PENDING to PAID. Returns false without error when the
// order is already PAID, which makes payment reconciliation idempotent.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID) (bool, error) {
	transitioned, err := s.repo.UpdateStatusIf(ctx, orderID, StatusPending, StatusPaid)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	if transitioned {
		return true, nil
	}

	order, err := s.getByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order.Status == StatusPaid {
		return false, nil
	}
	return false, ErrOrderNotOpen
}

func (s *service) CancelForExpiredReservations(ctx context.Context, orderIDs []uuid.UUID) error {
	cancelled, err := s.repo.CancelPending(ctx, orderIDs)
	if err != nil {
		return fmt.Errorf("failed to cancel orders: %w", err)
	}
	if cancelled == 0 {
		return nil
	}

	logger.GetDefault().Info("cancelled orders with lapsed seat holds", "count", cancelled)

	// Release any remaining live holds on the cancelled orders.
	for _, orderID := range orderIDs {
		order, err := s.getByID(ctx, orderID)
		if err != nil {
			continue
		}
		if order.Status != StatusCancelled {
			continue
		}
		for i := range order.Items {
			if order.Items[i].ReservationID == nil {
				continue
			}
			if err := s.reservations.ReleaseForOrder(ctx, *order.Items[i].ReservationID); err != nil {
				logger.GetDefault().Debug("failed to release hold on cancelled order",
					"reservation_id", order.Items[i].ReservationID.String(), "error", err)
			}
		}
	}
	return nil
}

func (s *service) getOrCreatePending(ctx context.Context, userID uuid.UUID) (*Order, error) {
	order, err := s.repo.GetPendingByUser(ctx, userID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get pending order: %w", err)
	}

	order = &Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: StatusPending,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		// A concurrent first-add may have created the pending order between
		// the read and the insert; the partial unique index rejects the
		// duplicate, so pick up the winner's cart.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			order, err = s.repo.GetPendingByUser(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to get pending order: %w", err)
			}
			return order, nil
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (s *service) getByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}
