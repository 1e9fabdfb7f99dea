package checkout

import (
	"context"
	"errors"
	"fmt"

	"cinetix/internal/orders"
	"cinetix/internal/shared/apperrors"
	"cinetix/internal/shared/config"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = apperrors.NotFound("payment not found")
	ErrOrderNotFound   = apperrors.NotFound("payment reference does not map to a known order")
	ErrPaymentPending  = apperrors.Conflict("payment has not been approved yet")
)

// OrderService is the slice of the orders module checkout needs.
type OrderService interface {
	GetForCheckout(ctx context.Context, userID, orderID uuid.UUID) (*orders.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// ReservationConfirmer promotes an order's seat holds to permanent once the
// order is paid.
type ReservationConfirmer interface {
	ConfirmForOrder(ctx context.Context, orderID uuid.UUID) error
}

// Notifier delivers fire-and-forget purchase notifications; optional.
type Notifier interface {
	NotifyOrderPaid(ctx context.Context, userID uuid.UUID, orderID string, total float64)
}

type Service interface {
	Initiate(ctx context.Context, userID string, req InitiateRequest) (*InitiateResponse, error)
	Reconcile(ctx context.Context, externalPaymentID string) (*ReconcileResult, error)
}

type service struct {
	repo      Repository
	provider  ProviderClient
	orders    OrderService
	confirmer ReservationConfirmer
	notifier  Notifier
	cfg       config.PaymentConfig
}

func NewService(repo Repository, provider ProviderClient, orderSvc OrderService, confirmer ReservationConfirmer, notifier Notifier, cfg config.PaymentConfig) Service {
	return &service{
		repo:      repo,
		provider:  provider,
		orders:    orderSvc,
		confirmer: confirmer,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *service) Initiate(ctx context.Context, userID string, req InitiateRequest) (*InitiateResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid user identity")
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apperrors.Invalid("invalid order ID")
	}

	order, err := s.orders.GetForCheckout(ctx, uid, orderID)
	if err != nil {
		return nil, err
	}

	externalRef := order.ID.String()
	session, err := s.provider.CreateSession(ctx, CreateSessionRequest{
		Amount:      order.Total,
		Currency:    s.cfg.Currency,
		Reference:   externalRef,
		RedirectURL: s.cfg.RedirectURL,
		WebhookURL:  s.cfg.WebhookURL,
	})
	if err != nil {
		return nil, err
	}

	payment := &Payment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		UserID:      uid,
		ExternalID:  session.PaymentID,
		ExternalRef: externalRef,
		Status:      PaymentCreated,
		Amount:      order.Total,
		Currency:    s.cfg.Currency,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}

	return &InitiateResponse{
		PaymentID:   payment.ID.String(),
		ExternalID:  payment.ExternalID,
		RedirectURL: session.RedirectURL,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
	}, nil
}

// Reconcile fetches the payment from the provider, resolves the order via the
// external reference, and settles an approved payment exactly once.
func (s *service) Reconcile(ctx context.Context, externalPaymentID string) (*ReconcileResult, error) {
	providerPayment, err := s.provider.GetPayment(ctx, externalPaymentID)
	if err != nil {
		return nil, err
	}

	orderID, err := uuid.Parse(providerPayment.Reference)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	payment, err := s.repo.GetByExternalID(ctx, externalPaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment.OrderID != orderID {
		return nil, ErrOrderNotFound
	}

	status := statusFromProvider(providerPayment.Status)
	if payment.Status != status {
		if err := s.repo.UpdateStatus(ctx, payment.ID, status); err != nil {
			return nil, fmt.Errorf("failed to record payment status: %w", err)
		}
	}

	result := &ReconcileResult{
		OrderID:       orderID.String(),
		PaymentStatus: status,
	}

	if status != PaymentApproved {
		return result, nil
	}

	transitioned, err := s.orders.MarkPaid(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		// A prior reconciliation already settled this payment.
		result.OrderPaid = true
		result.AlreadyProcessed = true
		return result, nil
	}

	if err := s.confirmer.ConfirmForOrder(ctx, orderID); err != nil {
		// The order is paid; seat confirmation retries via the next webhook
		// delivery or a support action, never by failing the reconcile.
		logger.GetDefault().Error("failed to confirm reservations for paid order",
			"order_id", orderID.String(), "error", err)
	}

	logger.GetDefault().LogOrderPaid(ctx, orderID.String(), payment.ExternalID, payment.Amount)

	if s.notifier != nil {
		s.notifier.NotifyOrderPaid(ctx, payment.UserID, orderID.String(), payment.Amount)
	}

	result.OrderPaid = true
	return result, nil
}
