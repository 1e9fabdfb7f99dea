package reservations

import (
	"context"
	"time"

	"cinetix/pkg/logger"

	"github.com/google/uuid"
)

// OrderCanceller cancels pending orders whose seat holds have lapsed. Wired
// from the orders module at startup; optional.
type OrderCanceller interface {
	CancelForExpiredReservations(ctx context.Context, orderIDs []uuid.UUID) error
}

// Sweeper periodically voids lapsed holds. Expiry is already enforced lazily
// on every read, so the sweeper is an optimization that keeps the table and
// dependent pending orders tidy.
type Sweeper struct {
	service   Service
	canceller OrderCanceller
	interval  time.Duration
	done      chan struct{}
}

func NewSweeper(service Service, canceller OrderCanceller, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		service:   service,
		canceller: canceller,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (sw *Sweeper) Start(ctx context.Context) {
	logger.GetDefault().Info("starting reservation expiry sweeper", "interval", sw.interval.String())
	go sw.run(ctx)
}

// Stop stops the sweep loop.
func (sw *Sweeper) Stop() {
	close(sw.done)
	logger.GetDefault().Info("reservation expiry sweeper stopped")
}

func (sw *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.sweep(ctx)
		case <-sw.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	expired, err := sw.service.ExpireLapsed(ctx, time.Now())
	if err != nil {
		logger.GetDefault().Error("failed to sweep expired reservations", "error", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	logger.GetDefault().Info("swept expired reservations", "count", len(expired))

	if sw.canceller == nil {
		return
	}

	seen := make(map[uuid.UUID]struct{})
	var orderIDs []uuid.UUID
	for i := range expired {
		if expired[i].OrderID == nil {
			continue
		}
		if _, ok := seen[*expired[i].OrderID]; ok {
			continue
		}
		seen[*expired[i].OrderID] = struct{}{}
		orderIDs = append(orderIDs, *expired[i].OrderID)
	}
	if len(orderIDs) == 0 {
		return
	}

	if err := sw.canceller.CancelForExpiredReservations(ctx, orderIDs); err != nil {
		logger.GetDefault().Error("failed to cancel orders for expired reservations", "error", err)
	}
}
