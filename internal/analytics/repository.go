package analytics

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repository interface {
	GetSalesOverview(ctx context.Context) (*SalesOverview, error)
	GetEventSales(ctx context.Context, limit int) ([]EventSales, error)
	GetDailySales(ctx context.Context, days int) ([]DailySales, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSalesOverview(ctx context.Context) (*SalesOverview, error) {
	var overview SalesOverview

	row := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(total) FILTER (WHERE status = 'PAID'), 0)       AS total_revenue,
			COUNT(*) FILTER (WHERE status = 'PAID')                      AS paid_orders,
			COUNT(*) FILTER (WHERE status = 'PENDING')                   AS pending_orders,
			COUNT(*) FILTER (WHERE status = 'CANCELLED')                 AS cancelled_orders,
			COALESCE(AVG(total) FILTER (WHERE status = 'PAID'), 0)       AS avg_order_value,
			COUNT(DISTINCT user_id) FILTER (WHERE status = 'PAID')       AS total_customers
		FROM orders
	`).Row()

	err := row.Scan(
		&overview.TotalRevenue,
		&overview.PaidOrders,
		&overview.PendingOrders,
		&overview.CancelledOrders,
		&overview.AvgOrderValue,
		&overview.TotalCustomers,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales overview: %w", err)
	}

	return &overview, nil
}

func (r *repository) GetEventSales(ctx context.Context, limit int) ([]EventSales, error) {
	var results []EventSales

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			e.id::text                                        AS event_id,
			e.name                                            AS event_name,
			COUNT(res.id) FILTER (WHERE res.status = 'CONFIRMED') AS seats_sold,
			COUNT(DISTINCT s.id)                              AS seats_total,
			CASE WHEN COUNT(DISTINCT s.id) = 0 THEN 0
			     ELSE ROUND(100.0 * COUNT(res.id) FILTER (WHERE res.status = 'CONFIRMED')
			          / COUNT(DISTINCT s.id), 1)
			END                                               AS occupancy,
			COALESCE(SUM(oi.line_total) FILTER (WHERE o.status = 'PAID'), 0) AS revenue,
			e.date_time                                       AS date_time
		FROM events e
		LEFT JOIN seats s ON s.event_id = e.id
		LEFT JOIN reservations res ON res.seat_id = s.id
		LEFT JOIN order_items oi ON oi.reservation_id = res.id
		LEFT JOIN orders o ON o.id = oi.order_id
		GROUP BY e.id, e.name, e.date_time
		ORDER BY revenue DESC
		LIMIT ?
	`, limit).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get event sales: %w", err)
	}

	return results, nil
}

func (r *repository) GetDailySales(ctx context.Context, days int) ([]DailySales, error) {
	var results []DailySales

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			TO_CHAR(paid_at, 'YYYY-MM-DD') AS date,
			COUNT(*)                       AS orders,
			COALESCE(SUM(total), 0)        AS revenue
		FROM orders
		WHERE status = 'PAID'
		  AND paid_at >= NOW() - (? * INTERVAL '1 day')
		GROUP BY TO_CHAR(paid_at, 'YYYY-MM-DD')
		ORDER BY date ASC
	`, days).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily sales: %w", err)
	}

	return results, nil
}
