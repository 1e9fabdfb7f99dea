package analytics

import "time"

// SalesOverview is the admin dashboard headline block.
type SalesOverview struct {
	TotalRevenue    float64 `json:"total_revenue"`
	PaidOrders      int64   `json:"paid_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	CancelledOrders int64   `json:"cancelled_orders"`
	AvgOrderValue   float64 `json:"avg_order_value"`
	TotalCustomers  int64   `json:"total_customers"`

	GeneratedAt time.Time `json:"generated_at"`
}

// EventSales aggregates paid seat items per event.
type EventSales struct {
	EventID    string    `json:"event_id"`
	EventName  string    `json:"event_name"`
	SeatsSold  int64     `json:"seats_sold"`
	SeatsTotal int64     `json:"seats_total"`
	Occupancy  float64   `json:"occupancy_pct"`
	Revenue    float64   `json:"revenue"`
	DateTime   time.Time `json:"date_time"`
}

// DailySales is one day of paid order volume.
type DailySales struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// DashboardResponse bundles everything the admin dashboard renders.
type DashboardResponse struct {
	Overview   SalesOverview `json:"overview"`
	TopEvents  []EventSales  `json:"top_events"`
	DailySales []DailySales  `json:"daily_sales"`
}
