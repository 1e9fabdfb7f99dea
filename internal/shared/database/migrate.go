package database

import (
	"cinetix/internal/checkout"
	"cinetix/internal/discounts"
	"cinetix/internal/events"
	"cinetix/internal/memberships"
	"cinetix/internal/notifications"
	"cinetix/internal/orders"
	"cinetix/internal/products"
	"cinetix/internal/reservations"
	"cinetix/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&memberships.Tier{},
		&users.User{},
		&events.Event{},
		&events.Seat{},
		&reservations.Reservation{},
		&orders.Order{},
		&orders.OrderItem{},
		&products.Product{},
		&discounts.Discount{},
		&checkout.Payment{},
		&notifications.Subscription{},
	)
}
