package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	// At most one live hold per seat. Lapsed HELD rows are flipped to
	// EXPIRED before a new hold is inserted, so the partial index only ever
	// sees genuinely competing reservations.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_live_seat
		ON reservations (seat_id)
		WHERE status IN ('HELD', 'CONFIRMED');
	`).Error
	if err != nil {
		return err
	}

	// Sweep and seat-map queries scan by status and expiry.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_status_expiry
		ON reservations (status, expires_at);
	`).Error
	if err != nil {
		return err
	}

	// One open order per buyer keeps implicit cart creation race-free.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_pending_per_user
		ON orders (user_id)
		WHERE status = 'PENDING';
	`).Error
	if err != nil {
		return err
	}

	return nil
}
