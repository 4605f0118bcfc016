package database

import (
	"context"
	"database/sql"
)

// schema creates the booking tables.  The unique key on
// (showtime_id, seat_code) in seat_locks is what makes lazy row
// materialization safe under concurrent first locks, so it lives here
// next to the connection code rather than in an external migration.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS seat_layouts (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		` + "`rows`" + ` INT UNSIGNED NOT NULL,
		seats_per_row INT UNSIGNED NOT NULL,
		grid JSON NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS screens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		seat_layout_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		KEY idx_screens_layout (seat_layout_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		screen_id BIGINT UNSIGNED NOT NULL,
		starts_at DATETIME NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		PRIMARY KEY (id),
		KEY idx_showtimes_screen (screen_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS seat_locks (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		showtime_id BIGINT UNSIGNED NOT NULL,
		seat_code VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'AVAILABLE',
		locked_by BIGINT UNSIGNED NULL,
		lock_expires_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_seat_locks_showtime_seat (showtime_id, seat_code)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		showtime_id BIGINT UNSIGNED NOT NULL,
		seat_code VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NULL,
		PRIMARY KEY (id),
		KEY idx_reservations_user (user_id),
		KEY idx_reservations_seat (showtime_id, seat_code, status),
		KEY idx_reservations_expiry (status, expires_at)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		reservation_id BIGINT UNSIGNED NOT NULL,
		showtime_id BIGINT UNSIGNED NOT NULL,
		seat_code VARCHAR(16) NOT NULL,
		pricing_snapshot JSON NULL,
		final_amount_cents BIGINT NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_orders_reservation (reservation_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS payment_attempts (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		order_id BIGINT UNSIGNED NOT NULL,
		amount_attempted_cents BIGINT NOT NULL,
		final_amount_cents BIGINT NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
		failure_reason VARCHAR(255) NULL,
		provider_payment_id VARCHAR(64) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_payment_attempts_order (order_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS refund_requests (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		reservation_id BIGINT UNSIGNED NOT NULL,
		payment_attempt_id BIGINT UNSIGNED NOT NULL,
		amount_cents BIGINT NOT NULL,
		reason VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
		rejection_reason VARCHAR(255) NULL,
		provider_refund_id VARCHAR(64) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_refund_requests_reservation (reservation_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS price_modifiers (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		modifier_type VARCHAR(16) NOT NULL,
		amount DOUBLE NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		PRIMARY KEY (id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		actor_id BIGINT UNSIGNED NULL,
		actor_type VARCHAR(32) NOT NULL,
		action VARCHAR(64) NOT NULL,
		target_type VARCHAR(32) NOT NULL,
		target_id BIGINT UNSIGNED NOT NULL,
		payload JSON NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_audit_log_target (target_type, target_id)
	) ENGINE=InnoDB`,
}

// EnsureSchema creates any missing booking tables.  Statements are
// IF NOT EXISTS so repeated startups are harmless.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
