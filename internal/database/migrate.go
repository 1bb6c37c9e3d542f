package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema contains the CREATE TABLE statements executed at startup. Each
// statement is idempotent so restarting the server against an existing
// database is safe.
//
// bookings.is_active is a stored generated column that is 1 for
// PENDING/CONFIRMED rows and NULL for CANCELLED ones. MySQL unique indexes
// ignore NULL components, so uniq_active_booking enforces at most one active
// booking per (user_id, event_id) while allowing any number of cancelled
// ones. This is the storage-level backstop behind the in-transaction
// duplicate check performed by the booking service.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email         VARCHAR(255)    NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		role          ENUM('USER','ADMIN') NOT NULL DEFAULT 'USER',
		is_active     TINYINT(1)      NOT NULL DEFAULT 1,
		created_at    TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_refresh_token_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id)
			ON UPDATE CASCADE ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS events (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title           VARCHAR(255)    NOT NULL,
		description     TEXT            NOT NULL,
		date_time       DATETIME        NOT NULL,
		location        VARCHAR(255)    NOT NULL,
		total_seats     INT UNSIGNED    NOT NULL,
		available_seats INT UNSIGNED    NOT NULL,
		price_cents     BIGINT UNSIGNED NOT NULL DEFAULT 0,
		is_active       TINYINT(1)      NOT NULL DEFAULT 1,
		created_at      TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_events_date (date_time),
		KEY idx_events_location (location),
		CONSTRAINT chk_events_seats CHECK (available_seats <= total_seats)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id                 BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		reference          CHAR(36)        NOT NULL,
		user_id            BIGINT UNSIGNED NOT NULL,
		event_id           BIGINT UNSIGNED NOT NULL,
		number_of_seats    INT UNSIGNED    NOT NULL,
		total_amount_cents BIGINT UNSIGNED NOT NULL,
		status             ENUM('PENDING','CONFIRMED','CANCELLED') NOT NULL DEFAULT 'CONFIRMED',
		booking_date       DATETIME        NOT NULL,
		cancelled_at       DATETIME        NULL,
		created_at         TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at         TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		is_active          TINYINT(1) AS (IF(status IN ('PENDING','CONFIRMED'), 1, NULL)) STORED,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_booking_reference (reference),
		UNIQUE KEY uniq_active_booking (user_id, event_id, is_active),
		KEY idx_bookings_event (event_id),
		KEY idx_bookings_user (user_id),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id)
			ON UPDATE CASCADE ON DELETE CASCADE,
		CONSTRAINT fk_bookings_event FOREIGN KEY (event_id) REFERENCES events (id)
			ON UPDATE CASCADE ON DELETE CASCADE,
		CONSTRAINT chk_bookings_seats CHECK (number_of_seats BETWEEN 1 AND 10)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate runs the schema statements in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
