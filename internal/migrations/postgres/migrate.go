package postgres

import (
	"context"
	"fmt"

	"sharedcal/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// Statements are applied in order inside one transaction.
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id          INTEGER PRIMARY KEY CHECK (id > 0),
		position    INTEGER NOT NULL,
		name        TEXT    NOT NULL,
		purpose     TEXT    NOT NULL,
		date        TEXT    NOT NULL,
		start_time  TEXT    NOT NULL,
		end_time    TEXT    NOT NULL,
		status      TEXT    CHECK (status IN ('BOOKED', 'CHECKED_IN', 'CHECKED_OUT'))
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_position_idx ON bookings (position)`,
	`CREATE INDEX IF NOT EXISTS bookings_date_start_idx ON bookings (date, start_time)`,
	`CREATE INDEX IF NOT EXISTS bookings_status_idx ON bookings (status)`,
}

func RunMigration(ctx context.Context, db *sqlx.DB, log *logger.Logger) (err error) {
	log.Info("Running Postgres migrations")

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range Statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	log.Info("All Postgres migrations applied", "statements", len(Statements))
	return nil
}
