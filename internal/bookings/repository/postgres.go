package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sharedcal/pkg/model"

	"github.com/jmoiron/sqlx"
)

type bookingRow struct {
	ID       int            `db:"id"`
	Position int            `db:"position"`
	Name     string         `db:"name"`
	Purpose  string         `db:"purpose"`
	Date     string         `db:"date"`
	Start    string         `db:"start_time"`
	End      string         `db:"end_time"`
	Status   sql.NullString `db:"status"`
}

type postgresBookingRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewPostgresBookingRepository(db *sqlx.DB, timeout time.Duration) BookingRepository {
	return &postgresBookingRepository{db: db, timeout: timeout}
}

func (r *postgresBookingRepository) Load(ctx context.Context) ([]model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, position, name, purpose, date, start_time, end_time, status
		FROM bookings
		ORDER BY position ASC
	`

	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}

	bookings := make([]model.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := parseStored(row.ID, row.Name, row.Purpose, row.Date, row.Start, row.End, row.Status.String)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// Save deletes and reinserts every row inside one transaction.
func (r *postgresBookingRepository) Save(ctx context.Context, bookings []model.Booking) (err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return fmt.Errorf("failed to clear bookings: %w", err)
	}

	if len(bookings) > 0 {
		rows := make([]bookingRow, 0, len(bookings))
		for i, b := range bookings {
			rows = append(rows, newBookingRow(b, i))
		}

		query := `
			INSERT INTO bookings (id, position, name, purpose, date, start_time, end_time, status)
			VALUES (:id, :position, :name, :purpose, :date, :start_time, :end_time, :status)
		`
		if _, err = tx.NamedExecContext(ctx, query, rows); err != nil {
			return fmt.Errorf("failed to insert bookings: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bookings: %w", err)
	}
	return nil
}

func (r *postgresBookingRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres unavailable: %w", err)
	}
	return nil
}

// Close is a no-op; the pool belongs to pkg/client.
func (r *postgresBookingRepository) Close(ctx context.Context) error {
	return nil
}

func newBookingRow(b model.Booking, position int) bookingRow {
	return bookingRow{
		ID:       b.ID,
		Position: position,
		Name:     b.Name,
		Purpose:  b.Purpose,
		Date:     b.Date.String(),
		Start:    b.Start.String(),
		End:      b.End.String(),
		Status:   sql.NullString{String: string(b.Status), Valid: b.Status != ""},
	}
}
