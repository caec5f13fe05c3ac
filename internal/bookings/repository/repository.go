package repository

import (
	"context"
	"fmt"

	"sharedcal/pkg/config"
	"sharedcal/pkg/model"
)

// BookingRepository persists the whole booking collection as one unit.
// Load returns an empty slice when nothing has been saved yet.
type BookingRepository interface {
	Load(ctx context.Context) ([]model.Booking, error)
	Save(ctx context.Context, bookings []model.Booking) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewFromConfig builds the repository selected by cfg.StoreBackend. Database
// backed stores expect the matching client to be connected already.
func NewFromConfig(cfg *config.Config) (BookingRepository, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendFile:
		return NewFileBookingRepository(cfg.BookingsFile), nil
	case config.StoreBackendMemory:
		return NewMemoryBookingRepository(nil), nil
	case config.StoreBackendMongo:
		if cfg.Client.Mongo == nil {
			return nil, fmt.Errorf("mongo store selected but no mongo client is connected")
		}
		return NewMongoBookingRepository(cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.StoreTimeout), nil
	case config.StoreBackendPostgres:
		if cfg.Client.Postgres == nil {
			return nil, fmt.Errorf("postgres store selected but no postgres client is connected")
		}
		return NewPostgresBookingRepository(cfg.Client.Postgres, cfg.StoreTimeout), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

func cloneBookings(bookings []model.Booking) []model.Booking {
	out := make([]model.Booking, len(bookings))
	copy(out, bookings)
	return out
}
