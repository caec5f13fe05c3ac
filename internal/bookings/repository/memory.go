package repository

import (
	"context"
	"sync"

	"sharedcal/pkg/model"
)

type memoryBookingRepository struct {
	mu       sync.RWMutex
	bookings []model.Booking
}

// NewMemoryBookingRepository keeps the collection in process, seeded with
// a copy of initial.
func NewMemoryBookingRepository(initial []model.Booking) BookingRepository {
	return &memoryBookingRepository{bookings: cloneBookings(initial)}
}

func (r *memoryBookingRepository) Load(ctx context.Context) ([]model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneBookings(r.bookings), nil
}

func (r *memoryBookingRepository) Save(ctx context.Context, bookings []model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = cloneBookings(bookings)
	return nil
}

func (r *memoryBookingRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *memoryBookingRepository) Close(ctx context.Context) error {
	return nil
}
