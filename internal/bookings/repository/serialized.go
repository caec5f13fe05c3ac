package repository

import (
	"context"
	"fmt"
	"sync"

	bookingserrors "sharedcal/internal/bookings/errors"
	"sharedcal/internal/bookings/migration"
	"sharedcal/pkg/logger"
	"sharedcal/pkg/model"
)

// MutateFunc receives a private copy of the collection and returns the
// collection to persist. Returning an error aborts without saving.
type MutateFunc func(bookings []model.Booking) ([]model.Booking, error)

// Serialized runs every read-modify-write cycle against repo under one
// mutex. Persisted data is normalized on each load and written back when
// normalization changed it.
type Serialized struct {
	mu   sync.Mutex
	repo BookingRepository
	log  *logger.Logger
}

func NewSerialized(repo BookingRepository, log *logger.Logger) *Serialized {
	return &Serialized{repo: repo, log: log.With("component", "booking_store")}
}

// Snapshot returns a consistent copy of the normalized collection.
func (s *Serialized) Snapshot(ctx context.Context) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked(ctx)
}

// Update loads, normalizes, applies fn and saves the result.
func (s *Serialized) Update(ctx context.Context, fn MutateFunc) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	next, err := fn(cloneBookings(current))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save bookings: %w", err)
	}
	return cloneBookings(next), nil
}

func (s *Serialized) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Serialized) Close(ctx context.Context) error {
	return s.repo.Close(ctx)
}

func (s *Serialized) loadLocked(ctx context.Context) ([]model.Booking, error) {
	raw, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	if err := checkLoaded(raw); err != nil {
		return nil, err
	}

	bookings, changed := migration.Normalize(raw)
	if changed {
		if err := s.repo.Save(ctx, bookings); err != nil {
			return nil, fmt.Errorf("failed to save normalized bookings: %w", err)
		}
		s.log.Info("Normalized persisted bookings", "count", len(bookings))
	}
	return bookings, nil
}

// checkLoaded rejects records normalization cannot repair. It runs before
// anything is written back so a bad store is left as found.
func checkLoaded(bookings []model.Booking) error {
	for i, b := range bookings {
		if b.Date.IsZero() {
			return fmt.Errorf("%w: record %d (id %d) has no date", bookingserrors.ErrMalformedStore, i, b.ID)
		}
		if b.Status != "" && !b.Status.Valid() {
			return fmt.Errorf("%w: record %d (id %d) has unknown status %q", bookingserrors.ErrMalformedStore, i, b.ID, b.Status)
		}
	}
	return nil
}
