package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	bookingserrors "sharedcal/internal/bookings/errors"
	"sharedcal/pkg/model"
)

type fileBookingRepository struct {
	path string
}

// NewFileBookingRepository stores the collection as a JSON array at path.
func NewFileBookingRepository(path string) BookingRepository {
	return &fileBookingRepository{path: path}
}

func (r *fileBookingRepository) Load(ctx context.Context) ([]model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Booking{}, nil
		}
		return nil, fmt.Errorf("failed to read bookings file: %w", err)
	}

	var bookings []model.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", bookingserrors.ErrMalformedStore, r.path, err)
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}

	return bookings, nil
}

// Save writes to a temporary file next to the target and renames it into
// place, so readers never observe a half written document.
func (r *fileBookingRepository) Save(ctx context.Context, bookings []model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bookings); err != nil {
		return fmt.Errorf("failed to encode bookings: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write bookings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync bookings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace bookings file: %w", err)
	}
	return nil
}

// Ping checks that the directory holding the file is reachable.
func (r *fileBookingRepository) Ping(ctx context.Context) error {
	info, err := os.Stat(filepath.Dir(r.path))
	if err != nil {
		return fmt.Errorf("bookings directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("bookings directory unavailable: %s is not a directory", filepath.Dir(r.path))
	}
	return nil
}

func (r *fileBookingRepository) Close(ctx context.Context) error {
	return nil
}
