// Package migration upgrades bookings persisted by older releases, which
// may lack an id or a status.
package migration

import "sharedcal/pkg/model"

// Normalize assigns ids to records without one, continuing after the highest
// id present, and marks records without a status as booked. It reports
// whether anything changed so the caller knows to persist. Running it on
// already normalized input is a no-op.
func Normalize(bookings []model.Booking) ([]model.Booking, bool) {
	out := make([]model.Booking, len(bookings))
	copy(out, bookings)

	next := 1
	for _, b := range out {
		if b.ID >= next {
			next = b.ID + 1
		}
	}

	changed := false
	for i := range out {
		if out[i].ID <= 0 {
			out[i].ID = next
			next++
			changed = true
		}
		if out[i].Status == "" {
			out[i].Status = model.StatusBooked
			changed = true
		}
	}

	return out, changed
}
