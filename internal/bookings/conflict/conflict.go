package conflict

import "sharedcal/pkg/model"

// Overlaps reports whether a and b share any instant of the same day.
// Intervals are half-open, so a booking ending at 10:00 does not clash
// with one starting at 10:00.
func Overlaps(a, b model.Booking) bool {
	if !a.Date.Equal(b.Date) {
		return false
	}
	return b.Start.Before(a.End) && b.End.After(a.Start)
}

// Find returns the first existing booking that clashes with candidate.
// Status is ignored: checked-out bookings still hold their slot.
func Find(candidate model.Booking, existing []model.Booking) (model.Booking, bool) {
	for _, b := range existing {
		if Overlaps(b, candidate) {
			return b, true
		}
	}
	return model.Booking{}, false
}
