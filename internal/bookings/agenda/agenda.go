// Package agenda answers read-only questions about a booking collection.
// Ordering is computed here at read time; stores keep insertion order.
package agenda

import (
	"slices"

	"sharedcal/pkg/model"
)

// Active returns the booking currently holding the shared account. If
// several are checked in, the earliest by date and start wins.
func Active(bookings []model.Booking) *model.Booking {
	var active *model.Booking
	for i := range bookings {
		b := bookings[i]
		if b.Status != model.StatusCheckedIn {
			continue
		}
		if active == nil || earlier(b, *active) {
			active = &b
		}
	}
	return active
}

// ByDate returns the bookings on date ordered by start time.
func ByDate(bookings []model.Booking, date model.Date) []model.Booking {
	day := make([]model.Booking, 0)
	for _, b := range bookings {
		if b.Date.Equal(date) {
			day = append(day, b)
		}
	}
	slices.SortStableFunc(day, func(a, b model.Booking) int {
		return a.Start.Compare(b.Start)
	})
	return day
}

// NextID allocates from the ids currently present, so deleting the highest
// booking makes its id available again.
func NextID(bookings []model.Booking) int {
	highest := 0
	for _, b := range bookings {
		highest = max(highest, b.ID)
	}
	return highest + 1
}

// Day builds the agenda view for date, flagging which actions each entry
// currently allows.
func Day(bookings []model.Booking, date model.Date) model.DayAgenda {
	active := Active(bookings)
	day := ByDate(bookings, date)

	entries := make([]model.AgendaEntry, 0, len(day))
	for _, b := range day {
		entries = append(entries, model.AgendaEntry{
			Booking:     b,
			CanCheckIn:  b.Status == model.StatusBooked && active == nil,
			CanCheckOut: b.Status == model.StatusCheckedIn,
			Waiting:     b.Status == model.StatusBooked && active != nil,
		})
	}

	return model.DayAgenda{
		Date:    date,
		Active:  active,
		Entries: entries,
	}
}

func earlier(a, b model.Booking) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c < 0
	}
	return a.Start.Before(b.Start)
}
