package model

import (
	"time"
)

type Status string

const (
	StatusBooked     Status = "BOOKED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusCheckedIn, StatusCheckedOut:
		return true
	}
	return false
}

// Booking is a reservation of the shared account. An ID of zero or an
// empty Status mean the field was absent in the persisted document.
type Booking struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
	Date    Date   `json:"date"`
	Start   Clock  `json:"start"`
	End     Clock  `json:"end"`
	Status  Status `json:"status"`
}

// BookingRequest is the add action input. Name wins when set; otherwise the
// holder is Person, or OtherName when Person is the roster's "other" label.
type BookingRequest struct {
	Person    string `json:"person,omitempty"`
	OtherName string `json:"other_name,omitempty"`
	Name      string `json:"name" validate:"required,max=100"`
	Purpose   string `json:"purpose" validate:"max=500"`
	Date      string `json:"date" validate:"required,isodate"`
	Start     string `json:"start" validate:"required,clock"`
	End       string `json:"end" validate:"required,clock"`
}

type ActionResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Booking *Booking `json:"data,omitempty"`
}

type AgendaEntry struct {
	Booking
	CanCheckIn  bool `json:"can_check_in"`
	CanCheckOut bool `json:"can_check_out"`
	Waiting     bool `json:"waiting"`
}

type DayAgenda struct {
	Date    Date          `json:"date"`
	Active  *Booking      `json:"active"`
	Entries []AgendaEntry `json:"entries"`
}

type Team struct {
	Members    []string `json:"members"`
	OtherLabel string   `json:"other_label"`
}

type BookingEvent struct {
	Type       string    `json:"type"`
	Booking    Booking   `json:"booking"`
	OccurredAt time.Time `json:"occurred_at"`
}
