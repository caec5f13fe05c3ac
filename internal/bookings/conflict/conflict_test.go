package conflict

import (
	"fmt"
	"testing"

	"sharedcal/pkg/model"
)

func booking(date, start, end string) model.Booking {
	return model.Booking{
		Name:   "test",
		Date:   model.MustParseDate(date),
		Start:  model.MustParseClock(start),
		End:    model.MustParseClock(end),
		Status: model.StatusBooked,
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b model.Booking
		want bool
	}{
		{
			name: "partial overlap",
			a:    booking("2024-01-01", "09:00", "10:00"),
			b:    booking("2024-01-01", "09:30", "10:30"),
			want: true,
		},
		{
			name: "touching boundary after",
			a:    booking("2024-01-01", "09:00", "10:00"),
			b:    booking("2024-01-01", "10:00", "11:00"),
			want: false,
		},
		{
			name: "touching boundary before",
			a:    booking("2024-01-01", "10:00", "11:00"),
			b:    booking("2024-01-01", "09:00", "10:00"),
			want: false,
		},
		{
			name: "contained",
			a:    booking("2024-01-01", "08:00", "12:00"),
			b:    booking("2024-01-01", "09:00", "10:00"),
			want: true,
		},
		{
			name: "identical",
			a:    booking("2024-01-01", "09:00", "10:00"),
			b:    booking("2024-01-01", "09:00", "10:00"),
			want: true,
		},
		{
			name: "different date same window",
			a:    booking("2024-01-01", "09:00", "10:00"),
			b:    booking("2024-01-02", "09:00", "10:00"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlaps_Properties(t *testing.T) {
	clock := func(minutes int) string {
		return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
	}

	for aStart := 0; aStart < 24*60-30; aStart += 30 {
		for length := 30; aStart+length < 24*60; length += 90 {
			aEnd := aStart + length
			a := booking("2024-01-01", clock(aStart), clock(aEnd))

			// Any b that starts at or after a ends is free.
			b := booking("2024-01-01", clock(aEnd), clock(min(aEnd+30, 24*60-1)))
			if aEnd+30 <= 24*60-1 && Overlaps(a, b) {
				t.Fatalf("touching %v and %v reported as conflict", a, b)
			}

			// Any b sharing an interior minute conflicts.
			inner := booking("2024-01-01", clock(aStart+1), clock(aEnd-1))
			if length > 2 && !Overlaps(a, inner) {
				t.Fatalf("interior %v and %v not reported", a, inner)
			}

			other := booking("2024-01-02", clock(aStart), clock(aEnd))
			if Overlaps(a, other) {
				t.Fatalf("different dates reported as conflict")
			}
		}
	}
}

func TestFind_IgnoresStatus(t *testing.T) {
	checkedOut := booking("2024-01-01", "09:00", "10:00")
	checkedOut.ID = 4
	checkedOut.Status = model.StatusCheckedOut

	existing := []model.Booking{
		booking("2024-01-02", "09:00", "10:00"),
		checkedOut,
	}

	clash, ok := Find(booking("2024-01-01", "09:45", "11:00"), existing)
	if !ok {
		t.Fatal("expected conflict with checked-out booking")
	}
	if clash.ID != 4 {
		t.Errorf("expected clash with id 4, got %d", clash.ID)
	}

	if _, ok := Find(booking("2024-01-01", "10:00", "11:00"), existing); ok {
		t.Error("touching window should not conflict")
	}
}
