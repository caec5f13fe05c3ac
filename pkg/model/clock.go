package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayout         = "2006-01-02"
	ClockLayout        = "15:04"
	ClockLayoutSeconds = "15:04:05"
)

// ClockPattern is the stored and accepted form of a Clock. Every field is
// two digits; seconds are optional.
var ClockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// Date is a calendar day without time zone, ordered chronologically.
type Date struct {
	t time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

// MustParseDate panics on malformed input. Intended for tests and constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON reads "" back as the zero Date, mirroring MarshalJSON.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock is a local time of day with second precision.
type Clock struct {
	seconds int
}

func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if !ClockPattern.MatchString(s) {
		return Clock{}, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
	}
	layout := ClockLayout
	if strings.Count(s, ":") == 2 {
		layout = ClockLayoutSeconds
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
	}
	return Clock{seconds: t.Hour()*3600 + t.Minute()*60 + t.Second()}, nil
}

func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	h, m, s := c.seconds/3600, (c.seconds%3600)/60, c.seconds%60
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

func (c Clock) Compare(o Clock) int {
	switch {
	case c.seconds < o.seconds:
		return -1
	case c.seconds > o.seconds:
		return 1
	}
	return 0
}

func (c Clock) Before(o Clock) bool { return c.seconds < o.seconds }

func (c Clock) After(o Clock) bool { return c.seconds > o.seconds }

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
