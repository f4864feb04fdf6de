package model

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// A point in time on a service day, with minute resolution. Day is an
// offset in days, used by runs that cross midnight.
//
// Components are not normalized: arithmetic may leave Minute outside
// [0, 59]. Treat a Clock as an ordered, subtractable scalar.
type Clock struct {
	Day    int
	Hour   int
	Minute int
}

func NewClock(hour, minute int) Clock {
	return Clock{Hour: hour, Minute: minute}
}

// Builds a normalized Clock from an absolute minute count.
func ClockFromMinutes(minutes int) Clock {
	day := minutes / minutesPerDay
	rest := minutes % minutesPerDay
	if rest < 0 {
		day -= 1
		rest += minutesPerDay
	}
	return Clock{Day: day, Hour: rest / 60, Minute: rest % 60}
}

// Parses a timetable cell on the form "H:MM" or "HH:MM".
func ParseClock(s string) (Clock, error) {
	split := strings.Split(strings.TrimSpace(s), ":")
	if len(split) != 2 {
		return Clock{}, fmt.Errorf("found %d parts in '%s'", len(split), s)
	}

	hour, err := strconv.Atoi(split[0])
	if err != nil {
		return Clock{}, fmt.Errorf("non-integer hour in '%s'", s)
	}
	minute, err := strconv.Atoi(split[1])
	if err != nil {
		return Clock{}, fmt.Errorf("non-integer minute in '%s'", s)
	}

	if hour < 0 || hour > 47 {
		return Clock{}, fmt.Errorf("invalid hour in '%s'", s)
	}
	if minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid minute in '%s'", s)
	}

	return ClockFromMinutes(hour*60 + minute), nil
}

// Minutes since midnight of day zero.
func (c Clock) Minutes() int {
	return c.Day*minutesPerDay + c.Hour*60 + c.Minute
}

// Signed difference c - other, in minutes.
func (c Clock) Sub(other Clock) int {
	return (c.Day-other.Day)*minutesPerDay + (c.Hour-other.Hour)*60 + c.Minute - other.Minute
}

// Lexicographic comparison on (Day, Hour, Minute). Returns -1, 0 or 1.
func (c Clock) Compare(other Clock) int {
	switch {
	case c.Day != other.Day:
		return sign(c.Day - other.Day)
	case c.Hour != other.Hour:
		return sign(c.Hour - other.Hour)
	default:
		return sign(c.Minute - other.Minute)
	}
}

func (c Clock) Before(other Clock) bool {
	return c.Compare(other) < 0
}

func (c Clock) After(other Clock) bool {
	return c.Compare(other) > 0
}

// Same day, the clock advanced by a number of minutes. Rolls into the
// next day when needed.
func (c Clock) Add(minutes int) Clock {
	return ClockFromMinutes(c.Minutes() + minutes)
}

func (c Clock) String() string {
	if c.Day != 0 {
		return fmt.Sprintf("%02d:%02d%+dd", c.Hour, c.Minute, c.Day)
	}
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func sign(x int) int {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}
