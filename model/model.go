package model

import (
	"fmt"
	"strings"
)

// Holds all external facing types and constants.

type DayType int8

const (
	DayTypeWeekday DayType = iota
	DayTypeWeekend
)

func (d DayType) String() string {
	switch d {
	case DayTypeWeekday:
		return "weekday"
	case DayTypeWeekend:
		return "weekend"
	}
	return fmt.Sprintf("DayType(%d)", int8(d))
}

// Parses "weekday" or "weekend" (case insensitive).
func ParseDayType(s string) (DayType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekday", "":
		return DayTypeWeekday, nil
	case "weekend":
		return DayTypeWeekend, nil
	}
	return DayTypeWeekday, fmt.Errorf("unknown day type '%s'", s)
}

type Direction int8

const (
	DirectionOutbound Direction = iota
	DirectionReturn
)

func (d Direction) String() string {
	if d == DirectionReturn {
		return "return"
	}
	return "outbound"
}

// A named stop on a timetable. Position is its index in the
// timetable's stop list.
type Stop struct {
	Name     string
	Position int
}

// One scheduled vehicle movement between two consecutive stops of a
// run. Sequence orders hops across the whole timetable, and is what
// keeps edge iteration order stable once a network is built.
type Hop struct {
	Run       string
	Sequence  uint32
	From      string
	To        string
	Departure Clock
	Arrival   Clock
	DayType   DayType
	Direction Direction
}
