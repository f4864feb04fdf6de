package journeys

import (
	"tidbyt.dev/journeys/model"
)

// Copy of the stop keeping only edges of the day type departing at or
// after cutoff. Targets still point into the original network.
func (s *Stop) Filter(cutoff model.Clock, day model.DayType) *Stop {
	edges := []Edge{}
	for _, e := range s.EdgesFor(day) {
		if !e.Departure.Before(cutoff) {
			edges = append(edges, e)
		}
	}

	filtered := &Stop{Name: s.Name}
	if day == model.DayTypeWeekend {
		filtered.WeekendEdges = edges
	} else {
		filtered.Edges = edges
	}
	return filtered
}

// Applies Stop.Filter to every stop. The result keeps all stop names
// and order; the receiver is left untouched.
func (n *Network) Filter(cutoff model.Clock, day model.DayType) *Network {
	filtered := NewNetwork()
	for _, s := range n.stops {
		fs := s.Filter(cutoff, day)
		filtered.stops = append(filtered.stops, fs)
		filtered.byName[fs.Name] = fs
	}
	return filtered
}
