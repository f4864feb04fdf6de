package journeys

import (
	"errors"
	"fmt"

	"tidbyt.dev/journeys/model"
	"tidbyt.dev/journeys/storage"
)

var ErrUnknownStop = errors.New("unknown stop")

// One scheduled run between two stops. Target is shared with the
// network, never owned.
type Edge struct {
	Departure model.Clock
	Arrival   model.Clock
	Target    *Stop
}

// A stop in the network, with its outgoing edges for each day type in
// timetable order.
type Stop struct {
	Name         string
	Edges        []Edge
	WeekendEdges []Edge
}

// Outgoing edges for a day type.
func (s *Stop) EdgesFor(day model.DayType) []Edge {
	if day == model.DayTypeWeekend {
		return s.WeekendEdges
	}
	return s.Edges
}

func (s *Stop) String() string {
	return s.Name
}

// A set of uniquely named stops. Networks are read-only once built,
// and safe to query from several goroutines.
type Network struct {
	stops  []*Stop
	byName map[string]*Stop
}

func NewNetwork() *Network {
	return &Network{
		byName: map[string]*Stop{},
	}
}

// Builds a network from a stored timetable.
func NetworkFromReader(reader storage.FeedReader) (*Network, error) {
	n := NewNetwork()
	if err := n.AddTimetable(reader); err != nil {
		return nil, err
	}
	return n, nil
}

// Adds the stops and hops of a stored timetable. Stops already in the
// network are shared, so several lines can be joined into one network.
func (n *Network) AddTimetable(reader storage.FeedReader) error {
	stops, err := reader.Stops()
	if err != nil {
		return fmt.Errorf("reading stops: %w", err)
	}

	for _, s := range stops {
		if _, found := n.byName[s.Name]; found {
			continue
		}
		if _, err := n.AddStop(s.Name); err != nil {
			return err
		}
	}

	for _, day := range []model.DayType{model.DayTypeWeekday, model.DayTypeWeekend} {
		hops, err := reader.Hops(day)
		if err != nil {
			return fmt.Errorf("reading %s hops: %w", day, err)
		}
		for _, hop := range hops {
			err = n.AddEdge(hop.From, hop.To, hop.Departure, hop.Arrival, day)
			if err != nil {
				return fmt.Errorf("adding hop %d: %w", hop.Sequence, err)
			}
		}
	}

	return nil
}

// Adds a stop. Names must be unique.
func (n *Network) AddStop(name string) (*Stop, error) {
	if _, found := n.byName[name]; found {
		return nil, fmt.Errorf("repeated stop '%s'", name)
	}
	s := &Stop{Name: name}
	n.stops = append(n.stops, s)
	n.byName[name] = s
	return s, nil
}

// Appends an edge to the from stop's edges for the given day type.
func (n *Network) AddEdge(from, to string, departure, arrival model.Clock, day model.DayType) error {
	f, found := n.byName[from]
	if !found {
		return fmt.Errorf("%w: '%s'", ErrUnknownStop, from)
	}
	t, found := n.byName[to]
	if !found {
		return fmt.Errorf("%w: '%s'", ErrUnknownStop, to)
	}

	edge := Edge{Departure: departure, Arrival: arrival, Target: t}
	if day == model.DayTypeWeekend {
		f.WeekendEdges = append(f.WeekendEdges, edge)
	} else {
		f.Edges = append(f.Edges, edge)
	}
	return nil
}

func (n *Network) Stop(name string) (*Stop, error) {
	s, found := n.byName[name]
	if !found {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownStop, name)
	}
	return s, nil
}

// All stops, in the order they were added.
func (n *Network) Stops() []*Stop {
	stops := make([]*Stop, len(n.stops))
	copy(stops, n.stops)
	return stops
}

func (n *Network) Len() int {
	return len(n.stops)
}
