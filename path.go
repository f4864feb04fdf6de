package journeys

import (
	"strings"

	"tidbyt.dev/journeys/model"
)

// A simple route from an origin to a terminus. Edges holds the runs
// taken, so len(Edges) == len(Stops)-1.
type Path struct {
	Departure model.Clock
	Stops     []*Stop
	Arrival   model.Clock
	Edges     []Edge
}

// Arrival minus departure, in minutes.
func (p Path) Duration() int {
	return p.Arrival.Sub(p.Departure)
}

// Fewer stops, or as many stops and an earlier arrival.
func (p Path) IsShorter(other Path) bool {
	if len(p.Stops) == len(other.Stops) {
		return p.IsForemost(other)
	}
	return len(p.Stops) < len(other.Stops)
}

// Shorter duration, or as long and an earlier arrival.
func (p Path) IsFaster(other Path) bool {
	if p.Duration() == other.Duration() {
		return p.IsForemost(other)
	}
	return p.Duration() < other.Duration()
}

// Strictly earlier arrival.
func (p Path) IsForemost(other Path) bool {
	return p.Arrival.Before(other.Arrival)
}

func (p Path) Origin() *Stop {
	return p.Stops[0]
}

func (p Path) Terminus() *Stop {
	return p.Stops[len(p.Stops)-1]
}

func (p Path) StopNames() []string {
	names := make([]string, len(p.Stops))
	for i, s := range p.Stops {
		names[i] = s.Name
	}
	return names
}

// Formats as "(08:00) A -> B -> C (08:25)".
func (p Path) String() string {
	return "(" + p.Departure.String() + ") " + strings.Join(p.StopNames(), " -> ") + " (" + p.Arrival.String() + ")"
}
