package parse

import (
	"fmt"

	"tidbyt.dev/journeys/model"
	"tidbyt.dev/journeys/storage"
)

// A scheduled passage of a run at a stop.
type passage struct {
	stop string
	time model.Clock
}

// Turns runs into hops and writes them. Hop sequence numbers are
// shared across all runs of a timetable, so that each stop's edges
// end up in run order once the network is built.
type hopEmitter struct {
	writer   storage.FeedWriter
	sequence uint32
	runs     int
}

// Writes one hop per pair of consecutive passages. A time earlier
// than the previous one is taken to be past midnight, and is moved to
// the following day.
func (e *hopEmitter) emit(run string, day model.DayType, direction model.Direction, passages []passage) error {
	if len(passages) < 2 {
		return nil
	}

	prev := passages[0]
	for _, p := range passages[1:] {
		t := p.time
		for t.Before(prev.time) {
			t.Day += 1
		}
		if p.stop == prev.stop {
			return fmt.Errorf("run %s stops at '%s' twice in a row", run, p.stop)
		}

		e.sequence += 1
		err := e.writer.WriteHop(&model.Hop{
			Run:       run,
			Sequence:  e.sequence,
			From:      prev.stop,
			To:        p.stop,
			Departure: prev.time,
			Arrival:   t,
			DayType:   day,
			Direction: direction,
		})
		if err != nil {
			return fmt.Errorf("writing hop %d of run %s: %w", e.sequence, run, err)
		}

		prev = passage{stop: p.stop, time: t}
	}

	e.runs += 1
	return nil
}
