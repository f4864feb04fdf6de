package parse

import (
	"fmt"
	"io"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"tidbyt.dev/journeys/model"
	"tidbyt.dev/journeys/storage"
)

type StopTimeCSV struct {
	RunID        string `csv:"run_id"`
	StopName     string `csv:"stop_name"`
	StopSequence uint32 `csv:"stop_sequence"`
	Time         string `csv:"time"`
	DayType      string `csv:"day_type"`
	Direction    string `csv:"direction"`
}

type csvRun struct {
	id        string
	day       model.DayType
	direction model.Direction
	passages  []passage
	sequences []uint32
}

// Parses a timetable given as stop times, one row per run and stop.
//
// Stops are positioned in order of first appearance, and runs are
// emitted in order of first appearance. Within a run, rows are
// ordered by stop_sequence.
func ParseStopTimes(writer storage.FeedWriter, data io.Reader) (*storage.TimetableMetadata, error) {
	stops := []string{}
	stopSeen := map[string]bool{}
	runs := []*csvRun{}
	runByID := map[string]*csvRun{}

	i := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(st *StopTimeCSV) error {
		i += 1
		if st.RunID == "" {
			return fmt.Errorf("missing run_id (row %d)", i+1)
		}
		name := FormatName(st.StopName)
		if name == "" {
			return fmt.Errorf("missing stop_name (row %d)", i+1)
		}

		t, err := model.ParseClock(st.Time)
		if err != nil {
			return errors.Wrapf(err, "parsing time (row %d)", i+1)
		}

		day, err := model.ParseDayType(st.DayType)
		if err != nil {
			return errors.Wrapf(err, "parsing day_type (row %d)", i+1)
		}

		direction := model.DirectionOutbound
		switch st.Direction {
		case "", "outbound", "0":
		case "return", "1":
			direction = model.DirectionReturn
		default:
			return fmt.Errorf("invalid direction '%s' (row %d)", st.Direction, i+1)
		}

		run, found := runByID[st.RunID]
		if !found {
			run = &csvRun{id: st.RunID, day: day, direction: direction}
			runByID[st.RunID] = run
			runs = append(runs, run)
		} else if run.day != day || run.direction != direction {
			return fmt.Errorf("run_id '%s' changes day_type or direction (row %d)", st.RunID, i+1)
		}

		run.passages = append(run.passages, passage{stop: name, time: t})
		run.sequences = append(run.sequences, st.StopSequence)

		if !stopSeen[name] {
			stopSeen[name] = true
			stops = append(stops, name)
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unmarshaling stop times csv")
	}

	for pos, name := range stops {
		err = writer.WriteStop(&model.Stop{Name: name, Position: pos})
		if err != nil {
			return nil, fmt.Errorf("writing stop '%s': %w", name, err)
		}
	}

	err = writer.BeginHops()
	if err != nil {
		return nil, fmt.Errorf("beginning hops: %w", err)
	}

	emitter := &hopEmitter{writer: writer}
	for _, run := range runs {
		// Verify that stop_sequence is unique for each run
		seqSeen := map[uint32]bool{}
		for _, seq := range run.sequences {
			if seqSeen[seq] {
				return nil, fmt.Errorf("duplicate stop_sequence %d for run_id '%s'", seq, run.id)
			}
			seqSeen[seq] = true
		}

		order := make([]int, len(run.passages))
		for k := range order {
			order[k] = k
		}
		sort.SliceStable(order, func(a, b int) bool {
			return run.sequences[order[a]] < run.sequences[order[b]]
		})
		passages := make([]passage, len(order))
		for k, idx := range order {
			passages[k] = run.passages[idx]
		}

		err = emitter.emit(run.id, run.day, run.direction, passages)
		if err != nil {
			return nil, err
		}
	}

	err = writer.EndHops()
	if err != nil {
		return nil, fmt.Errorf("ending hops: %w", err)
	}

	return &storage.TimetableMetadata{
		StopCount: len(stops),
		HopCount:  int(emitter.sequence),
		RunCount:  emitter.runs,
	}, nil
}

// Writes the hops of a timetable as stop times, the format read by
// ParseStopTimes.
func ExportStopTimes(reader storage.FeedReader, w io.Writer) error {
	rows := []*StopTimeCSV{}

	for _, day := range []model.DayType{model.DayTypeWeekday, model.DayTypeWeekend} {
		hops, err := reader.Hops(day)
		if err != nil {
			return fmt.Errorf("reading %s hops: %w", day, err)
		}

		var lastRun string
		var seq uint32
		for _, hop := range hops {
			if hop.Run != lastRun {
				lastRun = hop.Run
				seq = 1
				rows = append(rows, stopTimeRow(hop, hop.From, hop.Departure, seq))
			}
			seq += 1
			rows = append(rows, stopTimeRow(hop, hop.To, hop.Arrival, seq))
		}
	}

	err := gocsv.Marshal(rows, w)
	if err != nil {
		return fmt.Errorf("marshaling stop times csv: %w", err)
	}

	return nil
}

func stopTimeRow(hop *model.Hop, stop string, t model.Clock, seq uint32) *StopTimeCSV {
	return &StopTimeCSV{
		RunID:        hop.Run,
		StopName:     stop,
		StopSequence: seq,
		Time:         fmt.Sprintf("%d:%02d", t.Day*24+t.Hour, t.Minute),
		DayType:      hop.DayType.String(),
		Direction:    hop.Direction.String(),
	}
}
