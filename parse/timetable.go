package parse

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"tidbyt.dev/journeys/model"
	"tidbyt.dev/journeys/storage"
)

const (
	// Separates stop names in the first paragraph of a timetable.
	StopNameDelimiter = " N "

	// Cell value for a run not serving a stop.
	NoStopCell = "-"
)

// Schedule paragraphs, in the order they appear after the stop list.
var scheduleLayout = []struct {
	day       model.DayType
	direction model.Direction
}{
	{model.DayTypeWeekday, model.DirectionOutbound},
	{model.DayTypeWeekday, model.DirectionReturn},
	{model.DayTypeWeekend, model.DirectionOutbound},
	{model.DayTypeWeekend, model.DirectionReturn},
}

// Parses a line timetable in text form.
//
// Paragraphs are separated by blank lines. The first one lists stop
// names separated by " N ". Each of the following holds one row per
// stop, where the first field is a label and the remaining fields are
// either "H:MM" or "-". Every column is a run. Paragraphs come in
// order weekday outbound, weekday return, weekend outbound and
// weekend return; only the first is required. Return paragraphs list
// stops in reverse order.
func ParseTimetableText(writer storage.FeedWriter, data io.Reader) (*storage.TimetableMetadata, error) {
	paragraphs, err := splitParagraphs(data)
	if err != nil {
		return nil, fmt.Errorf("reading timetable: %w", err)
	}

	if len(paragraphs) < 2 {
		return nil, fmt.Errorf("expected stop list and at least one schedule, found %d paragraphs", len(paragraphs))
	}
	if len(paragraphs) > 1+len(scheduleLayout) {
		return nil, fmt.Errorf("expected at most %d paragraphs, found %d", 1+len(scheduleLayout), len(paragraphs))
	}

	stops, err := parseStopList(paragraphs[0])
	if err != nil {
		return nil, fmt.Errorf("parsing stop list: %w", err)
	}

	for i, name := range stops {
		err = writer.WriteStop(&model.Stop{Name: name, Position: i})
		if err != nil {
			return nil, fmt.Errorf("writing stop '%s': %w", name, err)
		}
	}

	err = writer.BeginHops()
	if err != nil {
		return nil, fmt.Errorf("beginning hops: %w", err)
	}

	emitter := &hopEmitter{writer: writer}
	for i, paragraph := range paragraphs[1:] {
		layout := scheduleLayout[i]

		rowStops := stops
		if layout.direction == model.DirectionReturn {
			rowStops = reversed(stops)
		}

		err = parseSchedule(emitter, paragraph, rowStops, layout.day, layout.direction)
		if err != nil {
			return nil, fmt.Errorf("parsing %s %s schedule: %w", layout.day, layout.direction, err)
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

func splitParagraphs(data io.Reader) ([][]string, error) {
	paragraphs := [][]string{}
	current := []string{}

	scanner := bufio.NewScanner(data)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = []string{}
			}
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}

	return paragraphs, nil
}

func parseStopList(lines []string) ([]string, error) {
	raw := strings.Split(strings.Join(lines, " "), StopNameDelimiter)

	stops := []string{}
	seen := map[string]bool{}
	for i, r := range raw {
		name := FormatName(r)
		if name == "" {
			return nil, fmt.Errorf("empty stop name at position %d", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("repeated stop name '%s'", name)
		}
		seen[name] = true
		stops = append(stops, name)
	}

	return stops, nil
}

// Transposes a schedule paragraph into runs and emits their hops.
func parseSchedule(
	emitter *hopEmitter,
	lines []string,
	stops []string,
	day model.DayType,
	direction model.Direction,
) error {
	if len(lines) != len(stops) {
		return fmt.Errorf("found %d rows for %d stops", len(lines), len(stops))
	}

	// rows[i][j] is the passage of run j at stop i, or nil
	rows := make([][]*model.Clock, len(lines))
	numRuns := -1
	for i, line := range lines {
		fields := strings.Fields(line)
		cells := fields[1:]

		if numRuns == -1 {
			numRuns = len(cells)
		} else if len(cells) != numRuns {
			return fmt.Errorf("row %d has %d cells, expected %d", i+1, len(cells), numRuns)
		}

		rows[i] = make([]*model.Clock, len(cells))
		for j, cell := range cells {
			if cell == NoStopCell {
				continue
			}
			c, err := model.ParseClock(cell)
			if err != nil {
				return errors.Wrapf(err, "parsing cell (row %d, column %d)", i+1, j+1)
			}
			rows[i][j] = &c
		}
	}

	for j := 0; j < numRuns; j++ {
		passages := []passage{}
		for i := range rows {
			if rows[i][j] == nil {
				continue
			}
			passages = append(passages, passage{stop: stops[i], time: *rows[i][j]})
		}

		run := fmt.Sprintf("%s-%s-%d", day, direction, j+1)
		err := emitter.emit(run, day, direction, passages)
		if err != nil {
			return err
		}
	}

	return nil
}

func reversed(s []string) []string {
	r := make([]string, len(s))
	for i, v := range s {
		r[len(s)-1-i] = v
	}
	return r
}
