package parse

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/journeys/model"
	"tidbyt.dev/journeys/storage"
)

// A two direction weekday timetable with three stops.
func fixtureSimple() []string {
	return []string{
		"LYCEE_DE_POISY N POISY_COLLÈGE N GARE",
		"",
		"L1 7:00 8:00 -",
		"L2 7:05 8:05 9:00",
		"L3 7:20 - 9:10",
		"",
		"G 17:00 18:00",
		"P 17:10 18:15",
		"L 17:20 18:30",
	}
}

func hopsOf(t *testing.T, reader storage.FeedReader, day model.DayType) []*model.Hop {
	hops, err := reader.Hops(day)
	require.NoError(t, err)
	return hops
}

func TestParseValidTimetable(t *testing.T) {
	s, err := storage.NewSQLiteStorage()
	require.NoError(t, err)
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	metadata, err := ParseTimetable(writer, []byte(strings.Join(fixtureSimple(), "\n")))
	require.NoError(t, err)
	assert.Equal(t, 3, metadata.StopCount)
	assert.Equal(t, 8, metadata.HopCount)
	assert.Equal(t, 5, metadata.RunCount)

	reader, err := s.GetReader("test")
	require.NoError(t, err)

	stops, err := reader.Stops()
	require.NoError(t, err)
	assert.Equal(t, []*model.Stop{
		{Name: "Lycee de poisy", Position: 0},
		{Name: "Poisy collège", Position: 1},
		{Name: "Gare", Position: 2},
	}, stops)

	hops := hopsOf(t, reader, model.DayTypeWeekday)
	require.Equal(t, 8, len(hops))

	type hopSummary struct {
		Run       string
		From, To  string
		Departure string
		Arrival   string
	}
	summary := []hopSummary{}
	for _, h := range hops {
		summary = append(summary, hopSummary{h.Run, h.From, h.To, h.Departure.String(), h.Arrival.String()})
	}
	assert.Equal(t, []hopSummary{
		{"weekday-outbound-1", "Lycee de poisy", "Poisy collège", "07:00", "07:05"},
		{"weekday-outbound-1", "Poisy collège", "Gare", "07:05", "07:20"},
		{"weekday-outbound-2", "Lycee de poisy", "Poisy collège", "08:00", "08:05"},
		{"weekday-outbound-3", "Poisy collège", "Gare", "09:00", "09:10"},
		{"weekday-return-1", "Gare", "Poisy collège", "17:00", "17:10"},
		{"weekday-return-1", "Poisy collège", "Lycee de poisy", "17:10", "17:20"},
		{"weekday-return-2", "Gare", "Poisy collège", "18:00", "18:15"},
		{"weekday-return-2", "Poisy collège", "Lycee de poisy", "18:15", "18:30"},
	}, summary)

	for i, h := range hops {
		assert.Equal(t, uint32(i+1), h.Sequence)
	}
	assert.Equal(t, model.DirectionReturn, hops[4].Direction)

	assert.Equal(t, 0, len(hopsOf(t, reader, model.DayTypeWeekend)))
}

func TestParseWeekendParagraphs(t *testing.T) {
	lines := append(fixtureSimple(),
		"",
		"L1 10:00",
		"L2 10:10",
		"L3 10:30",
		"",
		"G 11:00",
		"P -",
		"L 11:25",
	)

	s := storage.NewMemoryStorage()
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	metadata, err := ParseTimetable(writer, []byte(strings.Join(lines, "\n")))
	require.NoError(t, err)
	assert.Equal(t, 11, metadata.HopCount)
	assert.Equal(t, 7, metadata.RunCount)

	reader, err := s.GetReader("test")
	require.NoError(t, err)

	weekend := hopsOf(t, reader, model.DayTypeWeekend)
	require.Equal(t, 3, len(weekend))
	assert.Equal(t, "Lycee de poisy", weekend[0].From)
	assert.Equal(t, "Gare", weekend[2].From)
	assert.Equal(t, "Lycee de poisy", weekend[2].To)
	assert.Equal(t, model.DirectionReturn, weekend[2].Direction)
	assert.Equal(t, model.DayTypeWeekend, weekend[2].DayType)
}

func TestParseRunAcrossMidnight(t *testing.T) {
	s := storage.NewMemoryStorage()
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	_, err = ParseTimetable(writer, []byte(strings.Join([]string{
		"A N B N C",
		"",
		"a 23:50",
		"b 23:58",
		"c 0:10",
	}, "\n")))
	require.NoError(t, err)

	reader, err := s.GetReader("test")
	require.NoError(t, err)

	hops := hopsOf(t, reader, model.DayTypeWeekday)
	require.Equal(t, 2, len(hops))
	assert.Equal(t, model.Clock{Day: 1, Hour: 0, Minute: 10}, hops[1].Arrival)
	assert.Equal(t, 12, hops[1].Arrival.Sub(hops[1].Departure))
}

func TestParseInvalidTimetables(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content []string
	}{
		{"no schedule", []string{"A N B"}},
		{"row count mismatch", []string{"A N B", "", "a 8:00"}},
		{"ragged rows", []string{"A N B", "", "a 8:00 9:00", "b 8:10"}},
		{"bad cell", []string{"A N B", "", "a 8:00", "b 8h10"}},
		{"repeated stop", []string{"A N A", "", "a 8:00", "b 8:10"}},
		{"empty stop name", []string{"A N  N B", "", "a 8:00", "b -", "c 8:10"}},
		{"too many paragraphs", []string{"A N B", "", "a 1:00", "b 1:01", "", "a 2:00", "b 2:01", "", "a 3:00", "b 3:01", "", "a 4:00", "b 4:01", "", "a 5:00", "b 5:01"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			writer, err := storage.NewMemoryStorage().GetWriter("test")
			require.NoError(t, err)
			_, err = ParseTimetable(writer, []byte(strings.Join(tc.content, "\n")))
			assert.Error(t, err)
		})
	}
}

func TestParseTimetableWithBOMAndCRLF(t *testing.T) {
	content := "\xef\xbb\xbfA N B\r\n\r\na 8:00\r\nb 8:10\r\n"

	s := storage.NewMemoryStorage()
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	_, err = ParseTimetable(writer, []byte(content))
	require.NoError(t, err)

	reader, err := s.GetReader("test")
	require.NoError(t, err)
	stops, err := reader.Stops()
	require.NoError(t, err)
	require.Equal(t, 2, len(stops))
	assert.Equal(t, "A", stops[0].Name)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatText, DetectFormat([]byte(strings.Join(fixtureSimple(), "\n"))))
	assert.Equal(t, FormatStopTimes, DetectFormat([]byte("run_id,stop_name,stop_sequence,time\n")))
	assert.Equal(t, FormatStopTimes, DetectFormat([]byte("\xef\xbb\xbfrun_id,stop_name,time")))
	assert.Equal(t, FormatText, DetectFormat([]byte("")))
}

func TestFormatName(t *testing.T) {
	for in, expected := range map[string]string{
		"POISY_COLLÈGE":  "Poisy collège",
		"LYCEE_DE_POISY": "Lycee de poisy",
		"glaisin":        "Glaisin",
		"_ÉCOLE_":        "École",
		"":               "",
	} {
		assert.Equal(t, expected, FormatName(in), in)
	}
}

func TestExportRoundTrip(t *testing.T) {
	s := storage.NewMemoryStorage()
	writer, err := s.GetWriter("text")
	require.NoError(t, err)
	_, err = ParseTimetable(writer, []byte(strings.Join(fixtureSimple(), "\n")))
	require.NoError(t, err)
	reader, err := s.GetReader("text")
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, ExportStopTimes(reader, buf))

	writer, err = s.GetWriter("csv")
	require.NoError(t, err)
	metadata, err := ParseTimetable(writer, buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 8, metadata.HopCount)
	assert.Equal(t, 5, metadata.RunCount)

	reimported, err := s.GetReader("csv")
	require.NoError(t, err)

	original := hopsOf(t, reader, model.DayTypeWeekday)
	roundTripped := hopsOf(t, reimported, model.DayTypeWeekday)
	assert.Equal(t, original, roundTripped)
}
