package parse

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"tidbyt.dev/journeys/storage"
)

type Format string

const (
	FormatText      Format = "text"
	FormatStopTimes Format = "csv"
)

// Guesses the format of a timetable. Stop times CSV starts with a
// header naming run_id.
func DetectFormat(buf []byte) Format {
	buf = bom.Clean(buf)
	firstLine := string(buf)
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		firstLine = string(buf[:i])
	}
	if strings.Contains(firstLine, ",") && strings.Contains(firstLine, "run_id") {
		return FormatStopTimes
	}
	return FormatText
}

// Parses a timetable into the writer, and closes the writer. The
// returned metadata only holds counts; source, hash and retrieval
// time are left to the caller.
func ParseTimetable(writer storage.FeedWriter, buf []byte) (*storage.TimetableMetadata, error) {
	// LazyCSVReader required (at least) to survive sloppy use of
	// quotes. The BOM reader strips unicode BOMs if present.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	var metadata *storage.TimetableMetadata
	var err error

	switch format := DetectFormat(buf); format {
	case FormatStopTimes:
		metadata, err = ParseStopTimes(writer, bytes.NewReader(buf))
	case FormatText:
		metadata, err = ParseTimetableText(writer, bom.NewReader(bytes.NewReader(buf)))
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, err
	}

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("closing feed writer: %w", err)
	}

	return metadata, nil
}
