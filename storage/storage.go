package storage

import (
	"time"

	"tidbyt.dev/journeys/model"
)

type Stop = model.Stop
type Hop = model.Hop
type DayType = model.DayType

// Storage holds parsed timetables. Each timetable is identified by
// the hash of its source data, so the same timetable downloaded from
// different places is only parsed once.
type Storage interface {
	// Retrieves all timetable metadata records matching the given
	// filter, most recently retrieved first.
	ListTimetables(filter ListTimetablesFilter) ([]*TimetableMetadata, error)

	// Writes a TimetableMetadata record. If a record with the same
	// source and hash exists, it is updated.
	WriteTimetableMetadata(metadata *TimetableMetadata) error

	DeleteTimetableMetadata(source string, hash string) error

	// Gets a reader for the timetable with the given hash.
	GetReader(hash string) (FeedReader, error)

	// Gets a writer for the timetable with the given hash. Any data
	// previously written under the hash is discarded.
	GetWriter(hash string) (FeedWriter, error)
}

type ListTimetablesFilter struct {
	// If set, only include timetables from the given source.
	Source string

	// If set, only include timetables with the given hash.
	Hash string
}

// Metadata for a parsed timetable. The stops and hops can be
// accessed via FeedReader.
type TimetableMetadata struct {
	Source      string
	Hash        string
	Name        string
	RetrievedAt time.Time
	StopCount   int
	HopCount    int
	RunCount    int
}

// Writes the stops and hops of a single timetable.
//
// BeginHops() and EndHops() bracket all calls to WriteHop(), allowing
// transactions or batching.
type FeedWriter interface {
	WriteStop(stop *Stop) error
	BeginHops() error
	WriteHop(hop *Hop) error
	EndHops() error
	Close() error
}

type FeedReader interface {
	// All stops, ordered by position.
	Stops() ([]*Stop, error)

	// All hops of a day type, ordered by sequence.
	Hops(day DayType) ([]*Hop, error)

	// Number of hops across all day types.
	HopCount() (int, error)
}
