package storage

import (
	"fmt"
	"sort"
)

// In memory implementation of Storage below

type memoryMetadataKey struct {
	Source string
	Hash   string
}

type MemoryStorage struct {
	Feeds    map[string]*MemoryStorageFeed
	Metadata map[memoryMetadataKey]*TimetableMetadata
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Feeds:    map[string]*MemoryStorageFeed{},
		Metadata: map[memoryMetadataKey]*TimetableMetadata{},
	}
}

func (s *MemoryStorage) ListTimetables(filter ListTimetablesFilter) ([]*TimetableMetadata, error) {
	timetables := []*TimetableMetadata{}
	for _, metadata := range s.Metadata {
		if filter.Source != "" && metadata.Source != filter.Source {
			continue
		}
		if filter.Hash != "" && metadata.Hash != filter.Hash {
			continue
		}
		timetables = append(timetables, metadata)
	}
	sort.Slice(timetables, func(i, j int) bool {
		return timetables[i].RetrievedAt.After(timetables[j].RetrievedAt)
	})
	return timetables, nil
}

func (s *MemoryStorage) WriteTimetableMetadata(metadata *TimetableMetadata) error {
	s.Metadata[memoryMetadataKey{metadata.Source, metadata.Hash}] = metadata
	return nil
}

func (s *MemoryStorage) DeleteTimetableMetadata(source string, hash string) error {
	key := memoryMetadataKey{source, hash}
	if _, found := s.Metadata[key]; !found {
		return fmt.Errorf("timetable not found")
	}
	delete(s.Metadata, key)
	return nil
}

func (s *MemoryStorage) GetReader(hash string) (FeedReader, error) {
	f, ok := s.Feeds[hash]
	if !ok {
		return nil, fmt.Errorf("timetable %s does not exist", hash)
	}
	return f, nil
}

func (s *MemoryStorage) GetWriter(hash string) (FeedWriter, error) {
	f := &MemoryStorageFeed{
		stops:     map[string]*Stop{},
		hopsByDay: map[DayType][]*Hop{},
	}

	s.Feeds[hash] = f

	return f, nil
}

type MemoryStorageFeed struct {
	stops     map[string]*Stop
	hopsByDay map[DayType][]*Hop
}

func (f *MemoryStorageFeed) WriteStop(stop *Stop) error {
	if _, found := f.stops[stop.Name]; found {
		return fmt.Errorf("repeated stop '%s'", stop.Name)
	}
	f.stops[stop.Name] = stop
	return nil
}

func (f *MemoryStorageFeed) BeginHops() error {
	return nil
}

func (f *MemoryStorageFeed) WriteHop(hop *Hop) error {
	if _, found := f.stops[hop.From]; !found {
		return fmt.Errorf("hop from unknown stop '%s'", hop.From)
	}
	if _, found := f.stops[hop.To]; !found {
		return fmt.Errorf("hop to unknown stop '%s'", hop.To)
	}
	f.hopsByDay[hop.DayType] = append(f.hopsByDay[hop.DayType], hop)
	return nil
}

func (f *MemoryStorageFeed) EndHops() error {
	for _, hops := range f.hopsByDay {
		sort.SliceStable(hops, func(i, j int) bool {
			return hops[i].Sequence < hops[j].Sequence
		})
	}
	return nil
}

func (f *MemoryStorageFeed) Close() error {
	return nil
}

func (f *MemoryStorageFeed) Stops() ([]*Stop, error) {
	stops := []*Stop{}
	for _, v := range f.stops {
		stops = append(stops, v)
	}
	sort.Slice(stops, func(i, j int) bool {
		return stops[i].Position < stops[j].Position
	})
	return stops, nil
}

func (f *MemoryStorageFeed) Hops(day DayType) ([]*Hop, error) {
	hops := make([]*Hop, len(f.hopsByDay[day]))
	copy(hops, f.hopsByDay[day])
	return hops, nil
}

func (f *MemoryStorageFeed) HopCount() (int, error) {
	n := 0
	for _, hops := range f.hopsByDay {
		n += len(hops)
	}
	return n, nil
}
