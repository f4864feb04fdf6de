package journeys

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"tidbyt.dev/journeys/downloader"
	"tidbyt.dev/journeys/parse"
	"tidbyt.dev/journeys/storage"
)

const (
	DefaultTimeout  = 60 * time.Second
	DefaultMaxSize  = 64 << 20 // 64 MB
	DefaultCacheTTL = 12 * time.Hour
)

var ErrNoTimetable = errors.New("no timetable found")

// Manager retrieves timetables, keeps them parsed in storage, and
// builds networks from them.
type Manager struct {
	Timeout    time.Duration
	MaxSize    int
	CacheTTL   time.Duration
	Downloader downloader.Downloader
	Logger     *log.Logger

	storage storage.Storage
}

// Creates a new Manager on top of the given storage. Retrieved
// timetables are cached in memory.
func NewManager(s storage.Storage) *Manager {
	return &Manager{
		Timeout:    DefaultTimeout,
		MaxSize:    DefaultMaxSize,
		CacheTTL:   DefaultCacheTTL,
		Downloader: downloader.NewMemoryDownloader(),
		Logger:     log.New(io.Discard, "", 0),

		storage: s,
	}
}

// Retrieves a timetable from a local path or URL, and stores it
// unless a timetable with identical content is already stored.
func (m *Manager) Refresh(ctx context.Context, source string) (*storage.TimetableMetadata, error) {
	body, err := m.Downloader.Get(ctx, source, nil, downloader.GetOptions{
		Cache:    true,
		CacheTTL: m.CacheTTL,
		Timeout:  m.Timeout,
		MaxSize:  m.MaxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieving %s: %w", source, err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(body))

	// The same content may already be stored, possibly for another
	// source.
	existing, err := m.storage.ListTimetables(storage.ListTimetablesFilter{Hash: hash})
	if err != nil {
		return nil, fmt.Errorf("listing timetables: %w", err)
	}
	if len(existing) > 0 {
		for _, tt := range existing {
			if tt.Source == source {
				m.Logger.Printf("%s unchanged (%s)", source, hash[:12])
				return tt, nil
			}
		}

		metadata := *existing[0]
		metadata.Source = source
		metadata.Name = timetableName(source)
		metadata.RetrievedAt = time.Now().UTC()
		err = m.storage.WriteTimetableMetadata(&metadata)
		if err != nil {
			return nil, fmt.Errorf("writing metadata: %w", err)
		}
		m.Logger.Printf("%s shares content with %s (%s)", source, existing[0].Source, hash[:12])
		return &metadata, nil
	}

	writer, err := m.storage.GetWriter(hash)
	if err != nil {
		return nil, fmt.Errorf("getting writer: %w", err)
	}

	metadata, err := parse.ParseTimetable(writer, body)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}

	metadata.Source = source
	metadata.Hash = hash
	metadata.Name = timetableName(source)
	metadata.RetrievedAt = time.Now().UTC()

	err = m.storage.WriteTimetableMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("writing metadata: %w", err)
	}

	m.Logger.Printf(
		"parsed %s (%s): %d stops, %d runs, %d hops",
		source, hash[:12], metadata.StopCount, metadata.RunCount, metadata.HopCount,
	)

	return metadata, nil
}

// Retrieves and stores a timetable, then builds its network.
func (m *Manager) LoadTimetable(ctx context.Context, source string) (*Network, error) {
	metadata, err := m.Refresh(ctx, source)
	if err != nil {
		return nil, err
	}
	return m.network(metadata)
}

// Builds a network from the most recently retrieved timetable for a
// source, without retrieving it. Returns ErrNoTimetable if the source
// was never loaded.
func (m *Manager) LoadStored(source string) (*Network, error) {
	timetables, err := m.storage.ListTimetables(storage.ListTimetablesFilter{Source: source})
	if err != nil {
		return nil, fmt.Errorf("listing timetables: %w", err)
	}
	if len(timetables) == 0 {
		return nil, ErrNoTimetable
	}
	return m.network(timetables[0])
}

// Loads several timetables into a single network. Lines share stops
// with equal names. Failures for individual sources are joined.
func (m *Manager) LoadNetwork(ctx context.Context, sources []string) (*Network, error) {
	if len(sources) == 0 {
		return nil, ErrNoTimetable
	}

	n := NewNetwork()
	errs := []error{}
	for _, source := range sources {
		metadata, err := m.Refresh(ctx, source)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		reader, err := m.storage.GetReader(metadata.Hash)
		if err != nil {
			errs = append(errs, fmt.Errorf("getting reader for %s: %w", source, err))
			continue
		}

		err = n.AddTimetable(reader)
		if err != nil {
			errs = append(errs, fmt.Errorf("adding %s: %w", source, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return n, nil
}

// Metadata for every stored timetable, most recent first.
func (m *Manager) Timetables() ([]*storage.TimetableMetadata, error) {
	return m.storage.ListTimetables(storage.ListTimetablesFilter{})
}

func (m *Manager) Reader(metadata *storage.TimetableMetadata) (storage.FeedReader, error) {
	reader, err := m.storage.GetReader(metadata.Hash)
	if err != nil {
		return nil, fmt.Errorf("getting reader: %w", err)
	}
	return reader, nil
}

func (m *Manager) network(metadata *storage.TimetableMetadata) (*Network, error) {
	reader, err := m.Reader(metadata)
	if err != nil {
		return nil, err
	}

	n, err := NetworkFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("building network for %s: %w", metadata.Source, err)
	}

	return n, nil
}

// Name of a timetable, from the last element of its source.
func timetableName(source string) string {
	name := path.Base(strings.TrimRight(source, "/"))
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
