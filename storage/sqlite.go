package storage

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"tidbyt.dev/journeys/model"
)

type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

type SQLiteStorage struct {
	SQLiteConfig

	timetableDB *sql.DB
	feeds       map[string]*sql.DB
}

type SQLiteFeedWriter struct {
	db             *sql.DB
	hopInsertQuery *sql.Stmt
	hopInsertTx    *sql.Tx
}

type SQLiteFeedReader struct {
	db *sql.DB
}

func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	onDisk := false
	directory := ""
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		directory = cfg[0].Directory
	}

	sourceName := ":memory:"
	if onDisk {
		sourceName = directory + "/journeys.db"
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if !onDisk {
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS timetable (
    hash TEXT NOT NULL,
    source TEXT NOT NULL,
    name TEXT NOT NULL,
    retrieved_at TIMESTAMP NOT NULL,
    stop_count INTEGER NOT NULL,
    hop_count INTEGER NOT NULL,
    run_count INTEGER NOT NULL,
PRIMARY KEY (hash, source)
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating timetable table: %w", err)
	}

	return &SQLiteStorage{
		SQLiteConfig: SQLiteConfig{
			OnDisk:    onDisk,
			Directory: directory,
		},
		timetableDB: db,
		feeds:       map[string]*sql.DB{},
	}, nil
}

func (s *SQLiteStorage) ListTimetables(filter ListTimetablesFilter) ([]*TimetableMetadata, error) {
	query := `
SELECT
    hash,
    source,
    name,
    retrieved_at,
    stop_count,
    hop_count,
    run_count
FROM timetable`

	conditions := []string{}
	params := []interface{}{}
	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		params = append(params, filter.Source)
	}
	if filter.Hash != "" {
		conditions = append(conditions, "hash = ?")
		params = append(params, filter.Hash)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY retrieved_at DESC"

	rows, err := s.timetableDB.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("listing timetables: %w", err)
	}
	defer rows.Close()

	timetables := []*TimetableMetadata{}
	for rows.Next() {
		var tt TimetableMetadata
		err := rows.Scan(
			&tt.Hash,
			&tt.Source,
			&tt.Name,
			&tt.RetrievedAt,
			&tt.StopCount,
			&tt.HopCount,
			&tt.RunCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning timetable: %w", err)
		}
		timetables = append(timetables, &tt)
	}

	return timetables, rows.Err()
}

func (s *SQLiteStorage) WriteTimetableMetadata(tt *TimetableMetadata) error {
	_, err := s.timetableDB.Exec(`
INSERT INTO timetable (
    hash,
    source,
    name,
    retrieved_at,
    stop_count,
    hop_count,
    run_count
)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (hash, source) DO UPDATE SET
    name = excluded.name,
    retrieved_at = excluded.retrieved_at,
    stop_count = excluded.stop_count,
    hop_count = excluded.hop_count,
    run_count = excluded.run_count
`,
		tt.Hash,
		tt.Source,
		tt.Name,
		tt.RetrievedAt.UTC(),
		tt.StopCount,
		tt.HopCount,
		tt.RunCount,
	)
	if err != nil {
		return fmt.Errorf("writing timetable metadata: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteTimetableMetadata(source string, hash string) error {
	_, err := s.timetableDB.Exec(`
DELETE FROM timetable
WHERE source = ? AND hash = ?
`, source, hash)
	return err
}

func (s *SQLiteStorage) GetReader(hash string) (FeedReader, error) {
	db, found := s.feeds[hash]
	if found {
		return &SQLiteFeedReader{
			db: db,
		}, nil
	}
	if !s.OnDisk {
		return nil, fmt.Errorf("timetable %s does not exist", hash)
	}

	sourceName := s.Directory + "/" + hash + ".db"
	if _, err := os.Stat(sourceName); os.IsNotExist(err) {
		return nil, fmt.Errorf("timetable %s does not exist at %s", hash, sourceName)
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s.feeds[hash] = db

	return &SQLiteFeedReader{
		db: db,
	}, nil
}

func (s *SQLiteStorage) GetWriter(hash string) (FeedWriter, error) {
	if old, found := s.feeds[hash]; found {
		old.Close()
		delete(s.feeds, hash)
	}

	sourceName := ":memory:"
	if s.OnDisk {
		sourceName = s.Directory + "/" + hash + ".db"
		// delete file if it exists
		if _, err := os.Stat(sourceName); err == nil {
			err := os.Remove(sourceName)
			if err != nil {
				return nil, fmt.Errorf("removing existing database: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// An in-memory database lives as long as its connection.
	if !s.OnDisk {
		db.SetMaxOpenConns(1)
	}

	for _, table := range []struct {
		name  string
		query string
	}{
		{"stops", `
CREATE TABLE stops (
    name TEXT PRIMARY KEY,
    position INTEGER NOT NULL
);`},
		{"hops", `
CREATE TABLE hops (
    run TEXT NOT NULL,
    sequence INTEGER NOT NULL,
    from_stop TEXT NOT NULL REFERENCES stops (name),
    to_stop TEXT NOT NULL REFERENCES stops (name),
    departure INTEGER NOT NULL,
    arrival INTEGER NOT NULL,
    day_type INTEGER NOT NULL,
    direction INTEGER NOT NULL
);
CREATE INDEX hops_day_type_sequence ON hops (day_type, sequence);
`},
	} {
		_, err = db.Exec(table.query)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("creating %s table: %w", table.name, err)
		}
	}

	s.feeds[hash] = db

	return &SQLiteFeedWriter{
		db: db,
	}, nil
}

func (f *SQLiteFeedWriter) WriteStop(stop *Stop) error {
	_, err := f.db.Exec(`
INSERT INTO stops (name, position)
VALUES (?, ?)`,
		stop.Name,
		stop.Position,
	)
	if err != nil {
		return fmt.Errorf("inserting stop: %w", err)
	}
	return nil
}

func (f *SQLiteFeedWriter) BeginHops() error {
	// transaction with prepared statement.
	var err error
	f.hopInsertTx, err = f.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning hop insert transaction: %w", err)
	}

	f.hopInsertQuery, err = f.hopInsertTx.Prepare(`
INSERT INTO hops (run, sequence, from_stop, to_stop, departure, arrival, day_type, direction)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		f.hopInsertTx.Rollback()
		f.hopInsertTx = nil
		return fmt.Errorf("preparing hop insert: %w", err)
	}

	return nil
}

func (f *SQLiteFeedWriter) WriteHop(hop *Hop) error {
	if f.hopInsertQuery == nil {
		return fmt.Errorf("WriteHop called outside BeginHops/EndHops")
	}

	_, err := f.hopInsertQuery.Exec(
		hop.Run,
		hop.Sequence,
		hop.From,
		hop.To,
		hop.Departure.Minutes(),
		hop.Arrival.Minutes(),
		int(hop.DayType),
		int(hop.Direction),
	)
	if err != nil {
		f.hopInsertQuery.Close()
		f.hopInsertTx.Rollback()
		f.hopInsertTx = nil
		f.hopInsertQuery = nil
		return fmt.Errorf("inserting hop: %w", err)
	}

	return nil
}

func (f *SQLiteFeedWriter) EndHops() error {
	if f.hopInsertTx == nil {
		return nil
	}

	// commit transaction and clean up
	f.hopInsertQuery.Close()
	err := f.hopInsertTx.Commit()
	if err != nil {
		return fmt.Errorf("committing hop insert transaction: %w", err)
	}
	f.hopInsertTx = nil
	f.hopInsertQuery = nil

	return nil
}

func (f *SQLiteFeedWriter) Close() error {
	return nil
}

func (f *SQLiteFeedReader) Stops() ([]*Stop, error) {
	rows, err := f.db.Query(`SELECT name, position FROM stops ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying stops: %w", err)
	}
	defer rows.Close()

	stops := []*Stop{}
	for rows.Next() {
		stop := &Stop{}
		err := rows.Scan(&stop.Name, &stop.Position)
		if err != nil {
			return nil, fmt.Errorf("scanning stop: %w", err)
		}
		stops = append(stops, stop)
	}

	return stops, rows.Err()
}

func (f *SQLiteFeedReader) Hops(day DayType) ([]*Hop, error) {
	rows, err := f.db.Query(`
SELECT run, sequence, from_stop, to_stop, departure, arrival, day_type, direction
FROM hops
WHERE day_type = ?
ORDER BY sequence`, int(day))
	if err != nil {
		return nil, fmt.Errorf("querying hops: %w", err)
	}
	defer rows.Close()

	return scanHops(rows)
}

func (f *SQLiteFeedReader) HopCount() (int, error) {
	var n int
	err := f.db.QueryRow(`SELECT COUNT(*) FROM hops`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting hops: %w", err)
	}
	return n, nil
}

// Shared by the SQL backends, which lay out hop rows identically.
func scanHops(rows *sql.Rows) ([]*Hop, error) {
	hops := []*Hop{}
	for rows.Next() {
		var hop Hop
		var departure, arrival int
		var dayType, direction int8
		err := rows.Scan(
			&hop.Run,
			&hop.Sequence,
			&hop.From,
			&hop.To,
			&departure,
			&arrival,
			&dayType,
			&direction,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning hop: %w", err)
		}
		hop.Departure = model.ClockFromMinutes(departure)
		hop.Arrival = model.ClockFromMinutes(arrival)
		hop.DayType = model.DayType(dayType)
		hop.Direction = model.Direction(direction)
		hops = append(hops, &hop)
	}

	return hops, rows.Err()
}
