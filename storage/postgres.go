package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const (
	PSQLHopBatchSize = 5000
)

type PSQLStorage struct {
	db *sql.DB
}

type PSQLFeedWriter struct {
	hash   string
	db     *sql.DB
	hopBuf []Hop
}

type PSQLFeedReader struct {
	hash string
	db   *sql.DB
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the database will be cleared on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`
DROP TABLE IF EXISTS timetable;
DROP TABLE IF EXISTS stops;
DROP TABLE IF EXISTS hops;
`)
		if err != nil {
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS timetable (
    hash TEXT NOT NULL,
    source TEXT NOT NULL,
    name TEXT NOT NULL,
    retrieved_at TIMESTAMPTZ NOT NULL,
    stop_count INTEGER NOT NULL,
    hop_count INTEGER NOT NULL,
    run_count INTEGER NOT NULL,
    PRIMARY KEY (hash, source)
);

CREATE TABLE IF NOT EXISTS stops (
    hash TEXT NOT NULL,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (hash, name)
);

CREATE TABLE IF NOT EXISTS hops (
    hash TEXT NOT NULL,
    run TEXT NOT NULL,
    sequence INTEGER NOT NULL,
    from_stop TEXT NOT NULL,
    to_stop TEXT NOT NULL,
    departure INTEGER NOT NULL,
    arrival INTEGER NOT NULL,
    day_type SMALLINT NOT NULL,
    direction SMALLINT NOT NULL,
    PRIMARY KEY (hash, sequence)
);
CREATE INDEX IF NOT EXISTS hops_hash_day_type ON hops (hash, day_type);`)
	if err != nil {
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &PSQLStorage{
		db: db,
	}, nil
}

func (s *PSQLStorage) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close db: %w", err)
	}
	return nil
}

func (s *PSQLStorage) ListTimetables(filter ListTimetablesFilter) ([]*TimetableMetadata, error) {
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
		params = append(params, filter.Source)
		conditions = append(conditions, fmt.Sprintf("source = $%d", len(params)))
	}
	if filter.Hash != "" {
		params = append(params, filter.Hash)
		conditions = append(conditions, fmt.Sprintf("hash = $%d", len(params)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY retrieved_at DESC"

	rows, err := s.db.Query(query, params...)
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

func (s *PSQLStorage) WriteTimetableMetadata(tt *TimetableMetadata) error {
	_, err := s.db.Exec(`
INSERT INTO timetable (
    hash,
    source,
    name,
    retrieved_at,
    stop_count,
    hop_count,
    run_count
)
VALUES ($1, $2, $3, $4, $5, $6, $7)
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

func (s *PSQLStorage) DeleteTimetableMetadata(source string, hash string) error {
	_, err := s.db.Exec(`DELETE FROM timetable WHERE source = $1 AND hash = $2`, source, hash)
	if err != nil {
		return fmt.Errorf("deleting timetable metadata: %w", err)
	}
	return nil
}

func (s *PSQLStorage) GetReader(hash string) (FeedReader, error) {
	return &PSQLFeedReader{
		hash: hash,
		db:   s.db,
	}, nil
}

func (s *PSQLStorage) GetWriter(hash string) (FeedWriter, error) {
	// In case timetable already exists, delete all records
	for _, table := range []string{"stops", "hops"} {
		_, err := s.db.Exec(`DELETE FROM `+table+` WHERE hash = $1`, hash)
		if err != nil {
			return nil, fmt.Errorf("deleting %s records: %w", table, err)
		}
	}

	return &PSQLFeedWriter{
		hash: hash,
		db:   s.db,
	}, nil
}

func (w *PSQLFeedWriter) WriteStop(stop *Stop) error {
	_, err := w.db.Exec(`
INSERT INTO stops (hash, name, position)
VALUES ($1, $2, $3)`,
		w.hash,
		stop.Name,
		stop.Position,
	)
	if err != nil {
		return fmt.Errorf("inserting stop: %w", err)
	}
	return nil
}

func (w *PSQLFeedWriter) BeginHops() error {
	return nil
}

func (w *PSQLFeedWriter) WriteHop(hop *Hop) error {
	w.hopBuf = append(w.hopBuf, *hop)

	if len(w.hopBuf) >= PSQLHopBatchSize {
		err := w.flushHops()
		if err != nil {
			return fmt.Errorf("flushing hops: %w", err)
		}
	}

	return nil
}

func (w *PSQLFeedWriter) EndHops() error {
	if len(w.hopBuf) > 0 {
		err := w.flushHops()
		if err != nil {
			return fmt.Errorf("flushing hops: %w", err)
		}
	}
	return nil
}

func (w *PSQLFeedWriter) flushHops() error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pq.CopyIn(
		"hops", "hash", "run", "sequence", "from_stop", "to_stop", "departure", "arrival", "day_type", "direction",
	))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, hop := range w.hopBuf {
		_, err = stmt.Exec(
			w.hash,
			hop.Run,
			int64(hop.Sequence),
			hop.From,
			hop.To,
			hop.Departure.Minutes(),
			hop.Arrival.Minutes(),
			int(hop.DayType),
			int(hop.Direction),
		)
		if err != nil {
			return fmt.Errorf("COPY hop: %w", err)
		}
	}

	_, err = stmt.Exec()
	if err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	w.hopBuf = nil

	return nil
}

func (w *PSQLFeedWriter) Close() error {
	_, err := w.db.Exec(`ANALYZE hops`)
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}
	return nil
}

func (r *PSQLFeedReader) Stops() ([]*Stop, error) {
	rows, err := r.db.Query(`
SELECT name, position
FROM stops
WHERE hash = $1
ORDER BY position`, r.hash)
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

func (r *PSQLFeedReader) Hops(day DayType) ([]*Hop, error) {
	rows, err := r.db.Query(`
SELECT run, sequence, from_stop, to_stop, departure, arrival, day_type, direction
FROM hops
WHERE hash = $1 AND day_type = $2
ORDER BY sequence`, r.hash, int(day))
	if err != nil {
		return nil, fmt.Errorf("querying hops: %w", err)
	}
	defer rows.Close()

	return scanHops(rows)
}

func (r *PSQLFeedReader) HopCount() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM hops WHERE hash = $1`, r.hash).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting hops: %w", err)
	}
	return n, nil
}
