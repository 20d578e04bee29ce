// Package storage provides SQLite-based persistence for conversion history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tilemaps/internal/pipeline"
)

// Store manages the SQLite database connection for conversion history.
type Store struct {
	db *sql.DB
}

// Conversion is one recorded file outcome.
type Conversion struct {
	ID            int64
	Source        string
	Output        string
	Hash          string
	Status        string // "ok", "skipped", "failed"
	Stage         string
	Error         string
	Walls         int
	Spawns        int
	Segments      int
	BoundaryTiles int
	DurationMs    int64
	CreatedAt     time.Time
}

const conversionColumns = `id, source, output, hash, status, stage, error,
	walls, spawns, segments, boundary_tiles, duration_ms, created_at`

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Conversion workers write concurrently; a single connection serializes
	// them instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			output TEXT NOT NULL DEFAULT '',
			hash TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			stage TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			walls INTEGER NOT NULL DEFAULT 0,
			spawns INTEGER NOT NULL DEFAULT 0,
			segments INTEGER NOT NULL DEFAULT 0,
			boundary_tiles INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source);
		CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(source, status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConversion records a conversion outcome.
// Returns the ID of the inserted record.
func (s *Store) SaveConversion(c Conversion) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO conversions
		 (source, output, hash, status, stage, error, walls, spawns, segments, boundary_tiles, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Source, c.Output, c.Hash, c.Status, c.Stage, c.Error,
		c.Walls, c.Spawns, c.Segments, c.BoundaryTiles, c.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save conversion: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// LastSuccess returns the most recent successful conversion of source,
// or nil if there is none.
func (s *Store) LastSuccess(source string) (*Conversion, error) {
	row := s.db.QueryRow(
		`SELECT `+conversionColumns+`
		 FROM conversions
		 WHERE source = ? AND status = ?
		 ORDER BY id DESC
		 LIMIT 1`,
		source, pipeline.StatusOK,
	)

	c, err := scanConversion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query last conversion: %w", err)
	}
	return c, nil
}

// RecentConversions retrieves the most recent conversions, newest first.
func (s *Store) RecentConversions(limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryConversions(
		`SELECT `+conversionColumns+`
		 FROM conversions
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
}

// ConversionsFor retrieves the conversion history of one source file,
// newest first.
func (s *Store) ConversionsFor(source string, limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryConversions(
		`SELECT `+conversionColumns+`
		 FROM conversions
		 WHERE source = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		source, limit,
	)
}

func (s *Store) queryConversions(query string, args ...any) ([]Conversion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query conversions: %w", err)
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		out = append(out, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(sc scanner) (*Conversion, error) {
	var c Conversion
	var createdAt any
	if err := sc.Scan(
		&c.ID,
		&c.Source,
		&c.Output,
		&c.Hash,
		&c.Status,
		&c.Stage,
		&c.Error,
		&c.Walls,
		&c.Spawns,
		&c.Segments,
		&c.BoundaryTiles,
		&c.DurationMs,
		&createdAt,
	); err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// ClearHistory deletes all recorded conversions.
func (s *Store) ClearHistory() error {
	if _, err := s.db.Exec("DELETE FROM conversions"); err != nil {
		return fmt.Errorf("storage: cannot clear history: %w", err)
	}
	return nil
}

// LastHash implements pipeline.History.
func (s *Store) LastHash(source string) (string, bool, error) {
	c, err := s.LastSuccess(source)
	if err != nil || c == nil {
		return "", false, err
	}
	return c.Hash, true, nil
}

// SaveResult implements pipeline.History.
// This adapter allows the runner to record outcomes without direct storage dependency.
func (s *Store) SaveResult(rec pipeline.HistoryRecord) error {
	_, err := s.SaveConversion(Conversion{
		Source:        rec.Source,
		Output:        rec.Output,
		Hash:          rec.Hash,
		Status:        rec.Status,
		Stage:         rec.Stage,
		Error:         rec.Error,
		Walls:         rec.Walls,
		Spawns:        rec.Spawns,
		Segments:      rec.Segments,
		BoundaryTiles: rec.BoundaryTiles,
		DurationMs:    rec.DurationMs,
	})
	return err
}

// Ensure Store implements History
var _ pipeline.History = (*Store)(nil)

// SourceStats contains aggregated statistics for one source file.
type SourceStats struct {
	Source      string
	Runs        int
	Failures    int
	LastStatus  string
	LastWalls   int
	LastRun     time.Time
	AvgDuration float64 // milliseconds
}

// GetSourceStats retrieves aggregated statistics for every recorded source,
// ordered by name.
func (s *Store) GetSourceStats() ([]SourceStats, error) {
	rows, err := s.db.Query(
		`SELECT c.source,
		        COUNT(*),
		        SUM(CASE WHEN c.status = 'failed' THEN 1 ELSE 0 END),
		        COALESCE(AVG(c.duration_ms), 0),
		        l.status, l.walls, l.created_at
		 FROM conversions c
		 JOIN conversions l ON l.id = (SELECT MAX(id) FROM conversions WHERE source = c.source)
		 GROUP BY c.source
		 ORDER BY c.source`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get source stats: %w", err)
	}
	defer rows.Close()

	var stats []SourceStats
	for rows.Next() {
		var st SourceStats
		var lastRun any
		if err := rows.Scan(&st.Source, &st.Runs, &st.Failures, &st.AvgDuration,
			&st.LastStatus, &st.LastWalls, &lastRun); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastRun = parseTime(lastRun)
		stats = append(stats, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
