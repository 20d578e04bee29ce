package pipeline

import "time"

// History persists conversion outcomes and answers incremental lookups.
// This allows the runner to skip unchanged inputs without depending on the
// storage package.
type History interface {
	// LastHash returns the input hash of the most recent successful
	// conversion of the named file.
	LastHash(source string) (hash string, ok bool, err error)

	// SaveResult records one file outcome.
	SaveResult(rec HistoryRecord) error
}

// HistoryRecord contains conversion data for persistence.
type HistoryRecord struct {
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
}

// Record statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// NewHistoryRecord converts a Result for persistence.
func NewHistoryRecord(res Result) HistoryRecord {
	rec := HistoryRecord{
		Source:        res.Source,
		Output:        res.Output,
		Hash:          res.Hash,
		Stage:         string(res.Stage),
		Walls:         res.Stats.Walls,
		Spawns:        res.Stats.Spawns,
		Segments:      res.Stats.Segments,
		BoundaryTiles: res.Stats.BoundaryTiles,
		DurationMs:    res.Elapsed.Milliseconds(),
	}
	switch {
	case res.Err != nil:
		rec.Status = StatusFailed
		rec.Error = res.Err.Error()
	case res.Skipped:
		rec.Status = StatusSkipped
	default:
		rec.Status = StatusOK
	}
	return rec
}

// Duration returns the recorded processing time.
func (h HistoryRecord) Duration() time.Duration {
	return time.Duration(h.DurationMs) * time.Millisecond
}
