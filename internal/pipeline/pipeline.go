// Package pipeline runs the level conversion over a directory: discovery,
// loading, tile extraction, serialization and writing, one file per worker.
//
// Each file is an isolated unit of work. A file that fails to decode or
// write is reported on its Result and never stops the others; only failing
// to list the input directory aborts a run.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tilemaps/internal/source"
	"github.com/vovakirdan/tilemaps/internal/tilemap"
)

// ErrOutputCollision is reported for inputs whose output names coincide,
// such as level.png and level.PNG.
var ErrOutputCollision = errors.New("output name collision")

// recordFormat is folded into every build key. Bump it whenever the
// serialized record changes so incremental runs rewrite existing outputs.
const recordFormat = 1

// Options configures a Runner.
type Options struct {
	InputDir    string
	OutputDir   string
	Suffix      string   // output file name = input stem + Suffix
	Extensions  []string // input extensions, matched case-insensitively
	Workers     int      // concurrent files; <= 0 means runtime.GOMAXPROCS(0)
	Incremental bool     // skip inputs whose content matches the last successful conversion
	Indent      bool
	Source      source.Options
}

// Stage identifies where a file's processing ended.
type Stage string

const (
	StagePath   Stage = "path"   // file name unusable or its output name taken
	StageRead   Stage = "read"   // file could not be read
	StageDecode Stage = "decode" // file could not be decoded into pixels
	StageEncode Stage = "encode" // record could not be serialized
	StageWrite  Stage = "write"  // output could not be written
	StageDone   Stage = "done"
)

// Result is the outcome for one input file.
type Result struct {
	Source  string // input file name
	Output  string // output path, empty when nothing was written
	Hash    string // hex SHA-256 build key over the input bytes and the output-affecting options
	Stage   Stage
	Err     error
	Skipped bool // unchanged since the last successful conversion
	Stats   tilemap.Stats
	Elapsed time.Duration
}

// OK reports whether the file was converted or skipped as up to date.
func (r Result) OK() bool {
	return r.Err == nil
}

// Report aggregates the results of a run in discovery order.
type Report struct {
	Results []Result
}

// Converted returns the number of files written.
func (r Report) Converted() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() && !res.Skipped {
			n++
		}
	}
	return n
}

// Skipped returns the number of files left untouched as up to date.
func (r Report) Skipped() int {
	n := 0
	for _, res := range r.Results {
		if res.Skipped {
			n++
		}
	}
	return n
}

// Failed returns the results that ended with an error.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Runner converts level files.
type Runner struct {
	opts    Options
	logger  *log.Logger
	history History
}

// New creates a runner. history may be nil to disable incremental skipping
// and result recording.
func New(opts Options, logger *log.Logger, history History) *Runner {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Runner{opts: opts, logger: logger, history: history}
}

// Run converts every matching file in the input directory.
// The returned error is non-nil only when the run could not start at all.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	for _, ext := range r.opts.Extensions {
		if !source.Supported(ext) {
			return Report{}, fmt.Errorf("pipeline: extension %q: %w", ext, source.ErrUnsupportedFormat)
		}
	}

	entries, skipped, err := source.Discover(r.opts.InputDir, r.opts.Extensions)
	if err != nil {
		return Report{}, fmt.Errorf("pipeline: %w", err)
	}
	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("pipeline: cannot create output directory %s: %w", r.opts.OutputDir, err)
	}

	entries, collided := splitCollisions(entries, r.opts.Suffix)

	results := make([]Result, 0, len(skipped)+len(collided)+len(entries))
	for _, s := range skipped {
		r.logger.Warn("skipping file", "file", fmt.Sprintf("%q", s.Name), "error", s.Reason)
		results = append(results, Result{Source: s.Name, Stage: StagePath, Err: s.Reason})
		r.record(results[len(results)-1])
	}
	for _, res := range collided {
		r.logger.Error("conversion failed", "file", res.Source, "stage", res.Stage, "error", res.Err)
		results = append(results, res)
		r.record(res)
	}
	first := len(results)
	results = results[:first+len(entries)]

	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	r.logger.Debug("starting conversion", "files", len(entries), "workers", workers)

	var g errgroup.Group
	g.SetLimit(workers)
	for i, e := range entries {
		slot := first + i
		g.Go(func() error {
			results[slot] = r.ProcessFile(ctx, e)
			return nil
		})
	}
	_ = g.Wait() // workers report through results, never through the group

	return Report{Results: results}, nil
}

// ProcessFile converts a single file and records the outcome.
func (r *Runner) ProcessFile(ctx context.Context, e source.Entry) Result {
	start := time.Now()
	res := r.process(ctx, e)
	res.Elapsed = time.Since(start)

	switch {
	case res.Err != nil:
		r.logger.Error("conversion failed", "file", e.Name, "stage", res.Stage, "error", res.Err)
	case res.Skipped:
		r.logger.Info("up to date", "file", e.Name)
	default:
		r.logger.Info("converted",
			"file", e.Name,
			"output", res.Output,
			"walls", res.Stats.Walls,
			"spawns", res.Stats.Spawns,
			"segments", res.Stats.Segments,
			"elapsed", res.Elapsed.Round(time.Microsecond),
		)
	}

	r.record(res)
	return res
}

func (r *Runner) process(ctx context.Context, e source.Entry) Result {
	res := Result{Source: e.Name}
	fail := func(stage Stage, err error) Result {
		res.Stage, res.Err = stage, err
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(StageRead, err)
	}

	data, err := os.ReadFile(e.Path)
	if err != nil {
		return fail(StageRead, err)
	}
	res.Hash = r.buildKey(data)

	outPath := filepath.Join(r.opts.OutputDir, e.OutputName(r.opts.Suffix))
	if r.upToDate(e.Name, res.Hash, outPath) {
		res.Stage, res.Output, res.Skipped = StageDone, outPath, true
		return res
	}

	img, err := source.Load(e.Path, data, r.opts.Source)
	if err != nil {
		return fail(StageDecode, err)
	}

	rec := tilemap.FromImage(img)
	res.Stats = rec.Stats()
	if b, ok := rec.Bounds(); ok {
		r.logger.Debug("centered", "file", e.Name, "offset", rec.Offset(),
			"min_x", b.MinX, "max_x", b.MaxX, "min_y", b.MinY, "max_y", b.MaxY)
	}

	out, err := rec.Marshal(r.opts.Indent)
	if err != nil {
		return fail(StageEncode, err)
	}
	if err := writeFileAtomic(outPath, out); err != nil {
		return fail(StageWrite, err)
	}

	res.Stage, res.Output = StageDone, outPath
	return res
}

// buildKey hashes the input together with every option that changes the
// bytes written for it.
func (r *Runner) buildKey(data []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "mapgen record v%d indent=%t wall_layer=%q spawn_group=%q\n",
		recordFormat, r.opts.Indent, r.opts.Source.TMX.WallLayer, r.opts.Source.TMX.SpawnGroup)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// splitCollisions removes every entry whose output name is shared with
// another entry and returns a failed result for each of them, in discovery
// order. Names are compared exactly; the caller lists them from one directory.
func splitCollisions(entries []source.Entry, suffix string) ([]source.Entry, []Result) {
	byOutput := make(map[string][]string, len(entries))
	for _, e := range entries {
		out := e.OutputName(suffix)
		byOutput[out] = append(byOutput[out], e.Name)
	}

	var (
		kept     = entries[:0:0]
		collided []Result
	)
	for _, e := range entries {
		out := e.OutputName(suffix)
		names := byOutput[out]
		if len(names) < 2 {
			kept = append(kept, e)
			continue
		}
		var others []string
		for _, n := range names {
			if n != e.Name {
				others = append(others, n)
			}
		}
		collided = append(collided, Result{
			Source: e.Name,
			Stage:  StagePath,
			Err:    fmt.Errorf("%w: %s also writes %s", ErrOutputCollision, strings.Join(others, ", "), out),
		})
	}
	return kept, collided
}

// upToDate reports whether the last successful conversion of name had the
// same build key and its output still exists.
func (r *Runner) upToDate(name, hash, outPath string) bool {
	if !r.opts.Incremental || r.history == nil {
		return false
	}
	last, ok, err := r.history.LastHash(name)
	if err != nil {
		r.logger.Warn("history lookup failed", "file", name, "error", err)
		return false
	}
	if !ok || last != hash {
		return false
	}
	_, err = os.Stat(outPath)
	return err == nil
}

func (r *Runner) record(res Result) {
	if r.history == nil {
		return
	}
	if err := r.history.SaveResult(NewHistoryRecord(res)); err != nil {
		r.logger.Warn("could not record conversion", "file", res.Source, "error", err)
	}
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it into place, so readers never see a partial record.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mapgen-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
