package index

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"shoebox/internal/faults"
	"shoebox/internal/logging"
	"shoebox/internal/retry"
	"shoebox/internal/sidecar"
)

// Record maps a content hash to its single on-disk representative and the
// best sidecar quality seen for that hash so far.
type Record struct {
	Hash  string
	Path  string // representative path, relative to the library root
	Score int
}

// Index is the durable content-addressed map answering "have I seen these
// bytes before, and where did I put them". Persistence is an append-only
// tab-separated log: one row per insert or update, last row per hash wins on
// reload, history of healing events is retained but superseded.
type Index struct {
	path    string
	lock    *flock.Flock
	file    *os.File
	logger  *slog.Logger
	policy  retry.Policy
	records map[string]Record
}

// Open loads the index log at path, acquiring an exclusive file lock so the
// log has a single writer across processes. A missing log starts empty.
func Open(path string, logger *slog.Logger) (*Index, error) {
	logger = logging.NewComponentLogger(logger, "index")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure index directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire index lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("index log %s is in use by another process", path)
	}

	ix := &Index{
		path:    path,
		lock:    lock,
		logger:  logger,
		policy:  retry.DefaultPolicy(),
		records: make(map[string]Record),
	}
	if err := ix.load(); err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open index log for append: %w", err)
	}
	ix.file = file
	return ix, nil
}

// load replays the log in order; reconciliation is a fold of append events
// into the final map, so reload is idempotent given the last-wins rule.
func (ix *Index) load() error {
	f, err := os.Open(ix.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open index log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		record, ok := parseRow(scanner.Text())
		if !ok {
			ix.logger.Warn("skipping malformed index row",
				logging.Int("line", line),
				logging.String("path", ix.path))
			continue
		}
		ix.records[record.Hash] = record
	}
	if err := scanner.Err(); err != nil {
		return faults.Wrap(faults.ErrIndexCorrupt, "index", "replay log", ix.path, err)
	}
	return nil
}

// Lookup returns the current record for hash.
func (ix *Index) Lookup(hash string) (Record, bool) {
	record, ok := ix.records[hash]
	return record, ok
}

// Insert records the first sighting of hash. It fails if the hash is already
// present; later changes must go through Update so exactly one record exists
// per hash at any time.
func (ix *Index) Insert(ctx context.Context, hash, relPath string, score int) error {
	if _, exists := ix.records[hash]; exists {
		return fmt.Errorf("index: hash %s already present; use Update", shortHash(hash))
	}
	return ix.append(ctx, Record{Hash: hash, Path: relPath, Score: score})
}

// Update supersedes the record for an existing hash by appending a new row;
// history is never rewritten in place.
func (ix *Index) Update(ctx context.Context, hash, relPath string, score int) error {
	if _, exists := ix.records[hash]; !exists {
		return fmt.Errorf("index: hash %s not present; use Insert", shortHash(hash))
	}
	return ix.append(ctx, Record{Hash: hash, Path: relPath, Score: score})
}

// Len reports the number of distinct hashes.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Records returns the current state sorted by representative path.
func (ix *Index) Records() []Record {
	out := make([]Record, 0, len(ix.records))
	for _, record := range ix.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Close releases the append handle and the lock.
func (ix *Index) Close() error {
	var first error
	if ix.file != nil {
		first = ix.file.Close()
		ix.file = nil
	}
	if err := ix.lock.Unlock(); err != nil && first == nil {
		first = err
	}
	return first
}

func (ix *Index) append(ctx context.Context, record Record) error {
	row := strings.Join([]string{
		record.Hash,
		filepath.ToSlash(record.Path),
		strconv.Itoa(record.Score),
	}, "\t")
	err := ix.policy.Do(ctx, func() error {
		if _, err := fmt.Fprintln(ix.file, row); err != nil {
			return err
		}
		return ix.file.Sync()
	})
	if err != nil {
		return fmt.Errorf("append index row: %w", err)
	}
	ix.records[record.Hash] = record
	return nil
}

// parseRow accepts both the current three-field rows and legacy two-field
// rows written before the score column existed (score reads as absent).
func parseRow(row string) (Record, bool) {
	row = strings.TrimRight(row, "\r")
	if strings.TrimSpace(row) == "" {
		return Record{}, false
	}
	fields := strings.Split(row, "\t")
	if len(fields) < 2 || len(fields) > 3 {
		return Record{}, false
	}
	hash := strings.TrimSpace(fields[0])
	path := strings.TrimSpace(fields[1])
	if len(hash) != 64 || path == "" {
		return Record{}, false
	}
	score := sidecar.ScoreAbsent
	if len(fields) == 3 {
		parsed, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return Record{}, false
		}
		score = parsed
	}
	return Record{Hash: hash, Path: filepath.FromSlash(path), Score: score}, true
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
