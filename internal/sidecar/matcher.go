package sidecar

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"shoebox/internal/logging"
)

// Match is the outcome of sidecar association for one media file.
type Match struct {
	Doc   *Document
	Path  string
	Score int
}

// Found reports whether a document was associated.
func (m Match) Found() bool {
	return m.Doc != nil
}

// Matcher locates the best sidecar for a media file. The title-fallback
// directory scans are memoized per directory for the lifetime of the
// matcher, which is expected to be one run; construct a fresh matcher per
// run (or per test) so caches cannot leak between them.
type Matcher struct {
	suffix string
	logger *slog.Logger

	mu     sync.Mutex
	titles map[string]map[string]string // dir -> normalized title -> sidecar path
}

// NewMatcher constructs a matcher using the export's supplemental suffix
// (e.g. "supplemental-metadata").
func NewMatcher(supplementalSuffix string, logger *slog.Logger) *Matcher {
	return &Matcher{
		suffix: strings.Trim(strings.TrimSpace(supplementalSuffix), "."),
		logger: logging.NewComponentLogger(logger, "sidecar"),
		titles: make(map[string]map[string]string),
	}
}

// Match returns the best associated sidecar for the media file at mediaPath,
// or a Match with ScoreAbsent when none exists. First matching rule wins;
// documents found by different rules are never merged. A malformed document
// counts as "not found" for its rule and the search continues.
func (m *Matcher) Match(mediaPath string) Match {
	dir := filepath.Dir(mediaPath)
	name := filepath.Base(mediaPath)
	bare := strings.TrimSuffix(name, filepath.Ext(name))

	candidates := make([]string, 0, 4)
	if m.suffix != "" {
		candidates = append(candidates, filepath.Join(dir, name+"."+m.suffix+".json"))
	}
	candidates = append(candidates, filepath.Join(dir, name+".json"))
	if bare != name {
		if m.suffix != "" {
			candidates = append(candidates, filepath.Join(dir, bare+"."+m.suffix+".json"))
		}
		candidates = append(candidates, filepath.Join(dir, bare+".json"))
	}

	for _, path := range candidates {
		if doc, ok := m.tryParse(path); ok {
			return Match{Doc: doc, Path: path, Score: Score(doc)}
		}
	}

	if path, ok := m.lookupByTitle(dir, name); ok {
		if doc, ok := m.tryParse(path); ok {
			return Match{Doc: doc, Path: path, Score: Score(doc)}
		}
	}

	return Match{Score: ScoreAbsent}
}

func (m *Matcher) tryParse(path string) (*Document, bool) {
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}
	doc, err := ParseFile(path)
	if err != nil {
		m.logger.Warn("skipping malformed sidecar",
			logging.String("path", path),
			logging.Error(err))
		return nil, false
	}
	return doc, true
}

// lookupByTitle resolves a media name against the declared titles of every
// metadata document in dir. The scan is performed once per directory.
func (m *Matcher) lookupByTitle(dir, mediaName string) (string, bool) {
	m.mu.Lock()
	table, ok := m.titles[dir]
	if !ok {
		table = m.scanTitles(dir)
		m.titles[dir] = table
	}
	m.mu.Unlock()

	path, ok := table[NormalizeTitle(mediaName)]
	return path, ok
}

func (m *Matcher) scanTitles(dir string) map[string]string {
	table := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		m.logger.Warn("title scan failed", logging.String("dir", dir), logging.Error(err))
		return table
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := ParseFile(path)
		if err != nil {
			m.logger.Debug("unreadable metadata document during title scan",
				logging.String("path", path),
				logging.Error(err))
			continue
		}
		title := NormalizeTitle(doc.Title)
		if title == "" {
			continue
		}
		// First document naming a title wins, matching the directory order
		// the export produced.
		if _, exists := table[title]; !exists {
			table[title] = path
		}
	}
	return table
}
