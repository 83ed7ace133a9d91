// Package healer retroactively relocates a previously placed representative
// when stronger, re-verified evidence contradicts its current year folder.
// The representative's own evidence is re-derived from the representative
// file itself; a duplicate's decision only triggers the re-check and never
// supplies the destination. That two-sided re-check is what keeps one
// contaminated duplicate from corrupting a correct representative.
package healer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"shoebox/internal/evidence"
	"shoebox/internal/faults"
	"shoebox/internal/fileutil"
	"shoebox/internal/index"
	"shoebox/internal/logging"
	"shoebox/internal/media"
	"shoebox/internal/retry"
	"shoebox/internal/sidecar"
)

// Result reports what a healing attempt did. A refusal is a logged no-op,
// not an error.
type Result struct {
	Relocated bool
	Reason    string
	From      string // relative, set when relocated
	To        string // relative, set when relocated
}

// Healer re-evaluates stored representatives against fresh evidence.
type Healer struct {
	root        string
	resolver    *evidence.Resolver
	matcher     *sidecar.Matcher
	ix          *index.Index
	policy      retry.Policy
	currentYear int
	logger      *slog.Logger
}

// New constructs a healer rooted at the library directory.
func New(root string, resolver *evidence.Resolver, matcher *sidecar.Matcher, ix *index.Index, logger *slog.Logger) *Healer {
	return &Healer{
		root:        root,
		resolver:    resolver,
		matcher:     matcher,
		ix:          ix,
		policy:      retry.DefaultPolicy(),
		currentYear: time.Now().Year(),
		logger:      logging.NewComponentLogger(logger, "healer"),
	}
}

// Heal decides whether the representative for hash must move, given a newly
// computed Confirmed decision for a duplicate sighting of the same hash.
func (h *Healer) Heal(ctx context.Context, hash string, dup evidence.Decision) (Result, error) {
	record, ok := h.ix.Lookup(hash)
	if !ok {
		return Result{}, fmt.Errorf("healer: no index record for hash %s", hash)
	}

	repYear, inYearFolder := yearFolder(record.Path)
	future := inYearFolder && repYear > h.currentYear
	disagrees := dup.Confirmed() && (!inYearFolder || dup.Year != strconv.Itoa(repYear))
	if !future && !disagrees {
		return h.refuse(record, "representative placement matches the new evidence"), nil
	}

	repDecision, err := h.rederive(record)
	if err != nil {
		return Result{}, err
	}
	if !repDecision.Confirmed() {
		// Moving on a duplicate's word alone would reintroduce the
		// contamination this re-check exists to prevent.
		return h.refuse(record, "representative evidence did not re-verify as confirmed"), nil
	}
	if inYearFolder && repDecision.Year == strconv.Itoa(repYear) {
		return h.refuse(record, "representative already agrees with its own evidence"), nil
	}

	return h.relocate(ctx, hash, record, repDecision.Year)
}

// rederive recomputes the representative's own year decision from the
// representative file and its retained sidecar.
func (h *Healer) rederive(record index.Record) (evidence.Decision, error) {
	abs := filepath.Join(h.root, record.Path)
	info, err := os.Stat(abs)
	if err != nil {
		return evidence.Decision{}, fmt.Errorf("healer: stat representative %s: %w", record.Path, err)
	}
	kind, ok := media.ClassifyExtension(filepath.Base(abs), nil)
	if !ok {
		kind = media.KindImage
	}
	cand := media.Candidate{Path: abs, Kind: kind, ModTime: info.ModTime()}
	match := h.matcher.Match(abs)
	return h.resolver.Resolve(cand, match.Doc), nil
}

func (h *Healer) relocate(ctx context.Context, hash string, record index.Record, targetYear string) (Result, error) {
	srcAbs := filepath.Join(h.root, record.Path)
	destAbs, err := fileutil.UniquePath(filepath.Join(h.root, targetYear, filepath.Base(record.Path)))
	if err != nil {
		return Result{}, faults.Wrap(faults.ErrMoveOrCopy, "healer", "probe destination", record.Path, err)
	}

	if err := h.policy.Do(ctx, func() error { return fileutil.MoveFile(srcAbs, destAbs) }); err != nil {
		return Result{}, faults.Wrap(faults.ErrMoveOrCopy, "healer", "relocate representative", record.Path, err)
	}

	srcSidecar := srcAbs + ".json"
	if _, err := os.Stat(srcSidecar); err == nil {
		if err := h.policy.Do(ctx, func() error { return fileutil.MoveFile(srcSidecar, destAbs+".json") }); err != nil {
			return Result{}, faults.Wrap(faults.ErrMoveOrCopy, "healer", "relocate sidecar", record.Path, err)
		}
	}

	newRel, err := filepath.Rel(h.root, destAbs)
	if err != nil {
		return Result{}, fmt.Errorf("healer: relativize %s: %w", destAbs, err)
	}
	if err := h.ix.Update(ctx, hash, newRel, record.Score); err != nil {
		return Result{}, err
	}

	h.logger.Info("relocated representative",
		logging.String("from", record.Path),
		logging.String("to", newRel))
	return Result{Relocated: true, From: record.Path, To: newRel}, nil
}

func (h *Healer) refuse(record index.Record, reason string) Result {
	h.logger.Info("healing refused",
		logging.String("representative", record.Path),
		logging.String("reason", reason))
	return Result{Reason: reason}
}

// yearFolder extracts the leading 4-digit year component of a representative
// path; quarantine paths report false.
func yearFolder(relPath string) (int, bool) {
	first := relPath
	for i := 0; i < len(relPath); i++ {
		if os.IsPathSeparator(relPath[i]) {
			first = relPath[:i]
			break
		}
	}
	if len(first) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(first)
	if err != nil || year < 1000 {
		return 0, false
	}
	return year, true
}
