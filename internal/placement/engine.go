package placement

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"shoebox/internal/evidence"
	"shoebox/internal/faults"
	"shoebox/internal/fileutil"
	"shoebox/internal/healer"
	"shoebox/internal/index"
	"shoebox/internal/logging"
	"shoebox/internal/media"
	"shoebox/internal/retry"
	"shoebox/internal/sidecar"
)

// Action classifies what the engine did with a candidate.
type Action string

const (
	// ActionPlaced: first sighting, media moved into the library.
	ActionPlaced Action = "placed"
	// ActionDuplicate: bytes already represented; nothing was copied.
	ActionDuplicate Action = "duplicate"
)

// Outcome reports the engine's handling of one candidate.
type Outcome struct {
	Action   Action
	Hash     string
	Decision evidence.Decision
	// DestPath is the library-relative placement for ActionPlaced.
	DestPath string
	// Healed is set when a duplicate sighting relocated the representative.
	Healed *healer.Result
	// SidecarUpgraded is set when the duplicate's sidecar replaced the
	// representative's.
	SidecarUpgraded bool
}

// Engine decides the final folder for one candidate file and mutates the
// index accordingly. Duplicates never copy bytes again; they can only heal
// the existing representative or upgrade its sidecar.
type Engine struct {
	root     string
	matcher  *sidecar.Matcher
	resolver *evidence.Resolver
	healer   *healer.Healer
	ix       *index.Index
	policy   retry.Policy
	dryRun   bool
	logger   *slog.Logger
}

// NewEngine constructs a placement engine rooted at the library directory.
func NewEngine(root string, matcher *sidecar.Matcher, resolver *evidence.Resolver, heal *healer.Healer, ix *index.Index, dryRun bool, logger *slog.Logger) *Engine {
	return &Engine{
		root:     root,
		matcher:  matcher,
		resolver: resolver,
		healer:   heal,
		ix:       ix,
		policy:   retry.DefaultPolicy(),
		dryRun:   dryRun,
		logger:   logging.NewComponentLogger(logger, "placement"),
	}
}

// Process runs the full per-candidate flow: sidecar association, year
// resolution, index check, then commit or duplicate handling.
func (e *Engine) Process(ctx context.Context, cand media.Candidate) (Outcome, error) {
	hash, err := index.HashFile(ctx, cand.Path, e.policy)
	if err != nil {
		return Outcome{}, err
	}

	match := e.matcher.Match(cand.Path)
	decision := e.resolver.Resolve(cand, match.Doc)

	if record, exists := e.ix.Lookup(hash); exists {
		return e.processDuplicate(ctx, cand, hash, record, match, decision)
	}
	return e.commitNew(ctx, cand, hash, match, decision)
}

func (e *Engine) commitNew(ctx context.Context, cand media.Candidate, hash string, match sidecar.Match, decision evidence.Decision) (Outcome, error) {
	destDir := e.targetDir(decision)
	destAbs, err := fileutil.UniquePath(filepath.Join(e.root, destDir, cand.Name()))
	if err != nil {
		return Outcome{}, faults.Wrap(faults.ErrMoveOrCopy, "placement", "probe destination", cand.Path, err)
	}
	relDest, err := filepath.Rel(e.root, destAbs)
	if err != nil {
		return Outcome{}, fmt.Errorf("relativize %s: %w", destAbs, err)
	}

	outcome := Outcome{Action: ActionPlaced, Hash: hash, Decision: decision, DestPath: relDest}
	if e.dryRun {
		return outcome, nil
	}

	if err := e.policy.Do(ctx, func() error { return fileutil.MoveFile(cand.Path, destAbs) }); err != nil {
		return Outcome{}, faults.Wrap(faults.ErrMoveOrCopy, "placement", "move media", cand.Path, err)
	}
	if match.Found() {
		// The sidecar travels with its media, renamed to match the
		// destination so a rescan of the library re-associates it.
		if err := e.policy.Do(ctx, func() error { return fileutil.MoveFile(match.Path, destAbs+".json") }); err != nil {
			return Outcome{}, faults.Wrap(faults.ErrMoveOrCopy, "placement", "move sidecar", match.Path, err)
		}
	}
	if err := e.ix.Insert(ctx, hash, relDest, match.Score); err != nil {
		return Outcome{}, err
	}

	e.logger.Info("placed media",
		logging.String("source", cand.Path),
		logging.String("dest", relDest),
		logging.String("status", string(decision.Status)),
		logging.String("evidence", string(decision.Source)))
	return outcome, nil
}

func (e *Engine) processDuplicate(ctx context.Context, cand media.Candidate, hash string, record index.Record, match sidecar.Match, decision evidence.Decision) (Outcome, error) {
	outcome := Outcome{Action: ActionDuplicate, Hash: hash, Decision: decision}
	if e.dryRun {
		return outcome, nil
	}

	// The sidecar upgrade runs before healing so the representative's
	// re-derivation can see the better evidence the duplicate brought.
	if match.Found() && match.Score > record.Score {
		repSidecar := filepath.Join(e.root, record.Path) + ".json"
		if err := e.policy.Do(ctx, func() error { return fileutil.CopyFileVerified(match.Path, repSidecar) }); err != nil {
			return Outcome{}, faults.Wrap(faults.ErrMoveOrCopy, "placement", "upgrade sidecar", match.Path, err)
		}
		if err := e.ix.Update(ctx, hash, record.Path, match.Score); err != nil {
			return Outcome{}, err
		}
		outcome.SidecarUpgraded = true
		e.logger.Info("upgraded representative sidecar",
			logging.String("representative", record.Path),
			logging.Int("old_score", record.Score),
			logging.Int("new_score", match.Score))
	}

	if decision.Confirmed() {
		result, err := e.healer.Heal(ctx, hash, decision)
		if err != nil {
			return Outcome{}, err
		}
		outcome.Healed = &result
		if result.Relocated {
			// Healing superseded the record this outcome was built from.
			record, _ = e.ix.Lookup(hash)
		}
	}

	e.logger.Debug("duplicate sighting",
		logging.String("source", cand.Path),
		logging.String("representative", record.Path))
	return outcome, nil
}
