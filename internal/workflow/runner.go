// Package workflow drives a full organize run: preflight, source scan,
// per-file placement, and run bookkeeping. Individual file failures are
// recorded and skipped; the run keeps going.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
	"shoebox/internal/evidence"
	"shoebox/internal/exiftag"
	"shoebox/internal/faults"
	"shoebox/internal/healer"
	"shoebox/internal/index"
	"shoebox/internal/logging"
	"shoebox/internal/media"
	"shoebox/internal/placement"
	"shoebox/internal/preflight"
	"shoebox/internal/sidecar"
)

// ErrPreflightFailed aborts a run before any file is touched.
var ErrPreflightFailed = errors.New("preflight checks failed")

// Summary reports what one run did.
type Summary struct {
	RunID           string
	DryRun          bool
	Processed       int
	Placed          int
	Duplicates      int
	Healed          int
	SidecarUpgrades int
	Failures        int
	Elapsed         time.Duration
}

// Runner owns the lifecycle of organize runs for one configuration.
type Runner struct {
	cfg   *config.Config
	store *catalog.Store
	base  *slog.Logger
}

// NewRunner constructs a runner. The catalog store may be nil, in which case
// run history is not persisted.
func NewRunner(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:   cfg,
		store: store,
		base:  logger,
	}
}

// Run executes one organize pass over the source directory. When dryRun is
// set, no file is moved and the index is not written, but every decision is
// computed and reported.
func (r *Runner) Run(ctx context.Context, dryRun bool) (Summary, error) {
	started := time.Now()
	runID := uuid.NewString()
	summary := Summary{RunID: runID, DryRun: dryRun}

	// Every log line of this run carries the run ID, across components.
	runBase := r.base.With(logging.String(logging.FieldRunID, runID))
	log := logging.NewComponentLogger(runBase, "workflow")

	log.Info("starting organize run",
		logging.String("source_dir", r.cfg.Paths.SourceDir),
		logging.String("library_dir", r.cfg.Paths.LibraryDir),
		logging.Bool("dry_run", dryRun))

	checks := preflight.RunAll(r.cfg)
	for _, check := range checks {
		if check.Passed {
			continue
		}
		log.Error("preflight check failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail))
	}
	if !preflight.Passed(checks) {
		return summary, ErrPreflightFailed
	}

	// Dry runs compute and report but leave every durable artifact alone:
	// no catalog rows, no bad-file records, no index appends.
	store := r.store
	if dryRun {
		store = nil
	}

	if store != nil {
		if err := store.BeginRun(ctx, catalog.Run{
			ID:         runID,
			StartedAt:  started,
			SourceDir:  r.cfg.Paths.SourceDir,
			LibraryDir: r.cfg.Paths.LibraryDir,
			DryRun:     dryRun,
		}); err != nil {
			return summary, fmt.Errorf("record run start: %w", err)
		}
	}

	var badLog *faults.BadFileLog
	if !dryRun {
		var err error
		badLog, err = faults.OpenBadFileLog(r.cfg.Paths.BadFileLog)
		if err != nil {
			return summary, err
		}
		defer badLog.Close()
	}

	ix, err := index.Open(r.cfg.Paths.IndexLog, runBase)
	if err != nil {
		return summary, err
	}
	defer ix.Close()

	matcher := sidecar.NewMatcher(r.cfg.Organize.SupplementalSuffix, runBase)
	resolver := evidence.NewResolver(evidence.Options{
		Tags:        exiftag.New(),
		UseProbe:    r.cfg.Organize.UseMediaProperty,
		SuspectYear: r.cfg.Organize.SuspectYear,
		Logger:      runBase,
	})
	heal := healer.New(r.cfg.Paths.LibraryDir, resolver, matcher, ix, runBase)
	engine := placement.NewEngine(r.cfg.Paths.LibraryDir, matcher, resolver, heal, ix, dryRun, runBase)

	walkErr := media.Scan(r.cfg.Paths.SourceDir, r.cfg.Organize.ExtraExtensions, func(cand media.Candidate) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Processed++
		outcome, procErr := engine.Process(ctx, cand)
		if procErr != nil {
			summary.Failures++
			log.Warn("file failed, skipping",
				logging.String("path", cand.Path),
				logging.Error(procErr))
			if badLog != nil {
				if logErr := badLog.RecordError(cand.Path, procErr); logErr != nil {
					log.Error("bad-file log write failed", logging.Error(logErr))
				}
			}
			recordEvent(ctx, store, log, catalog.Event{
				RunID:      runID,
				SourcePath: cand.Path,
				Action:     "failed",
				Detail:     procErr.Error(),
			})
			return nil
		}

		switch outcome.Action {
		case placement.ActionPlaced:
			summary.Placed++
		case placement.ActionDuplicate:
			summary.Duplicates++
		}
		if outcome.Healed != nil && outcome.Healed.Relocated {
			summary.Healed++
		}
		if outcome.SidecarUpgraded {
			summary.SidecarUpgrades++
		}

		recordEvent(ctx, store, log, catalog.Event{
			RunID:      runID,
			SourcePath: cand.Path,
			Hash:       outcome.Hash,
			Action:     string(outcome.Action),
			Status:     string(outcome.Decision.Status),
			Evidence:   string(outcome.Decision.Source),
			Year:       outcome.Decision.EffectiveYear(),
			DestPath:   outcome.DestPath,
		})
		return nil
	})

	summary.Elapsed = time.Since(started)

	if store != nil {
		finishErr := store.FinishRun(ctx, catalog.Run{
			ID:              runID,
			FinishedAt:      time.Now(),
			Processed:       summary.Processed,
			Placed:          summary.Placed,
			Duplicates:      summary.Duplicates,
			Healed:          summary.Healed,
			SidecarUpgrades: summary.SidecarUpgrades,
			Failures:        summary.Failures,
		})
		if finishErr != nil {
			log.Error("record run finish failed", logging.Error(finishErr))
		}
	}

	log.Info("organize run finished",
		logging.Int("processed", summary.Processed),
		logging.Int("placed", summary.Placed),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("healed", summary.Healed),
		logging.Int("sidecar_upgrades", summary.SidecarUpgrades),
		logging.Int("failures", summary.Failures),
		logging.Duration("elapsed", summary.Elapsed))

	if walkErr != nil {
		return summary, fmt.Errorf("scan source: %w", walkErr)
	}
	return summary, nil
}

func recordEvent(ctx context.Context, store *catalog.Store, log *slog.Logger, event catalog.Event) {
	if store == nil {
		return
	}
	if err := store.RecordEvent(ctx, event); err != nil {
		log.Error("catalog event write failed", logging.Error(err))
	}
}
