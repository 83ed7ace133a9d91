package evidence

import (
	"log/slog"
	"strconv"
	"time"

	"shoebox/internal/logging"
	"shoebox/internal/media"
	"shoebox/internal/sidecar"
)

// TagExtractor is the external timestamp-extraction capability. It must be
// restricted internally to formats known to embed capture-time tags, and it
// must report absence instead of failing.
type TagExtractor interface {
	TryExtractCaptureTime(path string) (time.Time, bool)
}

// PropertyProbe is the optional OS-level media property lookup. Best-effort:
// absence, not errors.
type PropertyProbe interface {
	MediaCreationTime(path string) (time.Time, bool)
}

// Resolver turns a media candidate plus its matched sidecar into a single
// year decision. It is a pure function of its evidence inputs and the
// suspect year: identical inputs always yield the identical decision.
type Resolver struct {
	tags        TagExtractor
	probe       PropertyProbe
	useProbe    bool
	suspectYear int
	currentYear int
	logger      *slog.Logger
}

// Options configures resolver construction.
type Options struct {
	Tags TagExtractor
	// Probe is consulted only when UseProbe is also set. Enabling the probe
	// inserts a confirmed-tier source between embedded tags and filenames
	// and therefore changes outcomes; it is an explicit switch, not a
	// silent default.
	Probe    PropertyProbe
	UseProbe bool
	// SuspectYear is the contamination threshold; zero means the current
	// calendar year.
	SuspectYear int
	Logger      *slog.Logger
}

// NewResolver constructs a resolver.
func NewResolver(opts Options) *Resolver {
	current := time.Now().Year()
	suspect := opts.SuspectYear
	if suspect == 0 {
		suspect = current
	}
	return &Resolver{
		tags:        opts.Tags,
		probe:       opts.Probe,
		useProbe:    opts.UseProbe && opts.Probe != nil,
		suspectYear: suspect,
		currentYear: current,
		logger:      logging.NewComponentLogger(opts.Logger, "evidence"),
	}
}

// SuspectYear exposes the contamination threshold in effect.
func (r *Resolver) SuspectYear() int {
	return r.suspectYear
}

// Resolve applies the strict evidence priority chain. Each step is attempted
// only when the previous yielded nothing; any step that would confirm the
// suspect year is downgraded to Uncertain with the contamination tag.
func (r *Resolver) Resolve(c media.Candidate, doc *sidecar.Document) Decision {
	fsYear := yearString(c.ModTime.Year())

	if doc != nil {
		if ts, ok := doc.PrimaryTime(); ok {
			return r.confirm(ts.UTC().Year(), SourcePrimaryMetadata, fsYear)
		}
	}

	if r.tags != nil {
		if ts, ok := r.tags.TryExtractCaptureTime(c.Path); ok {
			return r.confirm(ts.Year(), SourceEmbeddedTag, fsYear)
		}
	}

	if r.useProbe {
		if ts, ok := r.probe.MediaCreationTime(c.Path); ok {
			return r.confirm(ts.Year(), SourceMediaProperty, fsYear)
		}
	}

	if year, ok := yearFromFilename(c.Name(), r.currentYear); ok {
		return r.confirm(year, SourceFilename, fsYear)
	}

	if doc != nil {
		if ts, ok := doc.SecondaryTime(); ok {
			// Secondary timestamps reflect upload time, not capture time.
			// They are never promoted to Confirmed.
			return Decision{
				Status: StatusUncertain,
				Year:   yearString(ts.UTC().Year()),
				Source: SourceSecondaryMetadata,
				FsYear: fsYear,
			}
		}
	}

	return Decision{
		Status: StatusUncertain,
		Year:   fsYear,
		Source: SourceFilesystemFallback,
		FsYear: fsYear,
	}
}

func (r *Resolver) confirm(year int, source Source, fsYear string) Decision {
	if year == r.suspectYear {
		// A cluster of "this instant" years is itself evidence of broken
		// provenance, not of genuine capture dates.
		r.logger.Debug("contamination guard downgraded decision",
			logging.String("source", string(source)),
			logging.Int("year", year))
		return Decision{
			Status: StatusUncertain,
			Year:   yearString(year),
			Source: SourceContaminationGuard,
			FsYear: fsYear,
		}
	}
	return Decision{
		Status: StatusConfirmed,
		Year:   yearString(year),
		Source: source,
		FsYear: fsYear,
	}
}

func yearString(year int) string {
	return strconv.Itoa(year)
}
