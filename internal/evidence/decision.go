package evidence

// Status is the confidence tier of a year decision. Only Confirmed decisions
// may place a file into a plain year folder.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusUncertain Status = "uncertain"
)

// Source identifies the evidence kind that produced a decision.
type Source string

const (
	SourcePrimaryMetadata    Source = "primary_metadata"
	SourceEmbeddedTag        Source = "embedded_tag"
	SourceMediaProperty      Source = "media_property"
	SourceFilename           Source = "filename"
	SourceSecondaryMetadata  Source = "secondary_metadata"
	SourceFilesystemFallback Source = "filesystem_fallback"
	// SourceContaminationGuard tags decisions that a confirmed-tier source
	// produced but whose year equals the suspect year; they are downgraded
	// to Uncertain.
	SourceContaminationGuard Source = "contamination_guard"
)

// Decision is the resolver's verdict for one file. It is produced fresh per
// file and never persisted; only its consequence (a folder placement) is.
type Decision struct {
	Status Status
	// Year is the decided 4-digit year, empty only when no source yielded
	// anything at all and FsYear stands in.
	Year   string
	Source Source
	// FsYear is the filesystem-modification year. Always computed, used for
	// quarantine bucketing and contamination checks, never promoted to
	// Confirmed.
	FsYear string
}

// Confirmed reports whether the decision may use a plain year folder.
func (d Decision) Confirmed() bool {
	return d.Status == StatusConfirmed
}

// EffectiveYear returns Year, falling back to FsYear when no source yielded
// a year.
func (d Decision) EffectiveYear() string {
	if d.Year != "" {
		return d.Year
	}
	return d.FsYear
}
