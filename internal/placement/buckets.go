package placement

import (
	"fmt"
	"path/filepath"

	"shoebox/internal/evidence"
)

// uncertainRoot is the quarantine subtree for decisions that may not use a
// plain year folder.
const uncertainRoot = "Uncertain"

// targetDir maps a decision to a library-relative folder. Confirmed
// decisions use their year directly; Uncertain decisions quarantine into a
// bucket determined by the evidence source.
func (e *Engine) targetDir(d evidence.Decision) string {
	if d.Confirmed() {
		return d.Year
	}
	switch d.Source {
	case evidence.SourceContaminationGuard:
		return filepath.Join(uncertainRoot, fmt.Sprintf("%d_suspects", e.resolver.SuspectYear()))
	case evidence.SourceSecondaryMetadata:
		return filepath.Join(uncertainRoot, "JSONC_"+d.EffectiveYear())
	case evidence.SourceFilesystemFallback:
		return filepath.Join(uncertainRoot, "FS_"+d.FsYear)
	default:
		// Overflow bucket for unforeseen uncertain sources.
		return uncertainRoot
	}
}
