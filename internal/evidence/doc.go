// Package evidence resolves the year a media file belongs to from multiple
// partially-trusted sources: sidecar timestamps, embedded capture tags, an
// optional OS property probe, filename patterns, and the filesystem as a
// last resort. A contamination guard keeps weak evidence from confirming
// the current run year.
package evidence
