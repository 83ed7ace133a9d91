package media

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind classifies a candidate's extension.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

// Candidate is one media file awaiting classification and placement.
// Ephemeral: produced by the scanner, consumed once.
type Candidate struct {
	Path    string
	Kind    Kind
	ModTime time.Time
}

// Name returns the file name component of the candidate path.
func (c Candidate) Name() string {
	return filepath.Base(c.Path)
}

// Dir returns the directory containing the candidate.
func (c Candidate) Dir() string {
	return filepath.Dir(c.Path)
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".webp": {},
	".heic": {}, ".heif": {}, ".tif": {}, ".tiff": {},
	// Raw formats travel with the images they came from.
	".dng": {}, ".cr2": {}, ".nef": {}, ".arw": {}, ".orf": {}, ".raf": {}, ".rw2": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".m4v": {},
	".mpg": {}, ".mpeg": {}, ".3gp": {}, ".wmv": {}, ".webm": {},
}

// ClassifyExtension reports the media kind for a file name, considering the
// built-in allow-list plus any configured extras (treated as images).
func ClassifyExtension(name string, extra []string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := imageExtensions[ext]; ok {
		return KindImage, true
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo, true
	}
	for _, e := range extra {
		if ext == e {
			return KindImage, true
		}
	}
	return 0, false
}
