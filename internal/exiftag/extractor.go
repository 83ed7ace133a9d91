// Package exiftag implements the timestamp-extraction capability over
// embedded EXIF data. It is restricted to formats known to carry such tags
// and reports absence instead of failing: undecodable bytes simply yield no
// evidence.
package exiftag

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// capableExtensions lists the JPEG/TIFF-family formats goexif can decode;
// the raw formats here are TIFF containers.
var capableExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".tif": {}, ".tiff": {},
	".dng": {}, ".nef": {}, ".cr2": {}, ".arw": {},
}

// Extractor reads capture timestamps from embedded tags.
type Extractor struct{}

// New returns an Extractor.
func New() Extractor {
	return Extractor{}
}

// TryExtractCaptureTime returns the embedded capture time of the file at
// path, or absence when the format cannot carry one or decoding fails.
func (Extractor) TryExtractCaptureTime(path string) (time.Time, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := capableExtensions[ext]; !ok {
		return time.Time{}, false
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	meta, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}
	ts, err := meta.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
