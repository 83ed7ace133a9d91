package sidecar

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// disambiguationSuffix matches the trailing "__<n>" token exports append to
// otherwise colliding names, e.g. "IMG_0001__2.jpg".
var disambiguationSuffix = regexp.MustCompile(`__\d+(\.[^.]*)?$`)

var caseFolder = cases.Fold()

// NormalizeTitle canonicalizes a declared sidecar title or a media file name
// for fallback association: Unicode canonical composition, case folding, and
// removal of the disambiguation suffix. Decomposed and precomposed spellings
// of the same name compare equal afterward.
func NormalizeTitle(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = disambiguationSuffix.ReplaceAllString(name, "$1")
	name = norm.NFC.String(name)
	return caseFolder.String(name)
}
