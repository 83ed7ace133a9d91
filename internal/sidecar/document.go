package sidecar

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Document is the metadata sidecar a cloud export writes next to a media
// file. All fields are optional; timestamps arrive as epoch-second strings.
type Document struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Favorited   bool       `json:"favorited"`
	PhotoTaken  *TimeField `json:"photoTakenTime"`
	Creation    *TimeField `json:"creationTime"`
	Geo         *GeoField  `json:"geoData"`
	People      []Person   `json:"people"`
}

// TimeField carries an epoch-second timestamp plus its formatted rendering.
type TimeField struct {
	Timestamp string `json:"timestamp"`
	Formatted string `json:"formatted"`
}

// GeoField carries the export's geolocation block.
type GeoField struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Person is one people-tag entry.
type Person struct {
	Name string `json:"name"`
}

// ParseFile decodes the sidecar document at path. A malformed or truncated
// document is an error; callers treat it as "no evidence from this source".
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sidecar %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode sidecar %s: %w", path, err)
	}
	return &doc, nil
}

// PrimaryTime returns the capture timestamp when present and parseable.
func (d *Document) PrimaryTime() (time.Time, bool) {
	return d.PhotoTaken.parse()
}

// SecondaryTime returns the weak-trust creation timestamp when present.
// Creation timestamps reflect ingestion or upload time, never capture time.
func (d *Document) SecondaryTime() (time.Time, bool) {
	return d.Creation.parse()
}

// HasGeo reports whether the document carries a non-degenerate location.
// Exactly (0, 0) is the export's stand-in for "unknown".
func (d *Document) HasGeo() bool {
	return d.Geo != nil && !(d.Geo.Latitude == 0 && d.Geo.Longitude == 0)
}

func (f *TimeField) parse() (time.Time, bool) {
	if f == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(f.Timestamp)
	if raw == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}
