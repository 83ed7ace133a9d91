package exiftag

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTryExtractCaptureTimeSkipsIncapableFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("not exif"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := New().TryExtractCaptureTime(path); ok {
		t.Fatal("mp4 must not report an embedded tag")
	}
}

func TestTryExtractCaptureTimeToleratesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("definitely not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Undecodable bytes are absence, never an error or panic.
	if _, ok := New().TryExtractCaptureTime(path); ok {
		t.Fatal("garbage bytes must yield no capture time")
	}
}

func TestTryExtractCaptureTimeMissingFile(t *testing.T) {
	if _, ok := New().TryExtractCaptureTime(filepath.Join(t.TempDir(), "gone.jpg")); ok {
		t.Fatal("missing file must yield no capture time")
	}
}
