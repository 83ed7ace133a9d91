package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"shoebox/internal/config"
)

func TestRunAllHealthyConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(dir, "source")
	cfg.Paths.LibraryDir = filepath.Join(dir, "library")
	cfg.Paths.IndexLog = filepath.Join(dir, "state", "index.tsv")
	cfg.Organize.MinFreeSpaceGiB = 0

	if err := os.MkdirAll(cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatal(err)
	}

	results := RunAll(&cfg)
	if !Passed(results) {
		t.Fatalf("expected all checks to pass, got %+v", results)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(results))
	}
}

func TestCheckSourceDirMissing(t *testing.T) {
	result := CheckSourceDir(filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing source directory")
	}
}

func TestCheckSourceDirNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckSourceDir(path)
	if result.Passed {
		t.Fatal("expected failure for non-directory source")
	}
}

func TestCheckDirectoryWritableCreates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	result := CheckDirectoryWritable("Library directory", path)
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestCheckFileAppendable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "index.tsv")
	result := CheckFileAppendable("Index log", path)
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestCheckFreeSpaceDisabled(t *testing.T) {
	result := CheckFreeSpace(t.TempDir(), 0)
	if !result.Passed {
		t.Fatalf("expected pass when disabled, got %+v", result)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatalf("expected nil results, got %+v", results)
	}
}
