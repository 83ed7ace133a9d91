package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
source_dir = %q
library_dir = %q
log_dir = %q
index_log = %q
bad_file_log = %q
catalog = %q

[organize]
min_free_space_gib = 0

[logging]
level = "error"
`,
		filepath.Join(base, "source"),
		filepath.Join(base, "library"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "state", "index.tsv"),
		filepath.Join(base, "state", "bad_files.tsv"),
		filepath.Join(base, "state", "catalog.db"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(base, "source"), 0o755); err != nil {
		t.Fatal(err)
	}
	return configPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	output, err := runCLI(t)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"organize", "index", "report", "status", "config"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestConfigInitAndShow(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")

	output, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Errorf("init output missing target path: %q", output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}

	output, err = runCLI(t, "--config", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(output, "supplemental_suffix") {
		t.Errorf("show output missing organize settings: %q", output)
	}
}

func TestOrganizeAndReportEndToEnd(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	mediaPath := filepath.Join(base, "source", "IMG_20140512_1000.jpg")
	if err := os.WriteFile(mediaPath, []byte("bytes-a"), 0o644); err != nil {
		t.Fatal(err)
	}
	mod := time.Date(2018, time.July, 1, 10, 0, 0, 0, time.UTC)
	if err := os.Chtimes(mediaPath, mod, mod); err != nil {
		t.Fatal(err)
	}

	output, err := runCLI(t, "--config", configPath, "organize")
	if err != nil {
		t.Fatalf("organize: %v\n%s", err, output)
	}
	if !strings.Contains(output, "1 placed") {
		t.Errorf("unexpected organize output: %q", output)
	}
	if _, err := os.Stat(filepath.Join(base, "library", "2014", "IMG_20140512_1000.jpg")); err != nil {
		t.Fatalf("media not placed: %v", err)
	}

	output, err = runCLI(t, "--config", configPath, "report")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(output, "1") {
		t.Errorf("report output missing counters: %q", output)
	}

	output, err = runCLI(t, "--config", configPath, "index", "list")
	if err != nil {
		t.Fatalf("index list: %v", err)
	}
	if !strings.Contains(output, filepath.Join("2014", "IMG_20140512_1000.jpg")) {
		t.Errorf("index list missing representative: %q", output)
	}

	if _, err := runCLI(t, "--config", configPath, "index", "verify", "--rehash"); err != nil {
		t.Fatalf("index verify: %v", err)
	}
}

func TestStatusFailsForMissingSource(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	if err := os.Remove(filepath.Join(base, "source")); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "--config", configPath, "status"); err == nil {
		t.Fatal("expected status to report failing checks")
	}
}
