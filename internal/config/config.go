package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file-location configuration.
type Paths struct {
	SourceDir  string `toml:"source_dir"`
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
	IndexLog   string `toml:"index_log"`
	BadFileLog string `toml:"bad_file_log"`
	Catalog    string `toml:"catalog"`
}

// Organize contains knobs for the classification and placement behavior.
type Organize struct {
	// SuspectYear overrides the contamination-detection threshold. Zero means
	// "the calendar year at run start". It is a threshold, never evidence.
	SuspectYear int `toml:"suspect_year"`
	// UseMediaProperty enables the optional OS-level media property probe as a
	// confirmed-tier evidence source between embedded tags and filenames.
	// Enabling it changes classification outcomes; off by default.
	UseMediaProperty bool `toml:"use_media_property"`
	// SupplementalSuffix is the token cloud exports insert before ".json" on
	// sidecar files, e.g. "supplemental-metadata".
	SupplementalSuffix string `toml:"supplemental_suffix"`
	// ExtraExtensions extends the media extension allow-list (dot optional).
	ExtraExtensions []string `toml:"extra_extensions"`
	// MinFreeSpaceGiB aborts a run in preflight when the library filesystem
	// has less free space than this.
	MinFreeSpaceGiB int `toml:"min_free_space_gib"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration for shoebox.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Organize Organize `toml:"organize"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() string {
	return "~/.config/shoebox/config.toml"
}

// Load reads the config file at path, overlaying it on defaults. A missing
// file is not an error; defaults apply. The returned config is normalized
// and validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolved, err := ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	if resolved == "" {
		resolved, err = ExpandPath(DefaultConfigPath())
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteSample writes the embedded sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	resolved, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(resolved); err == nil {
		return fmt.Errorf("config file already exists at %s", resolved)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(resolved, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves a leading tilde against the user home directory and
// makes the result absolute. Empty input stays empty.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	return abs, nil
}

func (c *Config) normalize() error {
	fields := []*string{
		&c.Paths.SourceDir,
		&c.Paths.LibraryDir,
		&c.Paths.LogDir,
		&c.Paths.IndexLog,
		&c.Paths.BadFileLog,
		&c.Paths.Catalog,
	}
	for _, field := range fields {
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Organize.SupplementalSuffix = strings.Trim(strings.TrimSpace(c.Organize.SupplementalSuffix), ".")

	cleaned := make([]string, 0, len(c.Organize.ExtraExtensions))
	for _, ext := range c.Organize.ExtraExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			cleaned = append(cleaned, "."+ext)
		}
	}
	c.Organize.ExtraExtensions = cleaned

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}
