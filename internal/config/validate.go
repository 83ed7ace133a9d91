package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.SourceDir == "" {
		return errors.New("paths.source_dir must be set")
	}
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.IndexLog == "" {
		return errors.New("paths.index_log must be set")
	}
	if c.Paths.BadFileLog == "" {
		return errors.New("paths.bad_file_log must be set")
	}
	if c.Paths.SourceDir == c.Paths.LibraryDir {
		return errors.New("paths.source_dir and paths.library_dir must differ")
	}
	return nil
}

func (c *Config) validateOrganize() error {
	if c.Organize.SuspectYear != 0 {
		if c.Organize.SuspectYear < 1900 || c.Organize.SuspectYear > time.Now().Year()+100 {
			return fmt.Errorf("organize.suspect_year %d is outside a plausible range", c.Organize.SuspectYear)
		}
	}
	if c.Organize.MinFreeSpaceGiB < 0 {
		return errors.New("organize.min_free_space_gib must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
