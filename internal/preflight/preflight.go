// Package preflight runs environment checks before an organize run starts:
// directory access, index log writability, and free space on the library
// filesystem. The checks are shared between the CLI status command and the
// workflow runner.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"shoebox/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckSourceDir(cfg.Paths.SourceDir),
		CheckDirectoryWritable("Library directory", cfg.Paths.LibraryDir),
		CheckFileAppendable("Index log", cfg.Paths.IndexLog),
		CheckFreeSpace(cfg.Paths.LibraryDir, cfg.Organize.MinFreeSpaceGiB),
	}
	return results
}

// Passed reports whether every check in results succeeded.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// CheckSourceDir verifies that the source directory exists and is readable.
func CheckSourceDir(path string) Result {
	const name = "Source directory"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckDirectoryWritable verifies that the directory exists (creating it if
// needed) and is read/writable.
func CheckDirectoryWritable(name, path string) Result {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, err)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFileAppendable verifies the file at path can be opened for append,
// creating parent directories as needed.
func CheckFileAppendable(name, path string) Result {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: create parent: %v)", path, err)}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: open: %v)", path, err)}
	}
	if err := file.Close(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: close: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (appendable)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least
// minFreeGiB gibibytes available.
func CheckFreeSpace(path string, minFreeGiB int) Result {
	const name = "Free space"
	if minFreeGiB <= 0 {
		return Result{Name: name, Passed: true, Detail: "check disabled"}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	availGiB := stat.Bavail * uint64(stat.Bsize) / (1 << 30)
	if availGiB < uint64(minFreeGiB) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%d GiB available, %d GiB required)", path, availGiB, minFreeGiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d GiB available)", path, availGiB)}
}
