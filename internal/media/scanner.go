package media

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Scan walks root and yields every allow-listed media file to fn in
// lexical walk order. Sidecar JSON documents and hidden directories are
// skipped. fn returning an error stops the walk.
func Scan(root string, extra []string, fn func(Candidate) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		kind, ok := ClassifyExtension(name, extra)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		return fn(Candidate{Path: path, Kind: kind, ModTime: info.ModTime()})
	})
}
