// Package placement orchestrates the per-file decision flow: sidecar
// association, year resolution, the content-index check, and the commit
// that moves bytes and mutates the index exactly once per distinct hash.
package placement
