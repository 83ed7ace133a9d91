// Package sidecar associates cloud-export metadata documents with media
// files and scores their information content. Association follows a fixed
// rule order ending in a memoized per-directory title scan; the best single
// document wins and documents are never merged.
package sidecar
