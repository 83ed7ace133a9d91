// Package index provides content hashing and the durable content-addressed
// map from hash to representative location. The persistence log is
// append-only; the last row per hash wins on reload.
package index
