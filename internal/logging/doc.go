// Package logging constructs the shared slog logger and provides typed
// attribute helpers used across shoebox components.
package logging
