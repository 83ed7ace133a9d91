package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for single-file failures. Every failure is local and
// recoverable at file granularity; only ErrConfiguration aborts a run.
var (
	ErrHashComputation    = errors.New("hash computation failure")
	ErrMoveOrCopy         = errors.New("move or copy failure")
	ErrSidecarAssociation = errors.New("sidecar association failure")
	ErrMetadataParse      = errors.New("metadata parse failure")
	ErrIndexCorrupt       = errors.New("index log corrupt")
	ErrConfiguration      = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrMoveOrCopy
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to the tag recorded in the bad-file log.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrHashComputation):
		return "hash"
	case errors.Is(err, ErrMoveOrCopy):
		return "move"
	case errors.Is(err, ErrSidecarAssociation):
		return "sidecar"
	case errors.Is(err, ErrMetadataParse):
		return "metadata"
	case errors.Is(err, ErrIndexCorrupt):
		return "index"
	case errors.Is(err, ErrConfiguration):
		return "config"
	default:
		return "other"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
