// Package retry provides the bounded exponential backoff applied to mutating
// filesystem calls: hash reads, moves, copies, and log appends. Transient
// failures (locks, antivirus scans, network-share hiccups) get a few spaced
// attempts; exhaustion surfaces the last error and the file is skipped.
package retry

import (
	"context"
	"time"
)

// Policy bounds a retry loop.
type Policy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultPolicy mirrors the spacing used for contended sqlite access: short
// first wait, doubling up to a modest cap.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:       5,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     800 * time.Millisecond,
	}
}

// Do runs op until it succeeds, attempts are exhausted, or ctx is cancelled.
// The last error is returned on exhaustion; ctx.Err() on cancellation.
func (p Policy) Do(ctx context.Context, op func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.InitialBackoff
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= p.MaxBackoff {
			delay = next
		}
	}
	return lastErr
}
