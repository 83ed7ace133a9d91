package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"shoebox/internal/faults"
	"shoebox/internal/retry"
)

// HashFile computes the hex SHA256 digest of the file's full byte content,
// retrying transient read failures per policy. Two files with an equal
// digest are the same logical asset regardless of name or location.
func HashFile(ctx context.Context, path string, policy retry.Policy) (string, error) {
	var digest string
	err := policy.Do(ctx, func() error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		h := sha256.New()
		if _, err := io.Copy(h, f); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		digest = hex.EncodeToString(h.Sum(nil))
		return nil
	})
	if err != nil {
		return "", faults.Wrap(faults.ErrHashComputation, "index", "hash file", path, err)
	}
	return digest, nil
}
