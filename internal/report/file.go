package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFile writes path with owner-only permissions through write.
// Missing parent directories are created.
//
// Content goes to a temporary file in the same directory that is renamed
// over path only when write succeeds. On failure path is left untouched.
func WriteFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// CreateTemp uses mode 0600.
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpPath := f.Name()

	if err := write(f); err != nil {
		_ = f.Close()          //nolint:errcheck // The write error takes precedence
		_ = os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("failed to replace output file: %w", err)
	}

	return nil
}
