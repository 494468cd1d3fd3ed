package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// watermarkFile is the sidecar inside the sync root holding the timestamp
// of the last completed sync.
const watermarkFile = ".last-sync-time"

// ReadWatermark loads the sync watermark. ok is false when no watermark
// exists yet (first run).
func ReadWatermark(syncDir string) (t time.Time, ok bool, err error) {
	data, err := os.ReadFile(filepath.Join(syncDir, watermarkFile))
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read watermark: %w", err)
	}

	t, err = time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse watermark: %w", err)
	}
	return t, true, nil
}

// WriteWatermark persists the sync watermark. Only called after a clean
// full-scope run; tag runs and runs with failed records keep the previous
// baseline.
func WriteWatermark(syncDir string, t time.Time) error {
	if err := os.MkdirAll(syncDir, 0o755); err != nil {
		return fmt.Errorf("create sync dir: %w", err)
	}
	data := []byte(t.UTC().Format(time.RFC3339) + "\n")
	if err := os.WriteFile(filepath.Join(syncDir, watermarkFile), data, 0o644); err != nil {
		return fmt.Errorf("write watermark: %w", err)
	}
	return nil
}
