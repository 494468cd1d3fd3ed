package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Fetcher downloads image assets into the attachments directory. Downloads
// are content-unaware: an existing file at the destination suppresses the
// fetch entirely.
type Fetcher struct {
	dir        string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewFetcher creates a fetcher writing into dir.
func NewFetcher(dir string, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

// Fetch copies the resource at url to {dir}/{filename}. It returns the
// destination path and whether the fetch was skipped (empty url or file
// already present).
func (f *Fetcher) Fetch(ctx context.Context, url, filename string) (string, bool, error) {
	if url == "" {
		return "", true, nil
	}

	dest := filepath.Join(f.dir, filename)
	if _, err := os.Stat(dest); err == nil {
		f.log.WithField("path", dest).Debug("asset already present, skipping")
		return dest, true, nil
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create attachments dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("fetch asset %s: unexpected status %d", url, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", false, fmt.Errorf("create asset file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return "", false, fmt.Errorf("write asset file: %w", err)
	}

	return dest, false, nil
}
