// Package download fetches a remote submission bundle into the input
// directory before extraction.
package download

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dlp-labs/proof-of-contribution/internal/errors"
)

// Fetcher retrieves bundle archives over HTTP.
type Fetcher struct {
	http *http.Client
}

// NewFetcher creates a fetcher with an explicit request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{http: &http.Client{Timeout: timeout}}
}

// Fetch downloads url into destDir under name. A failed download is reported
// as a NetworkError; callers log it and continue with whatever files already
// sit in the input directory.
func (f *Fetcher) Fetch(ctx context.Context, url, destDir, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NewNetworkError("failed to build bundle download request", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return "", errors.NewNetworkError("failed to download bundle", err)
	}
	defer errors.SafeClose(resp.Body, "bundle download body")

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewNetworkError("bundle download returned non-OK status", nil)
	}

	target := filepath.Join(destDir, name)
	out, err := os.Create(target)
	if err != nil {
		return "", errors.WrapError(err, "failed to create bundle file %s", target)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(target)
		return "", errors.NewNetworkError("failed to write downloaded bundle", err)
	}

	if err := out.Close(); err != nil {
		return "", errors.WrapError(err, "failed to close bundle file %s", target)
	}

	slog.Info("Bundle downloaded", "url", url, "path", target)
	return target, nil
}
