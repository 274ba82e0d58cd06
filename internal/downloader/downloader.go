// Package downloader reads HLS sub-playlists and turns their segments into
// continuous byte streams. All fetches are sequential.
package downloader

import (
	"context"
	"io"
	"net/url"

	"github.com/famomatic/hlsfetch/internal/retry"
)

// Fetcher opens a remote resource for reading. Implementations must return a
// *FetchError or *HTTPStatusError for network failures.
type Fetcher interface {
	Open(ctx context.Context, u *url.URL) (io.ReadCloser, error)
}

// FetchText reads the whole resource at u as text. The open and the read are
// retried together.
func FetchText(ctx context.Context, f Fetcher, exec retry.Executor, u *url.URL) (string, error) {
	return retry.Do(exec, func() (string, error) {
		rc, err := f.Open(ctx, u)
		if err != nil {
			return "", err
		}
		defer rc.Close()
		body, err := io.ReadAll(rc)
		if err != nil {
			return "", &FetchError{URL: u.String(), Err: err}
		}
		return string(body), nil
	})
}

// OpenWithRetry opens u, retrying failed opens.
func OpenWithRetry(ctx context.Context, f Fetcher, exec retry.Executor, u *url.URL) (io.ReadCloser, error) {
	return retry.Do(exec, func() (io.ReadCloser, error) {
		return f.Open(ctx, u)
	})
}
