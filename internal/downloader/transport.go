package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/famomatic/hlsfetch/internal/metrics"
)

// FetcherConfig controls request headers and pacing for HTTPFetcher.
type FetcherConfig struct {
	// Origin and Referer are sent on every request when set. Course CDNs
	// reject segment requests that do not carry them.
	Origin    string
	Referer   string
	UserAgent string
	// Headers are additional request headers.
	Headers http.Header

	// RequestsPerSecond caps the request rate. Zero or negative disables it.
	RequestsPerSecond float64

	Metrics *metrics.Collector
}

// FetchError is a transport-level failure: DNS, connection, TLS, or a body
// that could not be read.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPStatusError indicates a non-200 response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetch %s: status=%d", e.URL, e.StatusCode)
}

// IsNetworkError reports whether err is a fetch failure (transport or status).
func IsNetworkError(err error) bool {
	var fetchErr *FetchError
	var statusErr *HTTPStatusError
	return errors.As(err, &fetchErr) || errors.As(err, &statusErr)
}

// HTTPFetcher is the Fetcher backed by net/http.
type HTTPFetcher struct {
	client  *http.Client
	headers http.Header
	limiter *rate.Limiter
	metrics *metrics.Collector
}

// NewHTTPFetcher returns an HTTPFetcher. A nil client uses http.DefaultClient.
func NewHTTPFetcher(client *http.Client, cfg FetcherConfig) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &HTTPFetcher{
		client:  client,
		headers: buildHeaders(cfg),
		limiter: limiter,
		metrics: cfg.Metrics,
	}
}

// Open issues a GET for u. The caller closes the returned body.
func (f *HTTPFetcher) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	rawURL := u.String()
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: rawURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	for k, vals := range f.headers {
		req.Header[k] = append([]string(nil), vals...)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.metrics.ObserveFetch(metrics.OutcomeTransportError)
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		f.metrics.ObserveFetch(metrics.OutcomeHTTPError)
		return nil, &HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	f.metrics.ObserveFetch(metrics.OutcomeOK)
	return resp.Body, nil
}
