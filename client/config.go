package client

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/famomatic/hlsfetch/internal/downloader"
	"github.com/famomatic/hlsfetch/internal/metrics"
	"github.com/famomatic/hlsfetch/internal/muxer"
	"github.com/famomatic/hlsfetch/internal/retry"
)

// Config holds configuration for the download client.
type Config struct {
	// HTTPClient is the client used for making requests.
	// If nil, one is built from ProxyURL, Timeout and CookieJar.
	HTTPClient *http.Client

	// ProxyURL is the optional proxy URL to use for requests.
	// If HTTPClient is provided, this field is ignored.
	ProxyURL string

	// Timeout bounds each request. Ignored when HTTPClient is provided.
	Timeout time.Duration

	// CookieJar carries an authenticated course session.
	CookieJar http.CookieJar

	// Origin and Referer are sent with every manifest, playlist and segment
	// request.
	Origin    string
	Referer   string
	UserAgent string
	Headers   http.Header

	// RequestsPerSecond caps the request rate. Zero disables the cap.
	RequestsPerSecond float64

	// Fetcher overrides the HTTP fetcher built from the fields above.
	Fetcher downloader.Fetcher

	// Retry controls attempts and the pause between them for every fetch.
	// The zero value retries 3 times with a 1s pause.
	Retry retry.Executor

	// PreferredTier picks the rendition. TierUnknown selects the highest.
	PreferredTier Tier

	// Muxer combines audio and video. If nil, downloads stop after writing
	// the intermediate .ts files and report muxer.ErrUnavailable.
	Muxer muxer.Muxer

	// OutputDir is the default destination directory. Empty means ".".
	OutputDir string

	// KeepIntermediateFiles keeps the _audio.ts and _video.ts files after a
	// successful mux.
	KeepIntermediateFiles bool

	Metrics *metrics.Collector

	// Logger receives structured job logs. If nil, logging is disabled.
	Logger *zap.Logger

	// Tracer wraps download stages in spans. If nil, the global otel
	// provider is used.
	Tracer trace.Tracer

	// OnDownloadEvent receives stage/phase progress events.
	OnDownloadEvent func(DownloadEvent)
}

func (c Config) fetcherConfig() downloader.FetcherConfig {
	return downloader.FetcherConfig{
		Origin:            c.Origin,
		Referer:           c.Referer,
		UserAgent:         c.UserAgent,
		Headers:           c.Headers,
		RequestsPerSecond: c.RequestsPerSecond,
		Metrics:           c.Metrics,
	}
}
