package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/famomatic/hlsfetch/internal/downloader"
	"github.com/famomatic/hlsfetch/internal/manifest"
	"github.com/famomatic/hlsfetch/internal/muxer"
	"github.com/famomatic/hlsfetch/internal/retry"
)

const tracerName = "github.com/famomatic/hlsfetch/client"

// Client resolves HLS lesson manifests and downloads them to disk.
type Client struct {
	config  Config
	fetcher downloader.Fetcher
	muxer   muxer.Muxer
	logger  *zap.Logger
	tracer  trace.Tracer
}

// New creates a new download client.
func New(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = defaultHTTPClient(config.ProxyURL, config.Timeout, config.CookieJar)
	} else if config.CookieJar != nil && config.HTTPClient.Jar == nil {
		hc := *config.HTTPClient
		hc.Jar = config.CookieJar
		config.HTTPClient = &hc
	}

	c := &Client{
		config:  config,
		fetcher: config.Fetcher,
		muxer:   config.Muxer,
		logger:  config.Logger,
		tracer:  config.Tracer,
	}
	if c.fetcher == nil {
		c.fetcher = downloader.NewHTTPFetcher(config.HTTPClient, config.fetcherConfig())
	}
	if c.muxer == nil {
		c.muxer = muxer.UnavailableMuxer{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// ResolveManifest fetches the master playlist at manifestURL and resolves its
// entries. Variants rejected for a malformed RESOLUTION are logged and left
// out.
func (c *Client) ResolveManifest(ctx context.Context, manifestURL string) (manifest.Resolved, error) {
	return c.resolveManifest(ctx, c.logger, c.retryFor(c.logger), manifestURL)
}

// SelectEntry resolves manifestURL and picks the entry for tier, falling back
// to the highest entry.
func (c *Client) SelectEntry(ctx context.Context, manifestURL string, tier Tier) (manifest.Entry, error) {
	return c.selectEntry(ctx, c.logger, c.retryFor(c.logger), manifestURL, tier)
}

func (c *Client) resolveManifest(ctx context.Context, log *zap.Logger, exec retry.Executor, manifestURL string) (manifest.Resolved, error) {
	u, err := parseManifestURL(manifestURL)
	if err != nil {
		return manifest.Resolved{}, err
	}

	content, err := downloader.FetchText(ctx, c.fetcher, exec, u)
	if err != nil {
		return manifest.Resolved{}, fmt.Errorf("fetch master manifest: %w", err)
	}
	elements, err := manifest.Extract(content, u)
	if err != nil {
		return manifest.Resolved{}, fmt.Errorf("parse master manifest: %w", err)
	}
	for _, rejected := range elements.Rejected {
		log.Warn("stream variant rejected", zap.String("manifest_url", manifestURL), zap.Error(rejected))
	}

	resolved := manifest.ResolveElements(elements)
	log.Debug("manifest resolved",
		zap.Int("streams", len(elements.Streams)),
		zap.Int("audio", len(elements.Audio)),
		zap.Int("subtitles", len(elements.Subtitles)))
	return resolved, nil
}

func (c *Client) selectEntry(ctx context.Context, log *zap.Logger, exec retry.Executor, manifestURL string, tier Tier) (manifest.Entry, error) {
	resolved, err := c.resolveManifest(ctx, log, exec, manifestURL)
	if err != nil {
		return manifest.Entry{}, err
	}
	entry, ok := resolved.SelectPreferredOrFallback(tier)
	if !ok {
		return manifest.Entry{}, fmt.Errorf("%w: %s", ErrNoPlayableEntry, manifestURL)
	}
	if entry.Tier() != tier {
		log.Info("preferred resolution not available, using fallback",
			zap.Stringer("preferred", tier),
			zap.Stringer("selected", entry.Tier()))
	}
	return entry, nil
}

// retryFor returns the configured executor with retries counted and logged.
// Parse errors are never retried.
func (c *Client) retryFor(log *zap.Logger) retry.Executor {
	exec := c.config.Retry
	hook := exec.OnRetry
	retryable := exec.Retryable
	m := c.config.Metrics
	exec.Retryable = func(err error) bool {
		if isParseError(err) {
			return false
		}
		return retryable == nil || retryable(err)
	}
	exec.OnRetry = func(attempt int, err error) {
		m.ObserveRetry()
		log.Warn("attempt failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		if hook != nil {
			hook(attempt, err)
		}
	}
	return exec
}

func isParseError(err error) bool {
	var parseErr *manifest.ParseError
	var valueErr *manifest.ValueParseError
	return errors.As(err, &parseErr) || errors.As(err, &valueErr)
}

func parseManifestURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: manifest url %q must be absolute", ErrInvalidInput, raw)
	}
	return u, nil
}
