package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/famomatic/hlsfetch/internal/downloader"
	"github.com/famomatic/hlsfetch/internal/playerjs"
)

// VideoReference is one item of a lesson page's player playlist.
type VideoReference = playerjs.VideoReference

// ReferenceRequest describes a download driven by a player playlist item.
type ReferenceRequest struct {
	Reference VideoReference
	// Title overrides Reference.Title.
	Title         string
	OutputDir     string
	PreferredTier Tier
}

// DownloadReference downloads the source of ref matching the preferred tier,
// falling back to its first source. HLS sources go through Download; other
// sources are copied as-is to <title>.<ext> together with the first track.
func (c *Client) DownloadReference(ctx context.Context, req ReferenceRequest) (*DownloadResult, error) {
	tier := req.PreferredTier
	if tier == TierUnknown {
		tier = c.config.PreferredTier
	}
	title := req.Title
	if strings.TrimSpace(title) == "" {
		title = req.Reference.Title
	}

	source, err := req.Reference.SourceFor(tier)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", title, err)
	}
	if source.IsHLS() {
		return c.Download(ctx, DownloadRequest{
			ManifestURL:   source.URL.String(),
			Title:         title,
			OutputDir:     req.OutputDir,
			PreferredTier: tier,
		})
	}
	return c.downloadProgressive(ctx, title, req.OutputDir, source, req.Reference.Tracks)
}

// DownloadReferences downloads every reference in order, numbering titles
// from 1. It continues past failures and returns them joined.
func (c *Client) DownloadReferences(ctx context.Context, refs []VideoReference, outputDir string) ([]*DownloadResult, error) {
	results := make([]*DownloadResult, 0, len(refs))
	var errs []error
	for i, ref := range refs {
		res, err := c.DownloadReference(ctx, ReferenceRequest{
			Reference: ref,
			Title:     fmt.Sprintf("%d %s", i+1, ref.Title),
			OutputDir: outputDir,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}

	switch {
	case len(refs) == 0:
		c.logger.Info("no videos to download")
	case len(errs) == len(refs):
		c.logger.Error("all video downloads failed", zap.Int("count", len(refs)))
	case len(errs) > 0:
		c.logger.Warn("video downloads finished with errors", zap.Int("failed", len(errs)), zap.Int("count", len(refs)))
	default:
		c.logger.Info("all videos downloaded", zap.Int("count", len(refs)))
	}
	return results, errors.Join(errs...)
}

func (c *Client) downloadProgressive(ctx context.Context, title, outputDir string, source playerjs.Source, tracks []playerjs.Track) (*DownloadResult, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: empty title", ErrInvalidInput)
	}
	j := c.newJob(strings.TrimSpace(title))

	ctx, span := c.tracer.Start(ctx, "hlsfetch.DownloadProgressive", trace.WithAttributes(
		attribute.String("job_id", j.id),
		attribute.String("source_url", source.URL.String()),
	))
	defer span.End()

	dir, err := c.outputDir(outputDir)
	if err != nil {
		return nil, err
	}
	base := filepath.Join(dir, j.fileBase)

	videoPath := base + "." + extensionOr(source.Extension(), "mp4")
	n, err := c.writeTrack(ctx, j, "video", videoPath, func() (io.ReadCloser, error) {
		rc, err := downloader.OpenWithRetry(ctx, c.fetcher, j.retry, source.URL)
		if err != nil {
			return nil, err
		}
		return &countingReader{rc: rc, add: func(n int) { c.config.Metrics.AddStreamBytes("video", n) }}, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		j.log.Error("video download failed", zap.String("url", source.URL.String()), zap.Error(err))
		return nil, fmt.Errorf("download video: %w", err)
	}
	res := &DownloadResult{JobID: j.id, Title: j.title, OutputPath: videoPath, VideoPath: videoPath, Bytes: n}

	if len(tracks) > 0 {
		track := tracks[0]
		subtitlePath := base + "." + extensionOr(track.Extension(), "vtt")
		_, err := c.writeTrack(ctx, j, "subtitle", subtitlePath, func() (io.ReadCloser, error) {
			return downloader.OpenWithRetry(ctx, c.fetcher, j.retry, track.URL)
		})
		if err != nil {
			j.log.Warn("subtitle download failed", zap.String("url", track.URL.String()), zap.Error(err))
		} else {
			res.SubtitlePath = subtitlePath
		}
	}

	j.log.Info("download complete", zap.String("path", res.OutputPath), zap.Int64("bytes", res.Bytes))
	return res, nil
}

func extensionOr(ext, fallback string) string {
	if ext == "" {
		return fallback
	}
	return ext
}

type countingReader struct {
	rc  io.ReadCloser
	add func(int)
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	r.add(n)
	return n, err
}

func (r *countingReader) Close() error {
	return r.rc.Close()
}
