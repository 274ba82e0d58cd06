package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/famomatic/hlsfetch/internal/downloader"
	"github.com/famomatic/hlsfetch/internal/muxer"
	"github.com/famomatic/hlsfetch/internal/retry"
)

var errTrackAbsent = errors.New("track absent")

type job struct {
	id       string
	title    string
	fileBase string
	log      *zap.Logger
	retry    retry.Executor
}

func (c *Client) newJob(title string) *job {
	id := uuid.NewString()
	log := c.logger.With(zap.String("job_id", id), zap.String("title", title))
	return &job{
		id:       id,
		title:    title,
		fileBase: NormalizeFileName(title),
		log:      log,
		retry:    c.retryFor(log),
	}
}

// Download fetches the master manifest, selects a rendition and writes
// <title>.vtt (when subtitles exist), <title>_audio.ts (when audio exists)
// and <title>_video.ts, then muxes them into <title>.mp4. Intermediates are
// purged after a successful mux unless KeepIntermediateFiles is set.
//
// A subtitle failure is logged and skipped. On a mux failure the returned
// result still names the intermediate files, which are kept.
func (c *Client) Download(ctx context.Context, req DownloadRequest) (*DownloadResult, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrInvalidInput)
	}
	j := c.newJob(title)

	ctx, span := c.tracer.Start(ctx, "hlsfetch.Download", trace.WithAttributes(
		attribute.String("job_id", j.id),
		attribute.String("manifest_url", req.ManifestURL),
	))
	defer span.End()

	res, err := c.download(ctx, j, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		j.log.Error("download failed", zap.Error(err))
		return res, err
	}
	j.log.Info("download complete", zap.String("path", res.OutputPath), zap.Int64("bytes", res.Bytes))
	return res, nil
}

func (c *Client) download(ctx context.Context, j *job, req DownloadRequest) (*DownloadResult, error) {
	dir, err := c.outputDir(req.OutputDir)
	if err != nil {
		return nil, err
	}
	tier := req.PreferredTier
	if tier == TierUnknown {
		tier = c.config.PreferredTier
	}

	c.emitDownloadEvent(j, "manifest", "start", req.ManifestURL, "tier="+tier.String())
	manifestCtx, span := c.tracer.Start(ctx, "hlsfetch.ResolveManifest")
	entry, err := c.selectEntry(manifestCtx, j.log, j.retry, req.ManifestURL, tier)
	span.End()
	if err != nil {
		c.emitDownloadEvent(j, "manifest", "failure", req.ManifestURL, err.Error())
		return nil, err
	}
	c.emitDownloadEvent(j, "manifest", "complete", entry.StreamURL.String(), "tier="+entry.Tier().String())

	res := &DownloadResult{JobID: j.id, Title: j.title, Entry: entry}
	base := filepath.Join(dir, j.fileBase)
	reader := downloader.NewPlaylistReader(entry, c.fetcher, j.retry)

	if entry.SubtitleURL != nil {
		subtitlePath := base + ".vtt"
		_, err := c.writeTrack(ctx, j, "subtitle", subtitlePath, func() (io.ReadCloser, error) {
			return reader.SubtitleStream(ctx)
		})
		switch {
		case err == nil:
			res.SubtitlePath = subtitlePath
		case errors.Is(err, errTrackAbsent):
		default:
			j.log.Warn("subtitle download failed, continuing without subtitles", zap.Error(err))
		}
	}

	if entry.AudioURL != nil {
		audioPath := base + "_audio.ts"
		n, err := c.writeTrack(ctx, j, "audio", audioPath, func() (io.ReadCloser, error) {
			s, err := reader.AudioStream(ctx)
			if err != nil {
				return nil, err
			}
			return c.observe(s, "audio"), nil
		})
		if err != nil {
			return nil, fmt.Errorf("download audio: %w", err)
		}
		res.AudioPath = audioPath
		res.Bytes += n
	}

	videoPath := base + "_video.ts"
	n, err := c.writeTrack(ctx, j, "video", videoPath, func() (io.ReadCloser, error) {
		s, err := reader.VideoStream(ctx)
		if err != nil {
			return nil, err
		}
		return c.observe(s, "video"), nil
	})
	if err != nil {
		c.cleanupIntermediateFile(j, res.AudioPath, c.config.KeepIntermediateFiles)
		return nil, fmt.Errorf("download video: %w", err)
	}
	res.VideoPath = videoPath
	res.Bytes += n

	outputPath := base + ".mp4"
	if err := c.merge(ctx, j, res.VideoPath, res.AudioPath, outputPath); err != nil {
		return res, err
	}
	res.OutputPath = outputPath

	c.cleanupIntermediateFile(j, res.AudioPath, c.config.KeepIntermediateFiles)
	c.cleanupIntermediateFile(j, res.VideoPath, c.config.KeepIntermediateFiles)
	return res, nil
}

func (c *Client) merge(ctx context.Context, j *job, videoPath, audioPath, outputPath string) error {
	ctx, span := c.tracer.Start(ctx, "hlsfetch.Merge")
	defer span.End()

	detail := "video_only=false"
	if audioPath == "" {
		detail = "video_only=true"
	}
	c.emitDownloadEvent(j, "merge", "start", outputPath, detail)
	if err := c.muxer.Merge(ctx, videoPath, audioPath, outputPath, muxer.Metadata{Title: j.title}); err != nil {
		c.emitDownloadEvent(j, "merge", "failure", outputPath, err.Error())
		span.RecordError(err)
		return fmt.Errorf("mux %s: %w", outputPath, err)
	}
	c.emitDownloadEvent(j, "merge", "complete", outputPath, fmt.Sprintf("bytes=%d", getFileSize(outputPath)))
	j.log.Info("mp4 created", zap.String("path", outputPath))
	return nil
}

func (c *Client) observe(s *downloader.SequentialStream, track string) *downloader.SequentialStream {
	m := c.config.Metrics
	s.Observe = func(n int) { m.AddStreamBytes(track, n) }
	return s
}

// writeTrack copies the stream returned by open into path. A failed copy
// discards the partial file and the whole track is retried from its first
// segment. errTrackAbsent is returned when open yields no stream.
func (c *Client) writeTrack(ctx context.Context, j *job, stage, path string, open func() (io.ReadCloser, error)) (int64, error) {
	_, span := c.tracer.Start(ctx, "hlsfetch.Track", trace.WithAttributes(attribute.String("stage", stage)))
	defer span.End()

	log := j.log.With(zap.String("stage", stage))
	c.emitDownloadEvent(j, stage, "destination", path, "")
	c.emitDownloadEvent(j, stage, "start", path, "")

	absent := false
	n, err := retry.Do(j.retry, func() (int64, error) {
		rc, err := open()
		if err != nil {
			return 0, err
		}
		if rc == nil {
			absent = true
			return 0, nil
		}
		defer rc.Close()
		return writeFile(path, rc)
	})
	if err != nil {
		span.RecordError(err)
		c.emitDownloadEvent(j, stage, "failure", path, err.Error())
		return 0, err
	}
	if absent {
		c.emitDownloadEvent(j, stage, "skip", path, "absent")
		return 0, errTrackAbsent
	}
	log.Info("track download done", zap.String("path", path), zap.Int64("bytes", n))
	c.emitDownloadEvent(j, stage, "complete", path, fmt.Sprintf("bytes=%d", n))
	return n, nil
}

func writeFile(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}

func (c *Client) outputDir(override string) (string, error) {
	dir := override
	if dir == "" {
		dir = c.config.OutputDir
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

func getFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (c *Client) cleanupIntermediateFile(j *job, path string, keep bool) {
	if strings.TrimSpace(path) == "" {
		return
	}
	if keep {
		c.emitDownloadEvent(j, "cleanup", "skip", path, "keep_intermediate=true")
		return
	}
	c.emitDownloadEvent(j, "cleanup", "delete", path, "")
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		j.log.Warn("failed to remove intermediate file", zap.String("path", path), zap.Error(err))
		c.emitDownloadEvent(j, "cleanup", "failure", path, err.Error())
		return
	}
	c.emitDownloadEvent(j, "cleanup", "complete", path, "")
}

func (c *Client) emitDownloadEvent(j *job, stage, phase, path, detail string) {
	if c == nil || c.config.OnDownloadEvent == nil {
		return
	}
	c.config.OnDownloadEvent(DownloadEvent{
		JobID:  j.id,
		Stage:  stage,
		Phase:  phase,
		Path:   path,
		Detail: detail,
	})
}
