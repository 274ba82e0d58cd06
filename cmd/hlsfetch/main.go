package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/famomatic/hlsfetch/client"
	"github.com/famomatic/hlsfetch/internal/cli"
	"github.com/famomatic/hlsfetch/internal/config"
	"github.com/famomatic/hlsfetch/internal/logging"
	"github.com/famomatic/hlsfetch/internal/metrics"
	"github.com/famomatic/hlsfetch/internal/muxer"
	"github.com/famomatic/hlsfetch/internal/playerjs"
)

func main() {
	opts := cli.ParseFlags()
	os.Exit(run(opts))
}

func run(opts cli.Options) int {
	if opts.Help {
		fmt.Fprintln(os.Stderr, "Usage: hlsfetch [OPTIONS] MANIFEST_URL [MANIFEST_URL...]")
		return 0
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "hlsfetch: %v\n", err)
		return 2
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hlsfetch: %v\n", err)
		return 1
	}
	cli.ApplyToConfig(opts, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "hlsfetch: invalid configuration: %v\n", err)
		return 2
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hlsfetch: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clientCfg, err := cli.ToClientConfig(opts, cfg)
	if err != nil {
		logger.Error("invalid options", zap.Error(err))
		return 1
	}

	reg := prometheus.NewRegistry()
	clientCfg.Metrics = metrics.New(reg)
	clientCfg.Logger = logger
	clientCfg.Muxer = muxer.Probe(ctx, cfg.FFmpeg.Path)
	if !clientCfg.Muxer.Available() {
		logger.Warn("ffmpeg not found; .ts files will be kept and no mp4 is created", zap.String("ffmpeg", cfg.FFmpeg.Path))
	}

	if addr := cfg.Metrics.ListenAddress; addr != "" {
		srv := serveMetrics(addr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	c := client.New(clientCfg)
	if opts.PageFile != "" {
		return downloadPage(ctx, c, opts.PageFile, cfg.Download.OutputDir, logger)
	}
	return downloadManifests(ctx, c, opts, logger)
}

func downloadManifests(ctx context.Context, c *client.Client, opts cli.Options, logger *zap.Logger) int {
	failed := 0
	for i, u := range opts.URLs {
		title := opts.Title
		if title == "" {
			title = fmt.Sprintf("video %d", i+1)
		}
		res, err := c.Download(ctx, client.DownloadRequest{ManifestURL: u, Title: title})
		if err != nil {
			failed++
			logger.Error("download failed",
				zap.String("url", u),
				zap.String("category", string(client.ClassifyError(err))),
				zap.Error(err))
			continue
		}
		fmt.Println(res.OutputPath)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func downloadPage(ctx context.Context, c *client.Client, path, outputDir string, logger *zap.Logger) int {
	page, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read page", zap.String("path", path), zap.Error(err))
		return 1
	}
	refs, err := playerjs.ParsePage(string(page))
	if err != nil {
		logger.Error("parse player playlist", zap.String("path", path), zap.Error(err))
		return 1
	}
	results, err := c.DownloadReferences(ctx, refs, outputDir)
	for _, res := range results {
		fmt.Println(res.OutputPath)
	}
	if err != nil {
		return 1
	}
	return 0
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
