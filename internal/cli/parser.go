package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/famomatic/hlsfetch/client"
	"github.com/famomatic/hlsfetch/internal/config"
	"github.com/famomatic/hlsfetch/internal/cookies"
	"github.com/famomatic/hlsfetch/internal/manifest"
	"github.com/famomatic/hlsfetch/internal/retry"
)

// Options holds all command-line options.
type Options struct {
	// Input
	URLs []string

	// General
	Help       bool
	ConfigPath string // --config

	// Network
	ProxyURL    string // --proxy
	CookiesFile string // --cookies
	Origin      string // --origin
	Referer     string // --referer

	// Selection
	Resolution string // -r, --resolution
	Title      string // -t, --title
	PageFile   string // --page

	// Download / Filesystem
	OutputDir       string // -o, --output-dir
	KeepFiles       bool   // -k, --keep
	DownloadRetries int    // --retries
	RetrySleepMS    int    // --retry-sleep-ms

	// Post-processing
	FFmpegLocation string // --ffmpeg-location

	// Observability
	MetricsAddress string // --metrics-address
	Verbose        bool
}

// ParseFlags parses os.Args into Options, exiting on a flag error.
func ParseFlags() Options {
	opts, err := ParseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	return opts
}

// ParseArgs parses args into Options. Usage and errors are written to out.
func ParseArgs(args []string, out io.Writer) (Options, error) {
	opts := Options{}
	fs := flag.NewFlagSet("hlsfetch", flag.ContinueOnError)
	fs.SetOutput(out)

	// Helper to bind multiple flags to one variable
	var resolutionShort, resolutionLong string
	var outputShort, outputLong string
	var titleShort, titleLong string
	var keepShort, keepLong bool

	fs.StringVar(&resolutionShort, "r", "", "Preferred resolution: FULL-HD, HD or SD")
	fs.StringVar(&resolutionLong, "resolution", "", "Preferred resolution: FULL-HD, HD or SD")
	fs.StringVar(&outputShort, "o", "", "Output directory")
	fs.StringVar(&outputLong, "output-dir", "", "Output directory")
	fs.StringVar(&titleShort, "t", "", "Title used for output file names (single manifest URL)")
	fs.StringVar(&titleLong, "title", "", "Title used for output file names (single manifest URL)")
	fs.BoolVar(&keepShort, "k", false, "Keep intermediate .ts files after muxing")
	fs.BoolVar(&keepLong, "keep", false, "Keep intermediate .ts files after muxing")

	fs.BoolVar(&opts.Help, "help", false, "Show usage")
	fs.StringVar(&opts.ConfigPath, "config", "hlsfetch.yaml", "Path to YAML configuration file")

	fs.StringVar(&opts.ProxyURL, "proxy", "", "Use the specified HTTP/HTTPS/SOCKS proxy")
	fs.StringVar(&opts.CookiesFile, "cookies", "", "Netscape formatted cookies file")
	fs.StringVar(&opts.Origin, "origin", "", "Origin header sent with every request")
	fs.StringVar(&opts.Referer, "referer", "", "Referer header sent with every request")

	fs.StringVar(&opts.PageFile, "page", "", "Saved lesson page whose player playlist is downloaded")

	fs.IntVar(&opts.DownloadRetries, "retries", -1, "Attempts per fetch (-1 keeps config)")
	fs.IntVar(&opts.RetrySleepMS, "retry-sleep-ms", -1, "Pause between attempts in milliseconds (-1 keeps config)")

	fs.StringVar(&opts.FFmpegLocation, "ffmpeg-location", "", "Path to ffmpeg binary")
	fs.StringVar(&opts.MetricsAddress, "metrics-address", "", "Serve Prometheus metrics on this address")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Print various debugging information")

	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: hlsfetch [OPTIONS] MANIFEST_URL [MANIFEST_URL...]\n")
		fmt.Fprintf(out, "       hlsfetch [OPTIONS] -page lesson.html\n\n")
		fmt.Fprintln(out, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	// Consolidate aliases
	opts.Resolution = pickValue(resolutionShort, resolutionLong, "")
	opts.OutputDir = pickValue(outputShort, outputLong, "")
	opts.Title = pickValue(titleShort, titleLong, "")
	opts.KeepFiles = keepShort || keepLong

	opts.URLs = fs.Args()
	return opts, nil
}

func pickValue(v1, v2, def string) string {
	if v1 != def {
		return v1
	}
	if v2 != def {
		return v2
	}
	return def
}

// Validate checks option combinations that flag parsing cannot.
func (o Options) Validate() error {
	if o.PageFile == "" && len(o.URLs) == 0 {
		return fmt.Errorf("a manifest URL or -page is required")
	}
	if o.PageFile != "" && len(o.URLs) > 0 {
		return fmt.Errorf("-page cannot be combined with manifest URLs")
	}
	if o.Title != "" && len(o.URLs) > 1 {
		return fmt.Errorf("-title applies to a single manifest URL")
	}
	if o.Resolution != "" && manifest.ParseTier(o.Resolution) == manifest.TierUnknown {
		return fmt.Errorf("unknown resolution %q", o.Resolution)
	}
	return nil
}

// ApplyToConfig overrides cfg with the options that were set.
func ApplyToConfig(opts Options, cfg *config.Config) {
	if opts.Origin != "" {
		cfg.HTTP.Origin = opts.Origin
	}
	if opts.Referer != "" {
		cfg.HTTP.Referer = opts.Referer
	}
	if opts.Resolution != "" {
		cfg.Download.PreferredResolution = opts.Resolution
	}
	if opts.OutputDir != "" {
		cfg.Download.OutputDir = opts.OutputDir
	}
	if opts.KeepFiles {
		cfg.Download.KeepIntermediateFiles = true
	}
	if opts.DownloadRetries > 0 {
		cfg.Retry.MaxAttempts = opts.DownloadRetries
	}
	if opts.RetrySleepMS >= 0 {
		cfg.Retry.Delay = time.Duration(opts.RetrySleepMS) * time.Millisecond
	}
	if opts.FFmpegLocation != "" {
		cfg.FFmpeg.Path = opts.FFmpegLocation
	}
	if opts.MetricsAddress != "" {
		cfg.Metrics.ListenAddress = opts.MetricsAddress
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
}

// ToClientConfig converts the merged configuration to client.Config. Logger,
// Muxer and Metrics are left for the caller.
func ToClientConfig(opts Options, cfg *config.Config) (client.Config, error) {
	out := client.Config{
		ProxyURL:              strings.TrimSpace(opts.ProxyURL),
		Timeout:               cfg.HTTP.Timeout,
		Origin:                cfg.HTTP.Origin,
		Referer:               cfg.HTTP.Referer,
		UserAgent:             cfg.HTTP.UserAgent,
		RequestsPerSecond:     cfg.HTTP.RequestsPerSecond,
		PreferredTier:         cfg.PreferredTier(),
		OutputDir:             cfg.Download.OutputDir,
		KeepIntermediateFiles: cfg.Download.KeepIntermediateFiles,
		Retry: retry.Executor{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Delay:       cfg.Retry.Delay,
		},
	}
	// A configured zero delay means no pause between attempts.
	if cfg.Retry.Delay == 0 {
		out.Retry.Delay = -1
	}

	if opts.CookiesFile != "" {
		jar, err := cookies.LoadJar(opts.CookiesFile)
		if err != nil {
			return out, err
		}
		out.CookieJar = jar
	}
	return out, nil
}
