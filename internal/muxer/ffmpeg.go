// Package muxer combines separately downloaded audio and video tracks into a
// playable mp4 container.
package muxer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	// ErrUnavailable is returned by UnavailableMuxer.
	ErrUnavailable = errors.New("muxer: ffmpeg is not available in this environment")
	// ErrInvalidInput marks a Merge call with missing inputs or a non-mp4 output.
	ErrInvalidInput = errors.New("muxer: invalid input")
)

// Metadata is written into the output container when set.
type Metadata struct {
	Title string
}

// Muxer defines the interface for media muxing operations.
type Muxer interface {
	Available() bool
	// Merge writes outputPath from videoPath and audioPath. An empty audioPath
	// produces a video-only output. Inputs are never removed.
	Merge(ctx context.Context, videoPath, audioPath, outputPath string, meta Metadata) error
}

// MuxError is a failed ffmpeg run or a run that produced no output file.
type MuxError struct {
	Output string
	Stderr string
	Err    error
}

func (e *MuxError) Error() string {
	msg := "muxer: failed to create " + e.Output
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLine(s)
	}
	return msg
}

func (e *MuxError) Unwrap() error {
	return e.Err
}

// FFmpegMuxer implements Muxer using the ffmpeg command line tool.
type FFmpegMuxer struct {
	Path string
}

// NewFFmpegMuxer returns a new FFmpegMuxer.
// If path is empty, it looks for "ffmpeg" in PATH.
func NewFFmpegMuxer(path string) *FFmpegMuxer {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegMuxer{Path: path}
}

// Available checks if ffmpeg is executable.
func (f *FFmpegMuxer) Available() bool {
	_, err := exec.LookPath(f.Path)
	return err == nil
}

// Merge runs `ffmpeg -i video [-i audio] -y -c copy output`.
func (f *FFmpegMuxer) Merge(ctx context.Context, videoPath, audioPath, outputPath string, meta Metadata) error {
	if err := checkInputs(videoPath, audioPath, outputPath); err != nil {
		return err
	}

	args := []string{"-i", videoPath}
	if audioPath != "" {
		args = append(args, "-i", audioPath)
	}
	args = append(args, "-y", "-c", "copy")
	if meta.Title != "" {
		args = append(args, "-metadata", "title="+meta.Title)
	}
	args = append(args, outputPath)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.Path, args...)
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		return &MuxError{Output: outputPath, Stderr: stderr.String(), Err: runErr}
	}
	if !isRegularFile(outputPath) {
		return &MuxError{Output: outputPath, Stderr: stderr.String(), Err: errors.New("output file was not created")}
	}
	return nil
}

func checkInputs(videoPath, audioPath, outputPath string) error {
	if !isRegularFile(videoPath) {
		return fmt.Errorf("%w: video source %q must be an existing file", ErrInvalidInput, videoPath)
	}
	if audioPath != "" && !isRegularFile(audioPath) {
		return fmt.Errorf("%w: audio source %q must be an existing file", ErrInvalidInput, audioPath)
	}
	if !strings.EqualFold(filepath.Ext(outputPath), ".mp4") {
		return fmt.Errorf("%w: destination %q must end in .mp4", ErrInvalidInput, outputPath)
	}
	return nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// UnavailableMuxer is selected when no ffmpeg binary could be probed.
type UnavailableMuxer struct{}

func (UnavailableMuxer) Available() bool { return false }

func (UnavailableMuxer) Merge(_ context.Context, _, _, outputPath string, _ Metadata) error {
	return fmt.Errorf("%w: cannot create %s", ErrUnavailable, outputPath)
}
