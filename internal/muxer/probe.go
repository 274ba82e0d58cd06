package muxer

import (
	"context"
	"os/exec"
	"strings"
)

const versionBanner = "ffmpeg version"

// Probe runs `path -version` and returns an FFmpegMuxer when the output looks
// like ffmpeg, otherwise UnavailableMuxer.
func Probe(ctx context.Context, path string) Muxer {
	m := NewFFmpegMuxer(path)
	out, err := exec.CommandContext(ctx, m.Path, "-version").Output()
	if err != nil || !strings.Contains(string(out), versionBanner) {
		return UnavailableMuxer{}
	}
	return m
}
