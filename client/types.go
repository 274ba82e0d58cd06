package client

import (
	"github.com/famomatic/hlsfetch/internal/manifest"
)

// Tier is a resolution class: FULL_HD, HD, SD or UNKNOWN.
type Tier = manifest.Tier

const (
	TierUnknown = manifest.TierUnknown
	TierSD      = manifest.TierSD
	TierHD      = manifest.TierHD
	TierFullHD  = manifest.TierFullHD
)

// DownloadRequest describes one lesson video served as an HLS master playlist.
type DownloadRequest struct {
	ManifestURL string
	// Title names the output files after normalization.
	Title string
	// OutputDir overrides Config.OutputDir.
	OutputDir string
	// PreferredTier overrides Config.PreferredTier when not TierUnknown.
	PreferredTier Tier
}

// DownloadResult reports the files produced by a download.
type DownloadResult struct {
	JobID string
	Title string

	// Entry is the selected rendition. Zero for progressive downloads.
	Entry manifest.Entry

	OutputPath   string
	SubtitlePath string
	AudioPath    string
	VideoPath    string

	// Bytes counts media bytes written, subtitles excluded.
	Bytes int64
}

// DownloadEvent is a progress notification. Stage is one of manifest,
// subtitle, audio, video, merge, cleanup; Phase is start, complete, skip,
// failure, delete or destination.
type DownloadEvent struct {
	JobID  string
	Stage  string
	Phase  string
	Path   string
	Detail string
}
