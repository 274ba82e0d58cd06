package client

import (
	"errors"

	"github.com/famomatic/hlsfetch/internal/downloader"
	"github.com/famomatic/hlsfetch/internal/manifest"
	"github.com/famomatic/hlsfetch/internal/muxer"
	"github.com/famomatic/hlsfetch/internal/playerjs"
)

var (
	// ErrInvalidInput indicates a malformed manifest URL or an empty title.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoPlayableEntry indicates the master manifest declared no streams.
	ErrNoPlayableEntry = errors.New("no playable entry in manifest")
	// ErrNoSource indicates a video reference without sources.
	ErrNoSource = playerjs.ErrNoSource
)

// ErrorCategory is a coarse classification for reporting.
type ErrorCategory string

const (
	ErrorCategoryInvalidInput     ErrorCategory = "invalid_input"
	ErrorCategoryNoPlayableEntry  ErrorCategory = "no_playable_entry"
	ErrorCategoryNoSource         ErrorCategory = "no_source"
	ErrorCategoryManifestParse    ErrorCategory = "manifest_parse"
	ErrorCategoryNetwork          ErrorCategory = "network"
	ErrorCategoryMuxerUnavailable ErrorCategory = "muxer_unavailable"
	ErrorCategoryMuxFailed        ErrorCategory = "mux_failed"
	ErrorCategoryUnknown          ErrorCategory = "unknown"
)

// ClassifyError maps err to an ErrorCategory.
func ClassifyError(err error) ErrorCategory {
	var parseErr *manifest.ParseError
	var valueErr *manifest.ValueParseError
	var muxErr *muxer.MuxError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput), errors.Is(err, muxer.ErrInvalidInput):
		return ErrorCategoryInvalidInput
	case errors.Is(err, ErrNoPlayableEntry):
		return ErrorCategoryNoPlayableEntry
	case errors.Is(err, ErrNoSource):
		return ErrorCategoryNoSource
	case errors.As(err, &parseErr), errors.As(err, &valueErr):
		return ErrorCategoryManifestParse
	case downloader.IsNetworkError(err):
		return ErrorCategoryNetwork
	case errors.Is(err, muxer.ErrUnavailable):
		return ErrorCategoryMuxerUnavailable
	case errors.As(err, &muxErr):
		return ErrorCategoryMuxFailed
	default:
		return ErrorCategoryUnknown
	}
}
