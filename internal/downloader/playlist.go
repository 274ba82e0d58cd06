package downloader

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/famomatic/hlsfetch/internal/manifest"
	"github.com/famomatic/hlsfetch/internal/retry"
)

// SegmentList is an ordered list of absolute segment URLs in playback order.
type SegmentList []*url.URL

// PlaylistReader resolves the sub-playlists of one manifest entry.
type PlaylistReader struct {
	entry   manifest.Entry
	fetcher Fetcher
	retry   retry.Executor
}

// NewPlaylistReader returns a reader for entry.
func NewPlaylistReader(entry manifest.Entry, f Fetcher, exec retry.Executor) *PlaylistReader {
	return &PlaylistReader{entry: entry, fetcher: f, retry: exec}
}

// Entry returns the entry the reader was built from.
func (r *PlaylistReader) Entry() manifest.Entry {
	return r.entry
}

// ReadSubtitleURL returns the WebVTT segment referenced by the subtitle
// playlist, or nil when the entry has no subtitles. No request is made in
// that case.
func (r *PlaylistReader) ReadSubtitleURL(ctx context.Context) (*url.URL, error) {
	if r.entry.SubtitleURL == nil {
		return nil, nil
	}
	content, err := FetchText(ctx, r.fetcher, r.retry, r.entry.SubtitleURL)
	if err != nil {
		return nil, err
	}
	return extractSubtitleSegment(content, r.entry.SubtitleURL)
}

// ReadAudioSegments returns the audio segments, or an empty list when the
// entry has no audio group.
func (r *PlaylistReader) ReadAudioSegments(ctx context.Context) (SegmentList, error) {
	if r.entry.AudioURL == nil {
		return SegmentList{}, nil
	}
	return r.readSegments(ctx, r.entry.AudioURL)
}

// ReadVideoSegments returns the video segments of the stream playlist.
func (r *PlaylistReader) ReadVideoSegments(ctx context.Context) (SegmentList, error) {
	return r.readSegments(ctx, r.entry.StreamURL)
}

// SubtitleStream opens the WebVTT segment. It returns nil, nil when the entry
// has no subtitles.
func (r *PlaylistReader) SubtitleStream(ctx context.Context) (io.ReadCloser, error) {
	u, err := r.ReadSubtitleURL(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	return OpenWithRetry(ctx, r.fetcher, r.retry, u)
}

// AudioStream returns the concatenated audio segments.
func (r *PlaylistReader) AudioStream(ctx context.Context) (*SequentialStream, error) {
	segments, err := r.ReadAudioSegments(ctx)
	if err != nil {
		return nil, err
	}
	return NewSequentialStream(ctx, r.fetcher, r.retry, segments), nil
}

// VideoStream returns the concatenated video segments.
func (r *PlaylistReader) VideoStream(ctx context.Context) (*SequentialStream, error) {
	segments, err := r.ReadVideoSegments(ctx)
	if err != nil {
		return nil, err
	}
	return NewSequentialStream(ctx, r.fetcher, r.retry, segments), nil
}

func (r *PlaylistReader) readSegments(ctx context.Context, playlistURL *url.URL) (SegmentList, error) {
	content, err := FetchText(ctx, r.fetcher, r.retry, playlistURL)
	if err != nil {
		return nil, err
	}
	return extractTSSegments(content, playlistURL)
}

// uriLines yields the non-blank, non-tag lines of a playlist with their
// 1-based line numbers.
func uriLines(content string, fn func(line int, ref string) (bool, error)) error {
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stop, err := fn(i+1, line)
		if err != nil || stop {
			return err
		}
	}
	return nil
}

func extractTSSegments(content string, base *url.URL) (SegmentList, error) {
	segments := SegmentList{}
	err := uriLines(content, func(line int, ref string) (bool, error) {
		if !isTSRef(ref) {
			return false, nil
		}
		u, err := manifest.ResolveURI(base, ref)
		if err != nil {
			return true, &manifest.ParseError{Kind: "segment", Line: line, Msg: err.Error()}
		}
		segments = append(segments, u)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// isTSRef reports whether the path part of a raw playlist line ends in .ts.
// The query and fragment are ignored.
func isTSRef(ref string) bool {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return strings.HasSuffix(strings.ToLower(ref), ".ts")
}

func extractSubtitleSegment(content string, base *url.URL) (*url.URL, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	var found *url.URL
	err := uriLines(content, func(line int, ref string) (bool, error) {
		u, err := manifest.ResolveURI(base, ref)
		if err != nil {
			return true, &manifest.ParseError{Kind: "subtitle segment", Line: line, Msg: err.Error()}
		}
		if strings.Contains(strings.ToLower(u.Path), ".vtt") {
			found = u
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, &manifest.ParseError{Kind: "subtitle segment", Msg: "no .vtt segment in subtitle playlist"}
	}
	return found, nil
}
