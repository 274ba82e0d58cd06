// Package playerjs evaluates the JavaScript playlist a lesson page hands to
// its video player and turns it into typed video references.
package playerjs

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/famomatic/hlsfetch/internal/manifest"
)

// ErrNoSource is returned when a reference carries no playable source.
var ErrNoSource = errors.New("playerjs: there is no source video")

// VideoReference is one playlist item: a titled video with its alternative
// sources and side tracks.
type VideoReference struct {
	Title   string
	Sources []Source
	Tracks  []Track
}

// Source is one rendition of the video. Tier is parsed from the player label.
type Source struct {
	URL  *url.URL
	Tier manifest.Tier
	Type string
}

// Extension returns the file extension of the source path without the dot.
func (s Source) Extension() string {
	return extension(s.URL)
}

// IsHLS reports whether the source is an M3U8 master playlist.
func (s Source) IsHLS() bool {
	return strings.Contains(strings.ToLower(s.Extension()), "m3u8")
}

// Track is a side track such as captions.
type Track struct {
	URL  *url.URL
	Kind string
}

// Extension returns the file extension of the track path without the dot.
func (t Track) Extension() string {
	return extension(t.URL)
}

// SourceFor returns the first source labelled with tier, else the first
// source.
func (v VideoReference) SourceFor(tier manifest.Tier) (Source, error) {
	for _, s := range v.Sources {
		if s.Tier == tier {
			return s, nil
		}
	}
	if len(v.Sources) > 0 {
		return v.Sources[0], nil
	}
	return Source{}, ErrNoSource
}

func extension(u *url.URL) string {
	if u == nil {
		return ""
	}
	return strings.TrimPrefix(path.Ext(u.Path), ".")
}
