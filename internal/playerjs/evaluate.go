package playerjs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/famomatic/hlsfetch/internal/manifest"
)

// ErrPlaylistNotFound is returned when a page has no player playlist script.
var ErrPlaylistNotFound = errors.New("playerjs: playlist not found on page")

const evalTimeout = 2 * time.Second

var playlistSourcePattern = regexp.MustCompile(`playlistSource\s*=\s*(.+);`)

// ExtractPlaylistSource returns the raw JavaScript expression assigned to
// playlistSource in a lesson page.
func ExtractPlaylistSource(page string) (string, error) {
	m := playlistSourcePattern.FindStringSubmatch(page)
	if len(m) < 2 {
		return "", ErrPlaylistNotFound
	}
	return strings.TrimSpace(m[1]), nil
}

// ParsePage extracts and evaluates the playlist of a lesson page.
func ParsePage(page string) ([]VideoReference, error) {
	raw, err := ExtractPlaylistSource(page)
	if err != nil {
		return nil, err
	}
	return ParsePlaylist(raw)
}

type rawReference struct {
	Title   string      `json:"title"`
	Sources []rawSource `json:"sources"`
	Tracks  []rawTrack  `json:"tracks"`
}

type rawSource struct {
	File  string `json:"file"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type rawTrack struct {
	File string `json:"file"`
	Kind string `json:"kind"`
}

// ParsePlaylist evaluates expr, a JavaScript array or single object literal,
// and decodes it into video references. Unknown properties are ignored.
func ParsePlaylist(expr string) ([]VideoReference, error) {
	data, err := evaluateToJSON(expr)
	if err != nil {
		return nil, err
	}

	var raws []rawReference
	if strings.HasPrefix(data, "{") {
		var one rawReference
		if err := json.Unmarshal([]byte(data), &one); err != nil {
			return nil, fmt.Errorf("playerjs: decode playlist: %w", err)
		}
		raws = []rawReference{one}
	} else if err := json.Unmarshal([]byte(data), &raws); err != nil {
		return nil, fmt.Errorf("playerjs: decode playlist: %w", err)
	}

	refs := make([]VideoReference, 0, len(raws))
	for i, raw := range raws {
		ref, err := raw.reference()
		if err != nil {
			return nil, fmt.Errorf("playerjs: playlist item %d: %w", i, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func evaluateToJSON(expr string) (string, error) {
	vm := goja.New()
	timer := time.AfterFunc(evalTimeout, func() {
		vm.Interrupt("playlist evaluation timed out")
	})
	defer timer.Stop()

	if _, err := vm.RunString("var __hlsfetch_playlist = (" + expr + "\n);"); err != nil {
		return "", fmt.Errorf("playerjs: evaluate playlist: %w", err)
	}
	out, err := vm.RunString("JSON.stringify(__hlsfetch_playlist)")
	if err != nil {
		return "", fmt.Errorf("playerjs: serialize playlist: %w", err)
	}
	if out == nil || goja.IsUndefined(out) || goja.IsNull(out) {
		return "", errors.New("playerjs: playlist evaluated to undefined")
	}
	return out.String(), nil
}

func (r rawReference) reference() (VideoReference, error) {
	ref := VideoReference{Title: r.Title}
	for _, s := range r.Sources {
		u, err := url.Parse(s.File)
		if err != nil || !u.IsAbs() {
			return VideoReference{}, fmt.Errorf("source file %q is not an absolute URL", s.File)
		}
		ref.Sources = append(ref.Sources, Source{URL: u, Tier: manifest.ParseTier(s.Label), Type: s.Type})
	}
	for _, t := range r.Tracks {
		u, err := url.Parse(t.File)
		if err != nil || !u.IsAbs() {
			return VideoReference{}, fmt.Errorf("track file %q is not an absolute URL", t.File)
		}
		ref.Tracks = append(ref.Tracks, Track{URL: u, Kind: t.Kind})
	}
	return ref, nil
}
