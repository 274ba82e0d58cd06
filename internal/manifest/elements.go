package manifest

import (
	"fmt"
	"net/url"
	"strings"
)

// MediaType is the TYPE attribute of an #EXT-X-MEDIA declaration.
type MediaType string

const (
	MediaAudio     MediaType = "AUDIO"
	MediaSubtitles MediaType = "SUBTITLES"
)

// StreamElement is one #EXT-X-STREAM-INF variant as declared, before joining
// with its groups. Nil fields were absent from the declaration.
type StreamElement struct {
	SubtitleGroupID *string
	AudioGroupID    *string
	Dimensions      *Dimensions
	URL             *url.URL
}

// MediaElement is one #EXT-X-MEDIA track of a single type.
type MediaElement struct {
	GroupID string
	URL     *url.URL
}

// Elements holds the three independently extracted element lists.
type Elements struct {
	Streams   []StreamElement
	Audio     []MediaElement
	Subtitles []MediaElement

	// Rejected holds one error per stream variant that was dropped because its
	// RESOLUTION could not be parsed. The rest of the manifest is unaffected.
	Rejected []error
}

// Extract parses master playlist text. base resolves relative URIs and may
// be nil when every URI is absolute.
func Extract(content string, base *url.URL) (Elements, error) {
	streams, rejected, err := ExtractStreams(content, base)
	if err != nil {
		return Elements{}, err
	}
	audio, err := ExtractMedia(content, MediaAudio, base)
	if err != nil {
		return Elements{}, err
	}
	subtitles, err := ExtractMedia(content, MediaSubtitles, base)
	if err != nil {
		return Elements{}, err
	}
	return Elements{
		Streams:   streams,
		Audio:     audio,
		Subtitles: subtitles,
		Rejected:  rejected,
	}, nil
}

// ExtractStreams returns every stream variant in declaration order. A variant
// whose RESOLUTION is malformed is skipped and reported in rejected; a variant
// without a URI line fails the whole extraction.
func ExtractStreams(content string, base *url.URL) (streams []StreamElement, rejected []error, err error) {
	lines := splitLines(content)
	for i := 0; i < len(lines); i++ {
		rawAttrs, ok := strings.CutPrefix(lines[i], streamInfTag)
		if !ok {
			continue
		}
		declLine := i + 1

		next := i + 1
		for next < len(lines) && lines[next] == "" {
			next++
		}
		if next >= len(lines) || strings.HasPrefix(lines[next], "#") {
			return nil, nil, &ParseError{Kind: "stream", Line: declLine, Msg: "URI not found in stream declaration"}
		}
		i = next

		u, uriErr := ResolveURI(base, lines[next])
		if uriErr != nil {
			return nil, nil, &ParseError{Kind: "stream", Line: next + 1, Msg: uriErr.Error()}
		}

		attrs := parseAttributes(rawAttrs)
		elem := StreamElement{URL: u}
		if v, ok := attrs["AUDIO"]; ok {
			elem.AudioGroupID = &v
		}
		if v, ok := attrs["SUBTITLES"]; ok {
			elem.SubtitleGroupID = &v
		}
		if v, ok := attrs["RESOLUTION"]; ok {
			d, dimErr := ParseDimensions(v)
			if dimErr != nil {
				rejected = append(rejected, fmt.Errorf("line %d: %w", declLine, dimErr))
				continue
			}
			elem.Dimensions = &d
		}
		streams = append(streams, elem)
	}
	return streams, rejected, nil
}

// ExtractMedia returns every #EXT-X-MEDIA declaration of the given type in
// declaration order. GROUP-ID and URI are both required.
func ExtractMedia(content string, kind MediaType, base *url.URL) ([]MediaElement, error) {
	var out []MediaElement
	for i, line := range splitLines(content) {
		rawAttrs, ok := strings.CutPrefix(line, mediaTag)
		if !ok {
			continue
		}
		attrs := parseAttributes(rawAttrs)
		if MediaType(attrs["TYPE"]) != kind {
			continue
		}

		groupID, ok := attrs["GROUP-ID"]
		if !ok {
			return nil, &ParseError{Kind: string(kind), Line: i + 1, Msg: fmt.Sprintf("GROUP-ID not found in %s declaration", kind)}
		}
		rawURI, ok := attrs["URI"]
		if !ok {
			return nil, &ParseError{Kind: string(kind), Line: i + 1, Msg: fmt.Sprintf("URI not found in %s declaration", kind)}
		}
		u, err := ResolveURI(base, rawURI)
		if err != nil {
			return nil, &ParseError{Kind: string(kind), Line: i + 1, Msg: err.Error()}
		}
		out = append(out, MediaElement{GroupID: groupID, URL: u})
	}
	return out, nil
}
