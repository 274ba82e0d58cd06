package manifest

import (
	"net/url"
	"sort"
)

// Entry is a playable rendition: a stream joined with its audio and subtitle
// groups. Only StreamURL is guaranteed to be set.
type Entry struct {
	StreamURL   *url.URL
	SubtitleURL *url.URL
	AudioURL    *url.URL
	Dimensions  *Dimensions
}

// Tier classifies the entry; entries without dimensions are TierUnknown.
func (e Entry) Tier() Tier {
	if e.Dimensions == nil {
		return TierUnknown
	}
	return e.Dimensions.Tier()
}

func (e Entry) height() int {
	if e.Dimensions == nil {
		return 0
	}
	return e.Dimensions.Height
}

// Resolved is the ordered set of entries of one master playlist, ascending by
// height. Entries without dimensions come first.
type Resolved struct {
	entries []Entry
}

// Entries returns a copy of the sorted entries.
func (r Resolved) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports the number of entries.
func (r Resolved) Len() int {
	return len(r.entries)
}

// SelectPreferredOrFallback returns the lowest entry whose dimensions classify
// as preferred. Entries without dimensions never match, not even TierUnknown.
// When no entry matches it falls back to the highest entry. ok is false only
// when there are no entries.
func (r Resolved) SelectPreferredOrFallback(preferred Tier) (entry Entry, ok bool) {
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	for _, e := range r.entries {
		if e.Dimensions != nil && e.Dimensions.Tier() == preferred {
			return e, true
		}
	}
	return r.entries[len(r.entries)-1], true
}

// Resolve joins each stream with the audio and subtitle group it references.
// An unknown or missing reference falls back to the first element of that
// kind; with no elements of that kind the field stays nil. Duplicate group
// ids resolve to the last declaration.
func Resolve(streams []StreamElement, audio, subtitles []MediaElement) Resolved {
	audioByGroup := indexByGroup(audio)
	subtitlesByGroup := indexByGroup(subtitles)

	entries := make([]Entry, 0, len(streams))
	for _, s := range streams {
		entries = append(entries, Entry{
			StreamURL:   s.URL,
			AudioURL:    join(s.AudioGroupID, audioByGroup, audio),
			SubtitleURL: join(s.SubtitleGroupID, subtitlesByGroup, subtitles),
			Dimensions:  s.Dimensions,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].height() < entries[j].height()
	})
	return Resolved{entries: entries}
}

// ResolveElements is Resolve over an Extract result.
func ResolveElements(el Elements) Resolved {
	return Resolve(el.Streams, el.Audio, el.Subtitles)
}

func indexByGroup(elements []MediaElement) map[string]*url.URL {
	m := make(map[string]*url.URL, len(elements))
	for _, el := range elements {
		m[el.GroupID] = el.URL
	}
	return m
}

func join(groupID *string, byGroup map[string]*url.URL, all []MediaElement) *url.URL {
	if groupID != nil {
		if u, ok := byGroup[*groupID]; ok {
			return u
		}
	}
	if len(all) > 0 {
		return all[0].URL
	}
	return nil
}
