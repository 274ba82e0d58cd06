// Package manifest parses HLS master playlists into renditions and selects the
// rendition to download.
//
// Extraction is line oriented: #EXT-X-STREAM-INF declarations are paired with
// the URI line that follows them, and #EXT-X-MEDIA declarations of TYPE AUDIO
// or SUBTITLES are read from a single line. Attribute order is irrelevant and
// unknown attributes or tags are ignored.
package manifest
