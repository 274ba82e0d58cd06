package manifest

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	streamInfTag = "#EXT-X-STREAM-INF:"
	mediaTag     = "#EXT-X-MEDIA:"
)

// parseAttributes tokenizes an HLS attribute list (KEY=VALUE,KEY="VALUE",...).
// Quoted values may contain commas. Unknown keys are kept; malformed pairs are
// skipped rather than reported.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for len(s) > 0 {
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			break
		}
		key := s[:eq]
		if c := strings.LastIndexByte(key, ','); c >= 0 {
			key = key[c+1:]
		}
		key = strings.TrimSpace(key)
		s = s[eq+1:]

		var val string
		if strings.HasPrefix(s, `"`) {
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				val, s = s[1:], ""
			} else {
				val, s = s[1:1+end], s[2+end:]
				if c := strings.IndexByte(s, ','); c >= 0 {
					s = s[c+1:]
				} else {
					s = ""
				}
			}
		} else {
			if c := strings.IndexByte(s, ','); c >= 0 {
				val, s = s[:c], s[c+1:]
			} else {
				val, s = s, ""
			}
			val = strings.TrimSpace(val)
		}

		if key != "" {
			attrs[key] = val
		}
	}
	return attrs
}

// splitLines splits playlist text into lines, accepting LF and CRLF endings.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// ResolveURI parses ref and resolves it against base. With a nil base, ref
// must be absolute.
func ResolveURI(base *url.URL, ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	if base != nil {
		return base.ResolveReference(u), nil
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("relative URI %q without a base URL", ref)
	}
	return u, nil
}
