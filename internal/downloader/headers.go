package downloader

import "net/http"

// buildHeaders copies cfg.Headers and sets Origin, Referer and User-Agent
// over them. Empty values are left out.
func buildHeaders(cfg FetcherConfig) http.Header {
	h := make(http.Header, len(cfg.Headers)+3)
	for k, vals := range cfg.Headers {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
	}
	for key, v := range map[string]string{
		"Origin":     cfg.Origin,
		"Referer":    cfg.Referer,
		"User-Agent": cfg.UserAgent,
	} {
		if v != "" {
			h.Set(key, v)
		}
	}
	return h
}
