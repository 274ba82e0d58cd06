package client

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

func defaultHTTPClient(proxyURL string, timeout time.Duration, jar http.CookieJar) *http.Client {
	hc := &http.Client{Timeout: timeout, Jar: jar}
	if strings.TrimSpace(proxyURL) == "" {
		return hc
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return hc
	}
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return hc
	}
	transport := baseTransport.Clone()
	transport.Proxy = http.ProxyURL(parsed)
	hc.Transport = transport
	return hc
}
