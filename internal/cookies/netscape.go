// Package cookies loads an exported browser session so authenticated CDN and
// course requests can reuse it.
package cookies

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const httpOnlyPrefix = "#HttpOnly_"

// ParseNetscape parses a Netscape cookies.txt file.
// Line format: domain includeSubdomains path secure expiration name value
func ParseNetscape(r io.Reader) ([]*http.Cookie, error) {
	var out []*http.Cookie
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		httpOnly := false
		if rest, ok := strings.CutPrefix(line, httpOnlyPrefix); ok {
			line = rest
			httpOnly = true
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 7 {
			continue
		}

		c := &http.Cookie{
			Domain:   parts[0],
			Path:     parts[2],
			Secure:   strings.EqualFold(parts[3], "TRUE"),
			Name:     parts[5],
			Value:    parts[6],
			HttpOnly: httpOnly,
		}
		// 0 marks a session cookie.
		if exp, err := strconv.ParseInt(parts[4], 10, 64); err == nil && exp > 0 {
			c.Expires = time.Unix(exp, 0)
		}
		out = append(out, c)
	}

	return out, scanner.Err()
}

// NewJar builds a cookie jar holding cs, keyed by each cookie's domain.
func NewJar(cs []*http.Cookie) (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	byDomain := make(map[string][]*http.Cookie)
	for _, c := range cs {
		byDomain[c.Domain] = append(byDomain[c.Domain], c)
	}
	for domain, group := range byDomain {
		scheme := "http"
		for _, c := range group {
			if c.Secure {
				scheme = "https"
				break
			}
		}
		jar.SetCookies(&url.URL{Scheme: scheme, Host: strings.TrimPrefix(domain, ".")}, group)
	}
	return jar, nil
}

// LoadJar reads a cookies.txt file into a jar.
func LoadJar(path string) (http.CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookies file: %w", err)
	}
	defer f.Close()

	cs, err := ParseNetscape(f)
	if err != nil {
		return nil, fmt.Errorf("parse cookies file: %w", err)
	}
	return NewJar(cs)
}
