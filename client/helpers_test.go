package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/famomatic/hlsfetch/internal/muxer"
	"github.com/famomatic/hlsfetch/internal/retry"
)

// cdn is an httptest server standing in for a course CDN. Bodies may contain
// the {{base}} placeholder, replaced with the server URL.
type cdn struct {
	*httptest.Server
	mu      sync.Mutex
	routes  map[string]string
	hits    map[string]int
	headers []http.Header
}

func newCDN(t *testing.T, routes map[string]string) *cdn {
	t.Helper()
	c := &cdn{routes: routes, hits: make(map[string]int)}
	c.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.hits[r.URL.Path]++
		c.headers = append(c.headers, r.Header.Clone())
		body, ok := c.routes[r.URL.Path]
		c.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, strings.ReplaceAll(body, "{{base}}", c.URL))
	}))
	t.Cleanup(c.Close)
	return c
}

func (c *cdn) hitCount(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[path]
}

func (c *cdn) allHeaders() []http.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]http.Header(nil), c.headers...)
}

type mergeCall struct {
	video, audio, output string
	meta                 muxer.Metadata
	videoBody, audioBody string
}

// fakeMuxer records merges and writes the concatenated inputs to the output.
type fakeMuxer struct {
	mu    sync.Mutex
	calls []mergeCall
	err   error
}

func (m *fakeMuxer) Available() bool { return true }

func (m *fakeMuxer) Merge(_ context.Context, video, audio, output string, meta muxer.Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := mergeCall{video: video, audio: audio, output: output, meta: meta}
	if b, err := os.ReadFile(video); err == nil {
		call.videoBody = string(b)
	}
	if audio != "" {
		if b, err := os.ReadFile(audio); err == nil {
			call.audioBody = string(b)
		}
	}
	m.calls = append(m.calls, call)
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(output, []byte(call.videoBody+call.audioBody), 0o644)
}

func noSleep() retry.Executor {
	return retry.Executor{MaxAttempts: 3, Delay: time.Second, Sleep: func(time.Duration) {}}
}

func newTestClient(t *testing.T, server *cdn, m muxer.Muxer, events *[]DownloadEvent) *Client {
	t.Helper()
	var mu sync.Mutex
	return New(Config{
		HTTPClient:    server.Client(),
		Origin:        "https://www.course.test",
		Referer:       "https://www.course.test/",
		Retry:         noSleep(),
		PreferredTier: TierHD,
		Muxer:         m,
		OutputDir:     t.TempDir(),
		Logger:        zaptest.NewLogger(t),
		OnDownloadEvent: func(evt DownloadEvent) {
			if events == nil {
				return
			}
			mu.Lock()
			*events = append(*events, evt)
			mu.Unlock()
		},
	})
}
