package downloader

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/famomatic/hlsfetch/internal/retry"
)

// memFetcher serves fixed bodies and can fail the first N opens of a URL.
type memFetcher struct {
	mu       sync.Mutex
	bodies   map[string][]byte
	failures map[string]int
	opens    map[string]int
	order    []string
}

func newMemFetcher(bodies map[string]string) *memFetcher {
	f := &memFetcher{
		bodies:   make(map[string][]byte, len(bodies)),
		failures: make(map[string]int),
		opens:    make(map[string]int),
	}
	for k, v := range bodies {
		f.bodies[k] = []byte(v)
	}
	return f
}

func (f *memFetcher) Open(_ context.Context, u *url.URL) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := u.String()
	f.opens[key]++
	f.order = append(f.order, key)
	if f.failures[key] > 0 {
		f.failures[key]--
		return nil, &FetchError{URL: key, Err: io.ErrUnexpectedEOF}
	}
	body, ok := f.bodies[key]
	if !ok {
		return nil, &HTTPStatusError{URL: key, StatusCode: 404}
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func noSleepRetry() retry.Executor {
	return retry.Executor{MaxAttempts: 3, Delay: time.Second, Sleep: func(time.Duration) {}}
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}
