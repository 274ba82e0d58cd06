package downloader

import (
	"context"
	"errors"
	"io"
	"net/url"

	"github.com/famomatic/hlsfetch/internal/retry"
)

// SequentialStream reads a list of remote resources back to back as one
// stream. The next resource is opened only once the current one reaches EOF.
//
// Opening each resource is retried. A failure after retries ends the stream
// with that error; bytes already returned are not retracted, so consumers must
// discard a partially written artifact.
type SequentialStream struct {
	ctx     context.Context
	fetcher Fetcher
	retry   retry.Executor
	urls    []*url.URL

	next    int
	current io.ReadCloser
	err     error

	// Observe, when set, is called with the size of every successful read.
	Observe func(n int)
}

// NewSequentialStream returns a stream over urls. An empty list yields EOF
// on the first read.
func NewSequentialStream(ctx context.Context, f Fetcher, exec retry.Executor, urls []*url.URL) *SequentialStream {
	return &SequentialStream{ctx: ctx, fetcher: f, retry: exec, urls: urls}
}

// Len reports how many resources the stream concatenates.
func (s *SequentialStream) Len() int {
	return len(s.urls)
}

func (s *SequentialStream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if s.current == nil {
			if s.next >= len(s.urls) {
				s.err = io.EOF
				return 0, io.EOF
			}
			u := s.urls[s.next]
			s.next++
			rc, err := OpenWithRetry(s.ctx, s.fetcher, s.retry, u)
			if err != nil {
				s.err = err
				return 0, err
			}
			s.current = rc
		}

		n, err := s.current.Read(p)
		if n > 0 && s.Observe != nil {
			s.Observe(n)
		}
		switch {
		case errors.Is(err, io.EOF):
			s.current.Close()
			s.current = nil
			if n > 0 {
				return n, nil
			}
		case err != nil:
			s.err = &FetchError{URL: s.urls[s.next-1].String(), Err: err}
			return n, s.err
		case n > 0:
			return n, nil
		}
	}
}

// Close releases the resource currently being read. Reads after Close
// return io.ErrClosedPipe.
func (s *SequentialStream) Close() error {
	var err error
	if s.current != nil {
		err = s.current.Close()
		s.current = nil
	}
	if s.err == nil || s.err == io.EOF {
		s.err = io.ErrClosedPipe
	}
	return err
}
