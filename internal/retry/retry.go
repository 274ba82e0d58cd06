// Package retry provides a bounded, fixed-delay retry executor for network and
// filesystem operations.
package retry

import "time"

const (
	// DefaultMaxAttempts is the number of invocations before giving up.
	DefaultMaxAttempts = 3
	// DefaultDelay is the pause between two invocations.
	DefaultDelay = time.Second
)

// Executor invokes an operation up to MaxAttempts times, sleeping Delay
// between failed attempts. Zero fields take the package defaults; a negative
// Delay retries without pausing.
//
// The last failure is returned unchanged once attempts are exhausted, so
// callers can match it with errors.Is / errors.As exactly as if the operation
// had been called directly.
type Executor struct {
	MaxAttempts int
	Delay       time.Duration

	// Sleep blocks the calling goroutine. Defaults to time.Sleep.
	Sleep func(time.Duration)

	// OnRetry is called after a failed attempt that will be retried.
	// attempt is 1-based.
	OnRetry func(attempt int, err error)

	// Retryable reports whether a failure may be retried. A false result
	// returns err at once. Nil retries every failure.
	Retryable func(err error) bool
}

// Default returns an Executor with the package defaults.
func Default() Executor {
	return Executor{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

func (e Executor) normalized() Executor {
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	switch {
	case e.Delay == 0:
		e.Delay = DefaultDelay
	case e.Delay < 0:
		e.Delay = 0
	}
	if e.Sleep == nil {
		e.Sleep = time.Sleep
	}
	return e
}

// Run invokes fn until it succeeds or the attempt budget is spent.
func (e Executor) Run(fn func() error) error {
	_, err := Do(e, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Do invokes fn until it succeeds or the attempt budget is spent and returns
// the first successful result.
func Do[T any](e Executor, fn func() (T, error)) (T, error) {
	e = e.normalized()

	attempts := 0
	for {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		attempts++
		if attempts >= e.MaxAttempts || (e.Retryable != nil && !e.Retryable(err)) {
			var zero T
			return zero, err
		}
		if e.OnRetry != nil {
			e.OnRetry(attempts, err)
		}
		e.Sleep(e.Delay)
	}
}
