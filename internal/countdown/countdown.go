// Package countdown provides a simple stopwatch encapsulating timeouts
// and durations for long-running search and discovery loops.
package countdown

import (
	"errors"
	"time"
)

// Errors returned for stopwatch misuse.
var (
	// ErrAlreadyRunning is returned by Start on a running countdown.
	ErrAlreadyRunning = errors.New("countdown is already running")

	// ErrNotRunning is returned when an operation requires a running
	// countdown.
	ErrNotRunning = errors.New("countdown is not running")

	// ErrNotStarted is returned when elapsed time is requested from a
	// countdown that was never started.
	ErrNotStarted = errors.New("countdown was never started")
)

// Countdown tracks elapsed time against an optional limit. A
// non-positive limit means an infinite countdown that never times out.
// The zero value is unusable; construct with New.
//
// Countdown is not safe for concurrent use; each goroutine tracking a
// deadline should own its own instance.
type Countdown struct {
	limit time.Duration
	start time.Time
	stop  time.Time
}

// New creates a countdown with the given time limit, not yet started.
func New(limit time.Duration) *Countdown {
	if limit < 0 {
		limit = 0
	}
	return &Countdown{limit: limit}
}

// NewStarted creates a countdown and starts it immediately.
func NewStarted(limit time.Duration) *Countdown {
	cd := New(limit)
	cd.start = time.Now()
	return cd
}

// Limit returns the configured time limit; zero means no limit.
func (c *Countdown) Limit() time.Duration { return c.limit }

// StartTime returns when the countdown was started.
func (c *Countdown) StartTime() time.Time { return c.start }

// StopTime returns when the countdown was stopped.
func (c *Countdown) StopTime() time.Time { return c.stop }

// Start begins timing. Starting a running countdown is an error;
// starting an ended one resets it first.
func (c *Countdown) Start() error {
	if c.Running() {
		return ErrAlreadyRunning
	}
	c.Reset()
	c.start = time.Now()
	return nil
}

// Running reports whether the countdown is started and not yet stopped.
func (c *Countdown) Running() bool { return !c.start.IsZero() && c.stop.IsZero() }

// Ended reports whether the countdown was started and stopped.
func (c *Countdown) Ended() bool { return !c.start.IsZero() && !c.stop.IsZero() }

// Stop ends timing and returns the elapsed duration.
func (c *Countdown) Stop() (time.Duration, error) {
	if !c.Running() {
		return 0, ErrNotRunning
	}
	c.stop = time.Now()
	return c.stop.Sub(c.start), nil
}

// Elapsed returns the time since start while running, or the total
// run time once ended.
func (c *Countdown) Elapsed() (time.Duration, error) {
	switch {
	case c.Running():
		return time.Since(c.start), nil
	case c.Ended():
		return c.stop.Sub(c.start), nil
	default:
		return 0, ErrNotStarted
	}
}

// Duration is like Elapsed but reports -1 for a countdown that was
// never started, for callers logging best-effort timings.
func (c *Countdown) Duration() time.Duration {
	elapsed, err := c.Elapsed()
	if err != nil {
		return -1
	}
	return elapsed
}

// Remaining returns the time left before the limit expires. A
// countdown without a limit effectively never expires.
func (c *Countdown) Remaining() (time.Duration, error) {
	if !c.Running() {
		return 0, ErrNotRunning
	}
	if c.limit <= 0 {
		return time.Duration(1<<63 - 1), nil
	}
	remaining := c.limit - time.Since(c.start)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// TimedOut reports whether a limited, started countdown has exceeded
// its limit.
func (c *Countdown) TimedOut() bool {
	if c.start.IsZero() || c.limit <= 0 {
		return false
	}
	elapsed, err := c.Elapsed()
	if err != nil {
		return false
	}
	return elapsed > c.limit
}

// Reset clears the start and stop marks, keeping the limit.
func (c *Countdown) Reset() {
	c.start = time.Time{}
	c.stop = time.Time{}
}
