// Package timer runs the local work session clock behind `focusctl track`.
// A session only lives in the CLI process; finished sessions are posted to
// the server as trackers.
package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"focus-tracker/internal/domain"
)

// Mode selects how a session counts.
type Mode int

const (
	// Stopwatch counts up until ended.
	Stopwatch Mode = iota
	// Countdown counts down from a fixed length and ends itself at zero.
	Countdown
)

// DefaultCountdown is the countdown length when none is given.
const DefaultCountdown = 25 * time.Minute

func (m Mode) String() string {
	switch m {
	case Stopwatch:
		return "stopwatch"
	case Countdown:
		return "countdown"
	default:
		return "unknown"
	}
}

// TrackerType is the tracker_type a finished session is stored under.
func (m Mode) TrackerType() string {
	if m == Countdown {
		return domain.TrackerTypeTimer
	}
	return domain.TrackerTypeStopwatch
}

// State is the lifecycle position of a session.
type State int

const (
	Idle State = iota
	Running
	Paused
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// ErrInvalidTransition is returned when an action does not apply to the
// current state, e.g. pausing an idle session.
var ErrInvalidTransition = errors.New("invalid session transition")

// Result is handed to the end callback exactly once.
type Result struct {
	Mode    Mode
	Elapsed time.Duration
	// AutoEnded is set when a countdown reached zero on its own.
	AutoEnded bool
}

// Seconds is the elapsed time in whole seconds, as stored on a tracker.
func (r Result) Seconds() int64 {
	return int64(r.Elapsed / time.Second)
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// OnEnd registers the callback run when the session ends.
func OnEnd(fn func(Result)) Option {
	return func(s *Session) { s.onEnd = fn }
}

// Session is a pausable work clock. It is safe for concurrent use, so a
// ticker goroutine and a keyboard goroutine can drive it together.
type Session struct {
	mu sync.Mutex

	mode   Mode
	length time.Duration
	now    func() time.Time
	onEnd  func(Result)

	state     State
	resumedAt time.Time
	banked    time.Duration
}

func NewStopwatch(opts ...Option) *Session {
	return newSession(Stopwatch, 0, opts)
}

// NewCountdown returns a countdown of length d, or DefaultCountdown when d
// is not positive.
func NewCountdown(d time.Duration, opts ...Option) *Session {
	if d <= 0 {
		d = DefaultCountdown
	}
	return newSession(Countdown, d, opts)
}

func newSession(mode Mode, length time.Duration, opts []Option) *Session {
	s := &Session{
		mode:   mode,
		length: length,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Mode() Mode { return s.mode }

// Length is the countdown length; zero for a stopwatch.
func (s *Session) Length() time.Duration { return s.length }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Start() error {
	return s.transition(Idle, Running)
}

func (s *Session) Pause() error {
	return s.transition(Running, Paused)
}

func (s *Session) Resume() error {
	return s.transition(Paused, Running)
}

// Toggle pauses a running session and resumes a paused one.
func (s *Session) Toggle() error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	if state == Running {
		return s.Pause()
	}
	return s.Resume()
}

func (s *Session) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != from {
		return fmt.Errorf("%w: cannot go from %s to %s", ErrInvalidTransition, s.state, to)
	}

	now := s.now()
	switch to {
	case Running:
		s.resumedAt = now
	case Paused:
		s.banked += now.Sub(s.resumedAt)
	}
	s.state = to
	return nil
}

// End stops a running or paused session and runs the end callback.
func (s *Session) End() (Result, error) {
	s.mu.Lock()
	if s.state != Running && s.state != Paused {
		state := s.state
		s.mu.Unlock()
		return Result{}, fmt.Errorf("%w: cannot end a session that is %s", ErrInvalidTransition, state)
	}
	res := s.finishLocked(false)
	s.mu.Unlock()

	s.fire(res)
	return res, nil
}

// Poll ends a countdown that has run out. It reports whether the session is
// over.
func (s *Session) Poll() bool {
	s.mu.Lock()
	if s.state == Ended {
		s.mu.Unlock()
		return true
	}
	if s.mode != Countdown || s.state != Running || s.elapsedLocked() < s.length {
		s.mu.Unlock()
		return false
	}
	res := s.finishLocked(true)
	s.mu.Unlock()

	s.fire(res)
	return true
}

// Elapsed is the time spent running, excluding pauses. A countdown never
// reports more than its length.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

// Remaining is the time left on a countdown; zero for a stopwatch.
func (s *Session) Remaining() time.Duration {
	if s.mode != Countdown {
		return 0
	}
	return s.length - s.Elapsed()
}

// Run polls the session every tick until it ends or ctx is done, calling
// render after each poll. Cancelling ctx leaves the session as it is.
func (s *Session) Run(ctx context.Context, tick time.Duration, render func(*Session)) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		done := s.Poll()
		if render != nil {
			render(s)
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Session) elapsedLocked() time.Duration {
	elapsed := s.banked
	if s.state == Running {
		elapsed += s.now().Sub(s.resumedAt)
	}
	if s.mode == Countdown && elapsed > s.length {
		elapsed = s.length
	}
	return elapsed
}

func (s *Session) finishLocked(auto bool) Result {
	elapsed := s.elapsedLocked()
	s.banked = elapsed
	s.state = Ended
	return Result{Mode: s.mode, Elapsed: elapsed, AutoEnded: auto}
}

func (s *Session) fire(res Result) {
	if s.onEnd != nil {
		s.onEnd(res)
	}
}

// FormatClock renders d as MM:SS, or HH:MM:SS from one hour up.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
