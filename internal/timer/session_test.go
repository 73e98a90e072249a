package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStopwatchExcludesPauses(t *testing.T) {
	clock := newFakeClock()
	var ended []Result
	s := NewStopwatch(WithClock(clock.Now), OnEnd(func(r Result) { ended = append(ended, r) }))

	require.Equal(t, Idle, s.State())
	require.NoError(t, s.Start())
	clock.Advance(10 * time.Minute)

	require.NoError(t, s.Pause())
	require.Equal(t, Paused, s.State())
	clock.Advance(time.Hour)
	require.Equal(t, 10*time.Minute, s.Elapsed())

	require.NoError(t, s.Resume())
	clock.Advance(5 * time.Minute)

	res, err := s.End()
	require.NoError(t, err)
	require.Equal(t, Ended, s.State())
	require.Equal(t, 15*time.Minute, res.Elapsed)
	require.Equal(t, int64(900), res.Seconds())
	require.False(t, res.AutoEnded)
	require.Equal(t, "stopwatch", res.Mode.TrackerType())
	require.Equal(t, []Result{res}, ended)
}

func TestInvalidTransitions(t *testing.T) {
	s := NewStopwatch(WithClock(newFakeClock().Now))

	require.ErrorIs(t, s.Pause(), ErrInvalidTransition)
	require.ErrorIs(t, s.Resume(), ErrInvalidTransition)
	_, err := s.End()
	require.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.Start())
	require.ErrorIs(t, s.Start(), ErrInvalidTransition)
	require.ErrorIs(t, s.Resume(), ErrInvalidTransition)

	_, err = s.End()
	require.NoError(t, err)
	_, err = s.End()
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.ErrorIs(t, s.Start(), ErrInvalidTransition)
}

func TestEndWhilePaused(t *testing.T) {
	clock := newFakeClock()
	s := NewStopwatch(WithClock(clock.Now))
	require.NoError(t, s.Start())
	clock.Advance(90 * time.Second)
	require.NoError(t, s.Toggle())
	clock.Advance(time.Hour)

	res, err := s.End()
	require.NoError(t, err)
	require.Equal(t, int64(90), res.Seconds())
}

func TestCountdownEndsItself(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	s := NewCountdown(2*time.Minute, WithClock(clock.Now), OnEnd(func(r Result) {
		calls++
		assert.True(t, r.AutoEnded)
		assert.Equal(t, "timer", r.Mode.TrackerType())
	}))
	require.Equal(t, 2*time.Minute, s.Remaining())

	require.NoError(t, s.Start())
	clock.Advance(time.Minute)
	require.False(t, s.Poll())
	require.Equal(t, time.Minute, s.Remaining())

	clock.Advance(5 * time.Minute)
	require.True(t, s.Poll())
	require.True(t, s.Poll())
	require.Equal(t, Ended, s.State())
	require.Equal(t, 2*time.Minute, s.Elapsed())
	require.Zero(t, s.Remaining())
	require.Equal(t, 1, calls)
}

func TestCountdownDefaultLength(t *testing.T) {
	s := NewCountdown(0)
	require.Equal(t, DefaultCountdown, s.Length())
	require.Equal(t, Countdown, s.Mode())
}

func TestCountdownPausedDoesNotExpire(t *testing.T) {
	clock := newFakeClock()
	s := NewCountdown(time.Minute, WithClock(clock.Now))
	require.NoError(t, s.Start())
	clock.Advance(30 * time.Second)
	require.NoError(t, s.Pause())
	clock.Advance(time.Hour)

	require.False(t, s.Poll())
	require.Equal(t, 30*time.Second, s.Remaining())
}

func TestRunStopsWhenCountdownExpires(t *testing.T) {
	clock := newFakeClock()
	s := NewCountdown(time.Second, WithClock(clock.Now))
	require.NoError(t, s.Start())

	renders := 0
	err := s.Run(context.Background(), time.Millisecond, func(*Session) {
		renders++
		clock.Advance(400 * time.Millisecond)
	})
	require.NoError(t, err)
	require.Equal(t, Ended, s.State())
	require.GreaterOrEqual(t, renders, 3)
}

func TestRunHonoursContext(t *testing.T) {
	s := NewStopwatch(WithClock(newFakeClock().Now))
	require.NoError(t, s.Start())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Run(ctx, time.Millisecond, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, Running, s.State())
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{90 * time.Second, "01:30"},
		{25 * time.Minute, "25:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatClock(tt.d))
		})
	}
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "countdown", Countdown.String())
	assert.Equal(t, "unknown", State(42).String())
}
