package domain

import "time"

// Tracker types produced by the bundled session timers. The type is free-form,
// so any other non-empty string is accepted as well.
const (
	TrackerTypeTimer     = "timer"
	TrackerTypeStopwatch = "stopwatch"
)

// Tracker is a logged work session, optionally linked to a task of the same owner.
type Tracker struct {
	ID        string
	Type      string
	Duration  int64 // seconds
	Owner     string
	TaskID    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TrackerUpdate carries the fields of a partial tracker update. ClearTask
// unlinks the tracker from its task; otherwise a non-nil TaskID replaces it.
// Date moves the session to another day by rewriting CreatedAt.
type TrackerUpdate struct {
	Type      *string
	Duration  *int64
	TaskID    *string
	ClearTask bool
	Date      *time.Time
}
