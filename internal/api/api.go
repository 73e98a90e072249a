// Package api holds the JSON shapes exchanged between the server and its
// clients. Field names follow the web client the API was built for.
package api

import (
	"bytes"
	"encoding/json"
	"time"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/stats"
)

// Envelope wraps every response body.
type Envelope[T any] struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    T                 `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Nullable tells an absent field apart from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Value returns a Nullable holding v.
func Value[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// Null returns an explicit null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Valid = false
		return nil
	}
	n.Valid = true
	return json.Unmarshal(b, &n.Value)
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// IsZero reports an absent field, for omitzero.
func (n Nullable[T]) IsZero() bool { return !n.Set }

type User struct {
	Username  string    `json:"usn"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Task struct {
	ID        string     `json:"task_id"`
	Name      string     `json:"task_name"`
	DueDate   *time.Time `json:"due_date"`
	Status    string     `json:"status"`
	Completed bool       `json:"completed"`
	Owner     string     `json:"usn"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Tracker struct {
	ID        string    `json:"tracker_id"`
	Type      string    `json:"tracker_type"`
	Duration  int64     `json:"duration"`
	TaskID    *string   `json:"taskId"`
	Owner     string    `json:"usn"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session is returned by register and login.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Verification struct {
	Valid bool `json:"valid"`
	User  User `json:"user"`
}

type DeletedUser struct {
	Username string `json:"usn"`
	Email    string `json:"email"`
}

type DeletedTask struct {
	ID   string `json:"task_id"`
	Name string `json:"task_name"`
}

type DeletedTracker struct {
	ID   string `json:"tracker_id"`
	Type string `json:"tracker_type"`
}

type RegisterRequest struct {
	Username string `json:"usn"`
	Email    string `json:"email"`
	Password string `json:"pass"`
}

type LoginRequest struct {
	Username string `json:"usn"`
	Password string `json:"pass"`
}

type UpdateUserRequest struct {
	Username *string `json:"usn,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"pass,omitempty"`
}

// TaskRequest is used for both create and update. Dates are free-form text
// such as "2025-12-15", an RFC 3339 timestamp or "next friday".
type TaskRequest struct {
	Name      *string          `json:"task_name,omitempty"`
	DueDate   Nullable[string] `json:"due_date,omitzero"`
	Status    *string          `json:"status,omitempty"`
	Completed *bool            `json:"completed,omitempty"`
}

// TrackerRequest is used for both create and update. A null or empty taskId
// means no task.
type TrackerRequest struct {
	Type     *string          `json:"tracker_type,omitempty"`
	Duration *int64           `json:"duration,omitempty"`
	Date     *string          `json:"date,omitempty"`
	TaskID   Nullable[string] `json:"taskId,omitzero"`
}

type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Storage  string `json:"storage"`
}

// Export is a full copy of a user's data.
type Export struct {
	ExportedAt time.Time     `json:"exportedAt"`
	User       User          `json:"user"`
	Tasks      []Task        `json:"tasks"`
	Trackers   []Tracker     `json:"trackers"`
	Summary    stats.Summary `json:"summary"`
}

// Archive describes an export stored in object storage.
type Archive struct {
	Key       string    `json:"key"`
	Location  string    `json:"location"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type HeatmapResponse struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Timezone string       `json:"timezone"`
	Cells    []stats.Cell `json:"cells"`
}

func FromUser(u domain.User) User {
	return User{
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromTask(t domain.Task) Task {
	return Task{
		ID:        t.ID,
		Name:      t.Name,
		DueDate:   t.DueDate,
		Status:    t.Status,
		Completed: t.Completed,
		Owner:     t.Owner,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func FromTracker(t domain.Tracker) Tracker {
	return Tracker{
		ID:        t.ID,
		Type:      t.Type,
		Duration:  t.Duration,
		TaskID:    t.TaskID,
		Owner:     t.Owner,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func FromTasks(tasks []domain.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, FromTask(t))
	}
	return out
}

func FromTrackers(trackers []domain.Tracker) []Tracker {
	out := make([]Tracker, 0, len(trackers))
	for _, t := range trackers {
		out = append(out, FromTracker(t))
	}
	return out
}

func FromUsers(users []domain.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, FromUser(u))
	}
	return out
}
