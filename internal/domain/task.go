package domain

import "time"

// DefaultTaskStatus is applied when a task is created without a status.
const DefaultTaskStatus = "pending"

// Task is a unit of work owned by a single user.
type Task struct {
	ID        string
	Name      string
	DueDate   *time.Time
	Status    string
	Completed bool
	Owner     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskUpdate carries the fields of a partial task update. Nil means
// unchanged; ClearDueDate removes the due date.
type TaskUpdate struct {
	Name         *string
	DueDate      *time.Time
	ClearDueDate bool
	Status       *string
	Completed    *bool
}
