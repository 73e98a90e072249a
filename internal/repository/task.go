package repository

import (
	"context"

	"focus-tracker/internal/domain"
)

// TaskRepository exposes persistence operations for Task aggregates.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Get(ctx context.Context, id string) (*domain.Task, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.Task, error)
	Update(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error)
	// Delete removes the task and every tracker referencing it.
	Delete(ctx context.Context, id string) error
}

// TrackerRepository exposes persistence operations for work sessions.
type TrackerRepository interface {
	Create(ctx context.Context, tracker *domain.Tracker) error
	Get(ctx context.Context, id string) (*domain.Tracker, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.Tracker, error)
	Update(ctx context.Context, id string, update domain.TrackerUpdate) (*domain.Tracker, error)
	Delete(ctx context.Context, id string) error
}
