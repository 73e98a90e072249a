package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/repository"
	"focus-tracker/internal/validate"
)

// CreateTaskInput is the payload for a new task.
type CreateTaskInput struct {
	Name      string     `json:"task_name" label:"Task name" validate:"required,min=1,max=200"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Status    *string    `json:"status,omitempty" label:"Status" validate:"omitempty,max=50"`
	Completed *bool      `json:"completed,omitempty"`
}

// UpdateTaskInput is a partial task update; nil fields are left alone.
type UpdateTaskInput struct {
	Name         *string    `json:"task_name,omitempty" label:"Task name" validate:"omitempty,min=1,max=200"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"-"`
	Status       *string    `json:"status,omitempty" label:"Status" validate:"omitempty,max=50"`
	Completed    *bool      `json:"completed,omitempty"`
}

// TaskService coordinates task operations on behalf of a signed-in user.
type TaskService interface {
	List(ctx context.Context, owner string) ([]domain.Task, error)
	Get(ctx context.Context, owner, id string) (*domain.Task, error)
	Create(ctx context.Context, owner string, in CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, owner, id string, in UpdateTaskInput) (*domain.Task, error)
	// Delete removes the task and its trackers and returns what was deleted.
	Delete(ctx context.Context, owner, id string) (*domain.Task, error)
}

type taskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func (s *taskService) List(ctx context.Context, owner string) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks of %s: %w", owner, err)
	}
	return tasks, nil
}

func (s *taskService) Get(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.owned(ctx, owner, id)
}

func (s *taskService) Create(ctx context.Context, owner string, in CreateTaskInput) (*domain.Task, error) {
	in.Name = strings.TrimSpace(in.Name)
	if fields := validate.Struct(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	task := &domain.Task{
		ID:      uuid.NewString(),
		Name:    in.Name,
		DueDate: in.DueDate,
		Status:  domain.DefaultTaskStatus,
		Owner:   owner,
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		task.Status = strings.TrimSpace(*in.Status)
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, owner, id string, in UpdateTaskInput) (*domain.Task, error) {
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		in.Name = &v
	}
	// an empty status means "leave it", as it does for the web client
	if in.Status != nil && strings.TrimSpace(*in.Status) == "" {
		in.Status = nil
	}
	if fields := validate.Struct(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.owned(ctx, owner, id); err != nil {
		return nil, err
	}

	task, err := s.tasks.Update(ctx, id, domain.TaskUpdate{
		Name:         in.Name,
		DueDate:      in.DueDate,
		ClearDueDate: in.ClearDueDate && in.DueDate == nil,
		Status:       in.Status,
		Completed:    in.Completed,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, owner, id string) (*domain.Task, error) {
	task, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("delete task %s: %w", id, err)
	}
	return task, nil
}

func (s *taskService) owned(ctx context.Context, owner, id string) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.Owner != owner {
		return nil, ErrNotYourTask
	}
	return task, nil
}
