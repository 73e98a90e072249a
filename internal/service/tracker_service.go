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

// CreateTrackerInput is the payload for a finished work session. An empty
// TaskID is the same as no task.
type CreateTrackerInput struct {
	Type     string     `json:"tracker_type" label:"Tracker type" validate:"required,min=1,max=50"`
	Duration int64      `json:"duration" label:"Duration" validate:"required,gt=0"`
	Date     *time.Time `json:"date,omitempty"`
	TaskID   *string    `json:"taskId,omitempty"`
}

// UpdateTrackerInput is a partial tracker update. A TaskID pointing at an
// empty string unlinks the tracker from its task.
type UpdateTrackerInput struct {
	Type     *string    `json:"tracker_type,omitempty" label:"Tracker type" validate:"omitempty,min=1,max=50"`
	Duration *int64     `json:"duration,omitempty" label:"Duration" validate:"omitempty,gt=0"`
	Date     *time.Time `json:"date,omitempty"`
	TaskID   *string    `json:"taskId,omitempty"`
}

// TrackerService coordinates tracker operations on behalf of a signed-in user.
type TrackerService interface {
	List(ctx context.Context, owner string) ([]domain.Tracker, error)
	Get(ctx context.Context, owner, id string) (*domain.Tracker, error)
	Create(ctx context.Context, owner string, in CreateTrackerInput) (*domain.Tracker, error)
	Update(ctx context.Context, owner, id string, in UpdateTrackerInput) (*domain.Tracker, error)
	Delete(ctx context.Context, owner, id string) (*domain.Tracker, error)
}

type trackerService struct {
	trackers repository.TrackerRepository
	tasks    repository.TaskRepository
}

func NewTrackerService(trackers repository.TrackerRepository, tasks repository.TaskRepository) TrackerService {
	return &trackerService{
		trackers: trackers,
		tasks:    tasks,
	}
}

func (s *trackerService) List(ctx context.Context, owner string) ([]domain.Tracker, error) {
	trackers, err := s.trackers.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list trackers of %s: %w", owner, err)
	}
	return trackers, nil
}

func (s *trackerService) Get(ctx context.Context, owner, id string) (*domain.Tracker, error) {
	return s.owned(ctx, owner, id)
}

func (s *trackerService) Create(ctx context.Context, owner string, in CreateTrackerInput) (*domain.Tracker, error) {
	in.Type = strings.TrimSpace(in.Type)
	if fields := validate.Struct(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	taskID := normalizeTaskID(in.TaskID)
	if taskID != nil {
		if err := s.checkTask(ctx, owner, *taskID); err != nil {
			return nil, err
		}
	}

	tracker := &domain.Tracker{
		ID:       uuid.NewString(),
		Type:     in.Type,
		Duration: in.Duration,
		Owner:    owner,
		TaskID:   taskID,
	}
	if in.Date != nil {
		tracker.CreatedAt = *in.Date
	}

	if err := s.trackers.Create(ctx, tracker); err != nil {
		return nil, err
	}
	return tracker, nil
}

func (s *trackerService) Update(ctx context.Context, owner, id string, in UpdateTrackerInput) (*domain.Tracker, error) {
	if in.Type != nil {
		v := strings.TrimSpace(*in.Type)
		in.Type = &v
	}
	if fields := validate.Struct(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.owned(ctx, owner, id); err != nil {
		return nil, err
	}

	update := domain.TrackerUpdate{
		Type:     in.Type,
		Duration: in.Duration,
		Date:     in.Date,
	}
	if in.TaskID != nil {
		taskID := normalizeTaskID(in.TaskID)
		if taskID == nil {
			update.ClearTask = true
		} else {
			if err := s.checkTask(ctx, owner, *taskID); err != nil {
				return nil, err
			}
			update.TaskID = taskID
		}
	}

	tracker, err := s.trackers.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrackerNotFound
		}
		return nil, err
	}
	return tracker, nil
}

func (s *trackerService) Delete(ctx context.Context, owner, id string) (*domain.Tracker, error) {
	tracker, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.trackers.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrackerNotFound
		}
		return nil, fmt.Errorf("delete tracker %s: %w", id, err)
	}
	return tracker, nil
}

func (s *trackerService) owned(ctx context.Context, owner, id string) (*domain.Tracker, error) {
	tracker, err := s.trackers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrackerNotFound
		}
		return nil, err
	}
	if tracker.Owner != owner {
		return nil, ErrNotYourTracker
	}
	return tracker, nil
}

// checkTask makes sure the referenced task exists and belongs to owner.
// Both failures look the same to the caller.
func (s *trackerService) checkTask(ctx context.Context, owner, taskID string) error {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotOwned
		}
		return err
	}
	if task.Owner != owner {
		return ErrTaskNotOwned
	}
	return nil
}

func normalizeTaskID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}
