package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/repository"
)

const trackerColumns = `id, type, duration, owner, task_id, created_at, updated_at`

type TrackerRepository struct {
	db *sql.DB
}

func NewTrackerRepository(db *sql.DB) repository.TrackerRepository {
	return &TrackerRepository{db: db}
}

// Create stores tracker. A non-zero CreatedAt is kept so sessions can be
// back-filled onto an earlier day.
func (r *TrackerRepository) Create(ctx context.Context, tracker *domain.Tracker) error {
	now := time.Now().UTC()
	if tracker.CreatedAt.IsZero() {
		tracker.CreatedAt = now
	}
	tracker.CreatedAt = tracker.CreatedAt.UTC()
	tracker.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO trackers (id, type, duration, owner, task_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tracker.ID,
		tracker.Type,
		tracker.Duration,
		tracker.Owner,
		nullString(tracker.TaskID),
		tracker.CreatedAt,
		tracker.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tracker: %w", mapWriteErr(err))
	}
	return nil
}

func (r *TrackerRepository) Get(ctx context.Context, id string) (*domain.Tracker, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+trackerColumns+` FROM trackers WHERE id=?`, id)
	return scanTracker(row)
}

func (r *TrackerRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Tracker, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+trackerColumns+`
FROM trackers
WHERE owner=?
ORDER BY created_at ASC, id ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("query trackers: %w", err)
	}
	defer rows.Close()

	trackers := []domain.Tracker{}
	for rows.Next() {
		tracker, err := scanTracker(rows)
		if err != nil {
			return nil, err
		}
		trackers = append(trackers, *tracker)
	}
	return trackers, rows.Err()
}

func (r *TrackerRepository) Update(ctx context.Context, id string, update domain.TrackerUpdate) (*domain.Tracker, error) {
	sets := []string{}
	args := []any{}
	if update.Type != nil {
		sets = append(sets, "type=?")
		args = append(args, *update.Type)
	}
	if update.Duration != nil {
		sets = append(sets, "duration=?")
		args = append(args, *update.Duration)
	}
	switch {
	case update.ClearTask:
		sets = append(sets, "task_id=NULL")
	case update.TaskID != nil:
		sets = append(sets, "task_id=?")
		args = append(args, *update.TaskID)
	}
	if update.Date != nil {
		sets = append(sets, "created_at=?")
		args = append(args, update.Date.UTC())
	}
	sets = append(sets, "updated_at=?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.db.ExecContext(ctx, `UPDATE trackers SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update tracker: %w", err)
	}
	if err := expectAffected(res, "tracker"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *TrackerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trackers WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete tracker: %w", err)
	}
	return expectAffected(res, "tracker")
}

func scanTracker(row scanner) (*domain.Tracker, error) {
	var (
		tracker domain.Tracker
		taskID  sql.NullString
	)

	if err := row.Scan(
		&tracker.ID,
		&tracker.Type,
		&tracker.Duration,
		&tracker.Owner,
		&taskID,
		&tracker.CreatedAt,
		&tracker.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tracker: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan tracker: %w", err)
	}

	tracker.CreatedAt = tracker.CreatedAt.UTC()
	tracker.UpdatedAt = tracker.UpdatedAt.UTC()
	if taskID.Valid {
		v := taskID.String
		tracker.TaskID = &v
	}
	return &tracker, nil
}
