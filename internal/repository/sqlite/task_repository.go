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

const taskColumns = `id, name, due_date, status, completed, owner, created_at, updated_at`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (id, name, due_date, status, completed, owner, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Name,
		nullTime(task.DueDate),
		task.Status,
		task.Completed,
		task.Owner,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", mapWriteErr(err))
	}
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, id)
	return scanTask(row)
}

func (r *TaskRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE owner=?
ORDER BY created_at ASC, id ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error) {
	sets := []string{}
	args := []any{}
	if update.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *update.Name)
	}
	switch {
	case update.ClearDueDate:
		sets = append(sets, "due_date=NULL")
	case update.DueDate != nil:
		sets = append(sets, "due_date=?")
		args = append(args, update.DueDate.UTC())
	}
	if update.Status != nil {
		sets = append(sets, "status=?")
		args = append(args, *update.Status)
	}
	if update.Completed != nil {
		sets = append(sets, "completed=?")
		args = append(args, *update.Completed)
	}
	sets = append(sets, "updated_at=?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if err := expectAffected(res, "task"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM trackers WHERE task_id=?`, id); err != nil {
			return fmt.Errorf("delete task trackers: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return expectAffected(res, "task")
	})
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task    domain.Task
		dueDate sql.NullTime
	)

	if err := row.Scan(
		&task.ID,
		&task.Name,
		&dueDate,
		&task.Status,
		&task.Completed,
		&task.Owner,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		task.DueDate = &t
	}
	return &task, nil
}
