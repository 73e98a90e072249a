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

const userColumns = `username, email, password_hash, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapWriteErr(err))
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, username ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Update applies the non-nil fields of update. Renaming a user relies on the
// ON UPDATE CASCADE owner references to carry tasks and trackers along.
func (r *UserRepository) Update(ctx context.Context, username string, update domain.UserUpdate) (*domain.User, error) {
	sets := []string{}
	args := []any{}
	if update.Username != nil {
		sets = append(sets, "username=?")
		args = append(args, *update.Username)
	}
	if update.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, *update.Email)
	}
	if update.PasswordHash != nil {
		sets = append(sets, "password_hash=?")
		args = append(args, *update.PasswordHash)
	}
	sets = append(sets, "updated_at=?")
	args = append(args, time.Now().UTC(), username)

	res, err := r.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE username=?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", mapWriteErr(err))
	}
	if err := expectAffected(res, "user"); err != nil {
		return nil, err
	}

	current := username
	if update.Username != nil {
		current = *update.Username
	}
	return r.GetByUsername(ctx, current)
}

func (r *UserRepository) Delete(ctx context.Context, username string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM trackers WHERE owner=?`, username); err != nil {
			return fmt.Errorf("delete user trackers: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE owner=?`, username); err != nil {
			return fmt.Errorf("delete user tasks: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE username=?`, username)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return expectAffected(res, "user")
	})
}

func scanUser(row scanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}

func expectAffected(res sql.Result, entity string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if aff == 0 {
		return fmt.Errorf("%s: %w", entity, repository.ErrNotFound)
	}
	return nil
}
