package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/repository"
	"focus-tracker/internal/validate"
)

// CreateUserInput is the payload for registration and for POST /users.
type CreateUserInput struct {
	Username string `json:"usn" label:"Username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"pass" label:"Password" validate:"required,min=6,max=72,maxbytes=72"`
}

// UpdateUserInput is a partial profile update; nil fields are left alone.
type UpdateUserInput struct {
	Username *string `json:"usn,omitempty" label:"Username" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"pass,omitempty" label:"Password" validate:"omitempty,min=6,max=72,maxbytes=72"`
}

// UserService describes user lifecycle operations.
type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, caller, username string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, caller, username string) (*domain.User, error)
}

// UserHooks run after an account change has been committed. Failures are
// reported by the hook itself; they never undo the change.
type UserHooks struct {
	// Renamed runs when a username changes, with the old and new names.
	Renamed func(ctx context.Context, from, to string)
	// Deleted runs after a user and everything it owned are gone.
	Deleted func(ctx context.Context, username string)
}

type userService struct {
	users repository.UserRepository
	hooks UserHooks
}

func NewUserService(users repository.UserRepository, hooks UserHooks) UserService {
	return &userService{
		users: users,
		hooks: hooks,
	}
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if fields := validate.Struct(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.ensureAvailable(ctx, "", &in.Username, &in.Email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapUserConflict(err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) Get(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, len(users))
	for i := range users {
		out[i] = *sanitizeUser(&users[i])
	}
	return out, nil
}

func (s *userService) Update(ctx context.Context, caller, username string, in UpdateUserInput) (*domain.User, error) {
	if in.Username != nil {
		v := strings.TrimSpace(*in.Username)
		in.Username = &v
	}
	if in.Email != nil {
		v := strings.TrimSpace(*in.Email)
		in.Email = &v
	}
	if fields := validate.Struct(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.owned(ctx, caller, username); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, username, in.Username, in.Email); err != nil {
		return nil, err
	}

	update := domain.UserUpdate{
		Username: in.Username,
		Email:    in.Email,
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, username, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, mapUserConflict(err)
	}

	if user.Username != username && s.hooks.Renamed != nil {
		s.hooks.Renamed(ctx, username, user.Username)
	}
	return sanitizeUser(user), nil
}

func (s *userService) Delete(ctx context.Context, caller, username string) (*domain.User, error) {
	user, err := s.owned(ctx, caller, username)
	if err != nil {
		return nil, err
	}

	if err := s.users.Delete(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user %s: %w", username, err)
	}

	if s.hooks.Deleted != nil {
		s.hooks.Deleted(ctx, username)
	}
	return sanitizeUser(user), nil
}

// owned loads username and checks that caller may modify it. Accounts can
// only be changed by their holder.
func (s *userService) owned(ctx context.Context, caller, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Username != caller {
		return nil, ErrNotYourAccount
	}
	return user, nil
}

// ensureAvailable checks the requested username and email against users
// other than self. Username is checked first.
func (s *userService) ensureAvailable(ctx context.Context, self string, username, email *string) error {
	if username != nil {
		existing, err := s.users.GetByUsername(ctx, *username)
		switch {
		case err == nil && existing.Username != self:
			return ErrUsernameTaken
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	if email != nil {
		existing, err := s.users.GetByEmail(ctx, *email)
		switch {
		case err == nil && existing.Username != self:
			return ErrEmailTaken
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	return nil
}

// mapUserConflict covers the race where a concurrent insert wins after the
// availability check.
func mapUserConflict(err error) error {
	var conflict *repository.ConflictError
	if !errors.As(err, &conflict) {
		return err
	}
	if conflict.Field == "email" {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
