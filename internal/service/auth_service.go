package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"focus-tracker/internal/auth"
	"focus-tracker/internal/domain"
	"focus-tracker/internal/repository"
	"focus-tracker/internal/validate"
)

// LoginInput is the login payload.
type LoginInput struct {
	Username string `json:"usn" label:"Username" validate:"required"`
	Password string `json:"pass" label:"Password" validate:"required"`
}

// Session is a signed-in user together with its bearer token.
type Session struct {
	User  *domain.User
	Token string
}

// AuthService issues and verifies bearer tokens.
type AuthService interface {
	Register(ctx context.Context, in CreateUserInput) (*Session, error)
	Login(ctx context.Context, in LoginInput) (*Session, error)
	// Verify checks the token and that its user still exists.
	Verify(ctx context.Context, token string) (*domain.User, error)
}

type authService struct {
	users    repository.UserRepository
	accounts UserService
	codec    *auth.Codec
}

func NewAuthService(users repository.UserRepository, codec *auth.Codec) AuthService {
	return &authService{
		users:    users,
		accounts: NewUserService(users, UserHooks{}),
		codec:    codec,
	}
}

func (s *authService) Register(ctx context.Context, in CreateUserInput) (*Session, error) {
	user, err := s.accounts.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	if fields := validate.Struct(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			burnPasswordCheck(in.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !checkPassword(user.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(sanitizeUser(user))
}

func (s *authService) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownTokenUser
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *authService) session(user *domain.User) (*Session, error) {
	token, err := s.codec.Issue(user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token for %s: %w", user.Username, err)
	}
	return &Session{User: user, Token: token}, nil
}
