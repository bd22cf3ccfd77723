package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/personal_library/internal/hash"
	"github.com/Skotchmaster/personal_library/internal/logging"
	"github.com/Skotchmaster/personal_library/internal/models"
	"github.com/Skotchmaster/personal_library/internal/repo"
	"github.com/Skotchmaster/personal_library/internal/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Service
}

type LoginResult struct {
	Token    string
	UserID   uint
	Username string
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || password == "" {
		return ErrValidation
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return err
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return ErrConflict
		}
		l.Error("register_error", "status", 500, "error", err)
		return err
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Repo.UserExist(ctx, username, password)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	}, nil
}
