package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/auth"
	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/repository"
)

// invalidCredentials is shared by "no such email" and "wrong password" so a
// caller can't probe which accounts exist.
const invalidCredentials = "invalid email or password"

// AuthService handles registration, login and user lookup. It sits between
// the HTTP handlers and the auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt), TokenService (JWT)
//
// Plaintext passwords enter Register and Login and go no further than
// PasswordService. They are never stored, logged or echoed back.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput carries the fields of a new account. AvatarURL is optional.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	AvatarURL   *string
}

// AuthResult bundles the user and the token issued for them.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates an account.
//
// Email and display name are trimmed; the password is taken verbatim but
// must not be blank. Emails compare case-sensitively, so "A@x.io" and
// "a@x.io" are different accounts. A taken email fails with ErrConflict and
// leaves the existing account untouched.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)
	displayName := strings.TrimSpace(in.DisplayName)

	switch {
	case email == "":
		return nil, apperror.MissingField("email")
	case strings.TrimSpace(in.Password) == "":
		return nil, apperror.MissingField("password")
	case displayName == "":
		return nil, apperror.MissingField("displayName")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
		}
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if in.AvatarURL != nil {
		if avatar := strings.TrimSpace(*in.AvatarURL); avatar != "" {
			user.AvatarURL = &avatar
		}
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	return user, nil
}

// Login checks credentials and issues a 24h session token.
//
// An unknown email and a wrong password produce the same ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.MissingField("email")
	}
	if password == "" {
		return nil, apperror.MissingField("password")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Info("login rejected", slog.String("userID", user.ID))
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("service/auth: verifying password for user %s: %w", user.ID, err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// GetUser returns the user with the given ID, or ErrNotFound.
func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.MissingField("id")
	}
	return s.users.GetUserByID(ctx, id)
}
