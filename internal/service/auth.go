package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"filesmanager/internal/model"
	"filesmanager/internal/repository"
	"filesmanager/internal/session"
)

// RegisterInput is the payload of a user registration.
type RegisterInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var registerMessages = map[string]string{
	"email":    "Missing email",
	"password": "Missing password",
}

// AuthService manages users and their sessions.
type AuthService interface {
	// Register creates a user with a bcrypt hashed password.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// Connect verifies credentials and issues a session token.
	Connect(ctx context.Context, email, password string) (string, error)

	// Disconnect revokes token. An unknown token is ErrUnauthorized.
	Disconnect(ctx context.Context, token string) error

	// Me returns the user behind an authenticated request.
	Me(ctx context.Context, userID int64) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	sessions session.Store
	validate *validator.Validate
	cost     int
	log      *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repository.UserRepository, sessions session.Store, log *zap.Logger) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		validate: newValidator(),
		cost:     bcrypt.DefaultCost,
		log:      log.Named("auth"),
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validatePayload(s.validate, in, registerMessages); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, invalid("Invalid password")
	}

	user, err := s.users.Create(ctx, &model.User{Email: in.Email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("Already exist")
		}
		return nil, fmt.Errorf("%w: create user: %v", ErrUnavailable, err)
	}
	return user, nil
}

func (s *authService) Connect(ctx context.Context, email, password string) (string, error) {
	if email == "" {
		return "", ErrUnauthorized
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("%w: lookup user: %v", ErrUnavailable, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrUnauthorized
	}

	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.log.Info("session issued", zap.Int64("user_id", user.ID))
	return token, nil
}

func (s *authService) Disconnect(ctx context.Context, token string) error {
	userID, ok := s.sessions.Resolve(ctx, token)
	if !ok {
		return ErrUnauthorized
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.log.Info("session revoked", zap.Int64("user_id", userID))
	return nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: lookup user: %v", ErrUnavailable, err)
	}
	return user, nil
}
