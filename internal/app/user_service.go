package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz-assignment-service/internal/auth"
	"quiz-assignment-service/internal/domain"
)

// UserService handles accounts, logins and admin promotion.
type UserService struct {
	users     UserRepository
	tokens    *auth.Tokens
	adminCode string
	validate  *validator.Validate
	log       *zap.Logger
}

func NewUserService(users UserRepository, tokens *auth.Tokens, adminCode string, log *zap.Logger) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		adminCode: adminCode,
		validate:  newValidator(),
		log:       log,
	}
}

// Register creates a non-admin account and returns its ID.
func (s *UserService) Register(ctx context.Context, form RegisterForm) (string, error) {
	if err := s.validate.Struct(form); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return "", err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	user := domain.User{ID: id.String(), Username: form.Username, HashedPassword: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", err
	}
	s.log.Info("user registered", zap.String("user", user.ID))
	return user.ID, nil
}

// Login checks credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, bool, error) {
	user, err := s.users.UserByName(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", false, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", false, err
	}
	if !auth.CheckPassword(user.HashedPassword, password) {
		return "", false, domain.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", false, err
	}
	return token, user.IsAdmin, nil
}

// Authenticate resolves a bearer token to the current state of its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.UserByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("user %s: %w", userID, domain.ErrUnauthorized)
	}
	return user, err
}

// Promote grants admin rights when code matches the configured admin code.
func (s *UserService) Promote(ctx context.Context, userID, code string) error {
	if s.adminCode == "" || subtle.ConstantTimeCompare([]byte(code), []byte(s.adminCode)) != 1 {
		return domain.ErrInvalidAdminCode
	}
	if err := s.users.SetAdmin(ctx, userID, true); err != nil {
		return err
	}
	s.log.Info("user promoted", zap.String("user", userID))
	return nil
}
