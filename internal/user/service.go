package user

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"auth_service/internal/auth"
	"auth_service/internal/config"
	"auth_service/internal/observability"
	"auth_service/internal/queue"

	"github.com/sirupsen/logrus"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest identifies the user by exactly one of Username or Email.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token string
	User  *User
}

type UserServiceInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

type UserService struct {
	repo      UserRepositoryInterface
	publisher queue.Publisher
	metrics   *observability.Metrics
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserService(repo UserRepositoryInterface, publisher queue.Publisher, metrics *observability.Metrics, jwtCfg config.JWTConfig) UserServiceInterface {
	if publisher == nil {
		publisher = queue.NoopPublisher{}
	}
	return &UserService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		jwtSecret: jwtCfg.Secret,
		tokenTTL:  jwtCfg.TTL,
	}
}

// Register validates the request, stores a new user with a hashed password
// and issues a token for it.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := validateRegistration(req); err != nil {
		s.metrics.ObserveRegistration("invalid")
		return nil, err
	}

	if err := s.ensureAvailable(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	user := NewUser(req.Username, req.Email, req.Password)
	if err := user.HashPassword(); err != nil {
		s.metrics.ObserveRegistration("error")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			s.metrics.ObserveRegistration("duplicate")
			return nil, err
		}
		s.metrics.ObserveRegistration("error")
		return nil, fmt.Errorf("create user: %w", err)
	}

	result, err := s.issue(user)
	if err != nil {
		s.metrics.ObserveRegistration("error")
		return nil, err
	}

	s.metrics.ObserveRegistration("success")
	s.publish(ctx, queue.EventUserRegistered, user)
	return result, nil
}

// Login authenticates by username or email and issues a fresh token.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	method := "username"
	if req.Email != "" {
		method = "email"
	}

	if (req.Username == "") == (req.Email == "") {
		s.metrics.ObserveLogin(method, "invalid")
		return nil, newValidationError("Provide either a username or an email, not both")
	}
	if req.Password == "" {
		s.metrics.ObserveLogin(method, "invalid")
		return nil, newValidationError("Password is required")
	}

	var user *User
	var err error
	if req.Username != "" {
		user, err = s.repo.GetByUsername(ctx, req.Username)
	} else {
		user, err = s.repo.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metrics.ObserveLogin(method, "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		s.metrics.ObserveLogin(method, "error")
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := user.ComparePassword(req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.metrics.ObserveLogin(method, "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		s.metrics.ObserveLogin(method, "error")
		return nil, fmt.Errorf("compare password: %w", err)
	}

	result, err := s.issue(user)
	if err != nil {
		s.metrics.ObserveLogin(method, "error")
		return nil, err
	}

	s.metrics.ObserveLogin(method, "success")
	s.publish(ctx, queue.EventUserLoggedIn, user)
	return result, nil
}

// GetUserByID retrieves user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func validateRegistration(req RegisterRequest) error {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return newValidationError("All fields are required")
	}
	if utf8.RuneCountInString(req.Username) < MinUsernameLength {
		return newValidationError(fmt.Sprintf("Username must be at least %d characters long", MinUsernameLength))
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return newValidationError(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return newValidationError(fmt.Sprintf("Password must be at most %d bytes long", auth.MaxPasswordBytes))
	}
	return nil
}

func (s *UserService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		s.metrics.ObserveRegistration("duplicate")
		return ErrDuplicateUser
	} else if !errors.Is(err, ErrUserNotFound) {
		s.metrics.ObserveRegistration("error")
		return fmt.Errorf("find user by email: %w", err)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		s.metrics.ObserveRegistration("duplicate")
		return ErrDuplicateUser
	} else if !errors.Is(err, ErrUserNotFound) {
		s.metrics.ObserveRegistration("error")
		return fmt.Errorf("find user by username: %w", err)
	}

	return nil
}

func (s *UserService) issue(user *User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// publish never fails the request; a lost event is only logged.
func (s *UserService) publish(ctx context.Context, eventType queue.EventType, user *User) {
	event := queue.Event{
		Type:       eventType,
		UserID:     user.ID,
		Username:   user.Username,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event":   eventType,
			"user_id": user.ID,
		}).Warn("Failed to publish auth event")
	}
}
