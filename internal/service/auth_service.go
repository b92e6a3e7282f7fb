package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"

	"github.com/casamarela/innkeeper/internal/domain"
	"github.com/casamarela/innkeeper/internal/repo/postgres"
	"github.com/casamarela/innkeeper/pkg/auth"
	"github.com/casamarela/innkeeper/pkg/config"
	"github.com/casamarela/innkeeper/pkg/events"
	"github.com/casamarela/innkeeper/pkg/logger"
)

type RegisterRequest struct {
	Name      string `validate:"required,min=2,max=120"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=8,max=128"`
	BirthDate *time.Time
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	// AdminLogin verifies admin credentials and issues a bearer token for
	// the admin API.
	AdminLogin(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	users    postgres.UserRepository
	bus      events.Publisher
	cfg      *config.Config
	validate *validator.Validate
}

func NewAuthService(users postgres.UserRepository, bus events.Publisher, cfg *config.Config) AuthService {
	return &authService{
		users:    users,
		bus:      bus,
		cfg:      cfg,
		validate: validator.New(),
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*domain.User, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.NewFormError(registerValidationMessage(err))
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, hash, req.Name, req.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	event := events.GuestRegisteredEvent{
		Email:        user.Email,
		Name:         user.Name,
		RegisteredAt: user.CreatedAt,
	}
	if err := s.bus.Publish(ctx, events.GuestRegistered, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish guest registered event", "error", err, "email", user.Email)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	user, err := s.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	if user.Role != domain.RoleAdmin {
		return "", domain.ErrInvalidCredentials
	}

	return auth.NewAdminToken(user.Email, s.cfg.Auth.JWTSecret, s.cfg.Auth.AdminTokenTTL)
}

func registerValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid registration data"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Name":
		return "please enter your name"
	case "Email":
		return "please enter a valid email address"
	case "Password":
		if fe.Tag() == "min" {
			return "password must be at least 8 characters"
		}
		return "please choose a valid password"
	default:
		return "invalid registration data"
	}
}
