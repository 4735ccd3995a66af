package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users    repository.UserRepository
	sessions session.Store
	log      *logger.Logger
	metrics  *metrics.Metrics
	hashCost int
}

func NewAuthService(users repository.UserRepository, sessions session.Store, log *logger.Logger, m *metrics.Metrics) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		log:      log.With("service", "AuthService"),
		metrics:  m,
		hashCost: bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with an empty cart.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || !strings.Contains(email, "@") || password == "" {
		s.metrics.Registrations.WithLabelValues("invalid").Inc()
		return ErrInvalidRegistration
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			s.metrics.Registrations.WithLabelValues("invalid").Inc()
			return ErrInvalidRegistration
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.users.CreateUser(ctx, &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Cart:         []domain.CartLine{},
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		s.metrics.Registrations.WithLabelValues("duplicate_email").Inc()
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}

	s.metrics.Registrations.WithLabelValues("success").Inc()
	s.log.WithContext(ctx).Info("user registered", "email", email)
	return nil
}

// Login verifies the password against the stored hash and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.Identity, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		s.metrics.Logins.WithLabelValues("invalid").Inc()
		return "", domain.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.WithContext(ctx).Warn("stored password hash unusable", "user_id", user.ID, "error", err)
		}
		s.metrics.Logins.WithLabelValues("invalid").Inc()
		return "", domain.Identity{}, ErrInvalidCredentials
	}

	identity := user.Identity()
	token, err := s.sessions.Create(ctx, identity)
	if err != nil {
		return "", domain.Identity{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.Logins.WithLabelValues("success").Inc()
	return token, identity, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Resolve maps a session token to its identity. Unknown or expired tokens give ErrUnauthenticated.
func (s *AuthService) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	identity, err := s.sessions.Get(ctx, token)
	if errors.Is(err, session.ErrSessionNotFound) {
		return domain.Identity{}, ErrUnauthenticated
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to resolve session: %w", err)
	}
	return identity, nil
}
