package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	svc      *AuthService
	users    *mockUserRepository
	sessions *mockSessionStore
	metrics  *metrics.Metrics
}

func newAuthFixture() *authFixture {
	users := newMockUserRepository()
	sessions := newMockSessionStore()
	m := metrics.NewUnregistered()
	svc := NewAuthService(users, sessions, logger.NewNop(), m)
	svc.hashCost = bcrypt.MinCost
	return &authFixture{svc: svc, users: users, sessions: sessions, metrics: m}
}

func TestRegisterThenLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, "Ana", " Ana@Example.com ", "secret"))

	user, err := f.users.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", user.PasswordHash)
	assert.NotNil(t, user.Cart)
	assert.Empty(t, user.Cart)

	token, identity, err := f.svc.Login(ctx, "ANA@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "Ana", identity.Name)

	resolved, err := f.svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, identity, resolved)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Registrations.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Logins.WithLabelValues("success")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, "Ana", "ana@example.com", "secret"))

	err := f.svc.Register(ctx, "Other Ana", "ANA@example.com", "another")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_InvalidInput(t *testing.T) {
	f := newAuthFixture()

	tests := []struct {
		name, user, email, password string
	}{
		{"blank name", "  ", "ana@example.com", "secret"},
		{"bad email", "Ana", "ana.example.com", "secret"},
		{"empty password", "Ana", "ana@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.Register(context.Background(), tt.user, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidRegistration)
		})
	}
	assert.Empty(t, f.users.users)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, "Ana", "ana@example.com", "secret"))

	_, _, err := f.svc.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.svc.Login(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Empty(t, f.sessions.sessions)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Logins.WithLabelValues("invalid")))
}

func TestLogin_SessionStoreDown(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, "Ana", "ana@example.com", "secret"))
	f.sessions.err = errors.New("redis down")

	_, _, err := f.svc.Login(ctx, "ana@example.com", "secret")
	assert.ErrorContains(t, err, "failed to create session")
}

func TestLogout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, "Ana", "ana@example.com", "secret"))
	token, _, err := f.svc.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, token))
	require.NoError(t, f.svc.Logout(ctx, ""))

	_, err = f.svc.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
