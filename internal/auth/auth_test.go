package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewService(Config{
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: string(hash),
		JWTSecret:         []byte("test-secret"),
	})
}

func TestLogin_Success(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Login("admin@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := svc.CurrentUser(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.True(t, user.Admin)
}

func TestLogin_CaseInsensitiveEmail(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Login("Admin@Example.COM", "hunter2")
	require.NoError(t, err)

	user, err := svc.CurrentUser(token)
	require.NoError(t, err)
	assert.True(t, user.Admin)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login("admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownIdentity(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login("visitor@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCurrentUser_InvalidToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CurrentUser("")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = svc.CurrentUser("not.a.token")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCurrentUser_RejectsForeignSignature(t *testing.T) {
	svc := newTestService(t)
	other := NewService(Config{
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: svc.cfg.AdminPasswordHash,
		JWTSecret:         []byte("different-secret"),
	})

	token, err := other.Login("admin@example.com", "hunter2")
	require.NoError(t, err)

	_, err = svc.CurrentUser(token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCurrentUser_ExpiredSession(t *testing.T) {
	svc := newTestService(t)

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Login("admin@example.com", "hunter2")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(8 * 24 * time.Hour) }
	_, err = svc.CurrentUser(token)
	assert.ErrorIs(t, err, ErrNoSession)
}
