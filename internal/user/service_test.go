package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-booking-backend/internal/auth"
)

func newTestService() Service {
	return NewService(NewMemoryRepository(), auth.NewBcryptPasswordHasherWithCost(4), nil)
}

func TestRegisterDerivesUsernameFromEmail(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "  Sarah.Chen@Example.com ",
		Password:    "password123",
		DisplayName: "Sarah Chen",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "sarah.chen@example.com", u.Email)
	assert.Equal(t, "Sarah Chen", u.Name())
	assert.True(t, u.IsActive)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "password123", Username: "no spaces"})
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestRegisterConflicts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "jo@example.com", Password: "password123", Username: "jo_dev"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "JO@example.com", Password: "password123", Username: "other"})
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	_, err = svc.Register(ctx, RegisterRequest{Email: "jo2@example.com", Password: "password123", Username: "jo_dev"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterRequest{Email: "kim@example.com", Password: "password123"})
	require.NoError(t, err)

	u, err := svc.Login(ctx, "KIM@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.NotNil(t, u.LastLoginAt)

	_, err = svc.Login(ctx, "kim@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	byName, err := svc.GetByUsername(ctx, " KIM ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
}
