package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/joshwa2003/hr-helpdesk/internal/config"
	"github.com/joshwa2003/hr-helpdesk/internal/domain"
	apperrors "github.com/joshwa2003/hr-helpdesk/pkg/util"
)

func newAuthEnv() (*AuthService, *memUserRepo) {
	users := newMemUserRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 15,
			BcryptCost:            bcrypt.MinCost,
		},
	}
	return NewAuthService(cfg, users), users
}

func TestRegisterDefaultsToEmployee(t *testing.T) {
	svc, _ := newAuthEnv()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Priya",
		Email:    "Priya@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, user.Role)
	assert.Equal(t, "priya@example.com", user.Email)
	assert.True(t, user.Active)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthEnv()

	input := RegisterInput{Name: "A", Email: "a@example.com", Password: "pw123456"}
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newAuthEnv()
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "A", Email: "a@example.com", Password: "pw123456",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "A@example.com", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "a@example.com", result.User.Email)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, domain.RoleEmployee, claims.Role)
}

func TestLoginRejectsBadCredentialsAndDisabledAccounts(t *testing.T) {
	svc, users := newAuthEnv()
	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "A", Email: "a@example.com", Password: "pw123456",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@example.com", "wrong")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
	_, err = svc.Login(context.Background(), "nobody@example.com", "pw123456")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	user.Active = false
	require.NoError(t, users.Update(context.Background(), user))
	_, err = svc.Login(context.Background(), "a@example.com", "pw123456")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthEnv()
	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "A", Email: "a@example.com", Password: "pw123456",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user, "pw123456", "short")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	err = svc.ChangePassword(context.Background(), user, "wrong-old", "new-pw-123456")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	require.NoError(t, svc.ChangePassword(context.Background(), user, "pw123456", "new-pw-123456"))
	_, err = svc.Login(context.Background(), "a@example.com", "new-pw-123456")
	assert.NoError(t, err)
}
