package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "mandibooks-test",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Username:    "munim",
		Permissions: []string{PermissionBooks},
	}
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, expiresAt, err := svc.GenerateAccessToken(input)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, input.TenantID, claims.TenantUUID())
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, "munim", claims.Username)
	assert.True(t, claims.HasPermission(PermissionBooks))
	assert.False(t, claims.HasPermission(PermissionTenants))
}

func TestGenerateAccessToken_RequiresIdentity(t *testing.T) {
	svc := newTestJWTService()

	_, _, err := svc.GenerateAccessToken(GenerateTokenInput{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrMissingTenantID)

	_, _, err = svc.GenerateAccessToken(GenerateTokenInput{TenantID: uuid.New()})
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.GenerateAccessToken(newTestInput())
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_Rejections(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.GenerateAccessToken(newTestInput())
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("different secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-of-32-characters",
			Issuer:                "mandibooks-test",
			AccessTokenExpiration: time.Minute,
		})
		_, err := other.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("different issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			Issuer:                "someone-else",
			AccessTokenExpiration: time.Minute,
		})
		_, err := other.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tenant claim that is not a uuid", func(t *testing.T) {
		now := time.Now()
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "mandibooks-test",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
			TenantID: "acme",
			UserID:   uuid.NewString(),
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key-at-least-32-chars"))
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(forged)
		assert.ErrorIs(t, err, ErrMissingTenantID)
	})
}
