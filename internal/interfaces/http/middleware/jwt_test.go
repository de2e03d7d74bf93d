package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/infrastructure/auth"
	"github.com/mandibooks/backend/internal/infrastructure/config"
	"github.com/mandibooks/backend/internal/infrastructure/logger"
	"github.com/mandibooks/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "mandibooks-test",
		AccessTokenExpiration: time.Hour,
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, permissions ...string) (string, *auth.Claims) {
	t.Helper()

	if len(permissions) == 0 {
		permissions = []string{auth.PermissionBooks}
	}
	token, _, err := svc.GenerateAccessToken(auth.GenerateTokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Username:    "munim",
		Permissions: permissions,
	})
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	return token, claims
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestJWTAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestJWTService()

	var ctxTenant uuid.UUID
	router := gin.New()
	router.Use(RequestID(), JWTAuth(svc, nil))
	router.GET("/books", func(c *gin.Context) {
		ctxTenant, _ = logger.TenantID(c.Request.Context())
		c.JSON(http.StatusOK, dto.NewSuccessResponse(GetJWTClaims(c).Username))
	})

	t.Run("valid token", func(t *testing.T) {
		token, claims := issueToken(t, svc)
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, claims.TenantUUID(), ctxTenant)
	})

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"not bearer", "Basic abc", dto.ErrCodeUnauthorized},
		{"empty token", "Bearer ", dto.ErrCodeUnauthorized},
		{"garbage token", "Bearer not.a.token", dto.ErrCodeTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/books", nil)
			req.Header.Set(HeaderRequestID, "req-jwt")
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			info := decodeError(t, w)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, "req-jwt", info.RequestID)
		})
	}

	t.Run("expired token", func(t *testing.T) {
		expired := auth.NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			Issuer:                "mandibooks-test",
			AccessTokenExpiration: -time.Minute,
		})
		token, _, err := expired.GenerateAccessToken(auth.GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New()})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenExpired, decodeError(t, w).Code)
	})
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestJWTService()

	router := gin.New()
	router.Use(JWTAuth(svc, nil))
	router.POST("/tenants", RequirePermission(auth.PermissionTenants), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	booksOnly, _ := issueToken(t, svc, auth.PermissionBooks)
	admin, _ := issueToken(t, svc, auth.PermissionTenants)

	req := httptest.NewRequest(http.MethodPost, "/tenants", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+booksOnly)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)

	req = httptest.NewRequest(http.MethodPost, "/tenants", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+admin)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}
