package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

type stubTenants struct {
	err     error
	checked []uuid.UUID
}

func (s *stubTenants) EnsureActive(_ context.Context, id uuid.UUID) error {
	s.checked = append(s.checked, id)
	return s.err
}

func TestActiveTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestJWTService()
	token, claims := issueToken(t, svc)

	serve := func(checker TenantChecker, withAuth bool) (*httptest.ResponseRecorder, uuid.UUID) {
		var handlerTenant uuid.UUID
		router := gin.New()
		if withAuth {
			router.Use(JWTAuth(svc, nil))
		}
		router.Use(ActiveTenant(checker, nil))
		router.GET("/books", func(c *gin.Context) {
			handlerTenant = GetTenantID(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w, handlerTenant
	}

	t.Run("active tenant from claims", func(t *testing.T) {
		checker := &stubTenants{}
		w, tenant := serve(checker, true)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, claims.TenantUUID(), tenant)
		assert.Equal(t, []uuid.UUID{claims.TenantUUID()}, checker.checked)
	})

	t.Run("suspended tenant", func(t *testing.T) {
		w, _ := serve(&stubTenants{err: shared.NewDomainError("FORBIDDEN", "Tenant is suspended")}, true)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		err := fmt.Errorf("load: %w", shared.NewNotFoundError("tenant", claims.TenantUUID()))
		w, _ := serve(&stubTenants{err: err}, true)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		w, _ := serve(&stubTenants{err: errors.New("connection reset")}, true)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeInternal, decodeError(t, w).Code)
	})

	t.Run("no claims", func(t *testing.T) {
		w, _ := serve(&stubTenants{}, false)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
