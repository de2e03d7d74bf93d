package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// TenantIDKey holds the acting tenant on the gin context
const TenantIDKey = "tenant_id"

// TenantChecker reports whether a tenant may keep books
type TenantChecker interface {
	EnsureActive(ctx context.Context, id uuid.UUID) error
}

// ActiveTenant takes the acting tenant from the token claims and turns away
// unknown or suspended tenants. It must run after JWTAuth. Handlers never
// read a tenant from anywhere else.
func ActiveTenant(checker TenantChecker, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Tenant identification required")
			return
		}
		tenantID := claims.TenantUUID()
		if tenantID == uuid.Nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Tenant identification required")
			return
		}

		if err := checker.EnsureActive(c.Request.Context(), tenantID); err != nil {
			if shared.IsNotFound(err) {
				abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Unknown tenant")
				return
			}
			status, info := dto.FromError(err)
			if status == http.StatusInternalServerError {
				log.Error("Tenant check failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
			}
			info.RequestID = GetRequestID(c)
			c.AbortWithStatusJSON(status, dto.NewErrorResponse(info))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant set by ActiveTenant, or uuid.Nil
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
