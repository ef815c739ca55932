package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/introly/introly-backend/internal/response"
)

// ContextKeyTenantID is the Gin context key for the resolved tenant.
const ContextKeyTenantID = "tenant_id"

// TenantHeader carries the tenant selector on every API request.
const TenantHeader = "X-Tenant-ID"

// RequireTenant resolves the tenant from the X-Tenant-ID header and rejects
// requests without one.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(TenantHeader))
		if tenantID == "" {
			response.AbortFail(c, http.StatusBadRequest, response.ErrTenantRequired)
			return
		}

		c.Set(ContextKeyTenantID, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by RequireTenant, or "".
func GetTenantID(c *gin.Context) string {
	return c.GetString(ContextKeyTenantID)
}
