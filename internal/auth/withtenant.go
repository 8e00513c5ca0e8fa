package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docshelf-app/docshelf-backend/internal/tenants"
)

// WithTenant resolves the active tenant from the X-Tenant-Id header and
// verifies the caller's membership. A missing header leaves the tenant
// context empty; the services report that as "no tenant selected". An
// unknown tenant and a tenant the caller does not belong to are both
// rejected the same way.
func WithTenant(tenantRepo *tenants.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader("X-Tenant-Id"))
		if tenantID == "" {
			c.Next()
			return
		}

		role, err := tenantRepo.Membership(c.Request.Context(), tenantID, UserDBID(c))
		if err != nil {
			if errors.Is(err, tenants.ErrNotMember) {
				c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "not a member of this tenant"})
				c.Abort()
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "tenant lookup failed"})
			c.Abort()
			return
		}

		c.Set(CtxTenantID, tenantID)
		c.Set(CtxTenantRole, role)
		c.Next()
	}
}
