package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docshelf-app/docshelf-backend/internal/tenants"
)

const (
	CtxAuthUID    = "auth_uid"
	CtxUserDBID   = "user_db_id"
	CtxTenantID   = "tenant_id"
	CtxTenantRole = "tenant_role"
)

// UserDBID extracts the database user id stored by WithUser.
func UserDBID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserDBID))
}

// TenantContext assembles the tenant-scoped caller identity stored by the
// middleware chain. TenantID is empty when no tenant was resolved; the
// services turn that into their no-tenant error.
func TenantContext(c *gin.Context) tenants.Context {
	return tenants.Context{
		TenantID: strings.TrimSpace(c.GetString(CtxTenantID)),
		UserID:   UserDBID(c),
		Role:     c.GetString(CtxTenantRole),
	}
}
