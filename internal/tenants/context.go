package tenants

// Roles a user can hold inside a tenant.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Context is the resolved caller identity for tenant-scoped operations.
// It is produced by the auth middleware and trusted by the services.
type Context struct {
	TenantID string
	UserID   string
	Role     string
}

// HasTenant reports whether the caller has an active tenant selected.
func (c Context) HasTenant() bool {
	return c.TenantID != ""
}

// CanMutate reports whether the caller's role allows write operations.
// Viewers are read-only.
func (c Context) CanMutate() bool {
	return c.Role == RoleOwner || c.Role == RoleAdmin
}
