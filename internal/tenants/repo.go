package tenants

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotMember = errors.New("user is not a member of this tenant")

type Tenant struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// EnsureTenant upserts a tenant by slug and makes the creator an owner.
// Re-running for an existing slug only refreshes the name.
func (r *Repo) EnsureTenant(ctx context.Context, slug, name, creatorUserID string) (*Tenant, error) {
	if slug == "" {
		return nil, fmt.Errorf("tenant slug required")
	}

	const q = `
insert into tenants (slug, name)
values ($1, $2)
on conflict (slug) do update set name = excluded.name
returning id::text, slug, name, created_at;
`
	var t Tenant
	if err := r.db.QueryRow(ctx, q, slug, name).Scan(&t.ID, &t.Slug, &t.Name, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("ensure tenant: %w", err)
	}

	const mq = `
insert into tenant_members (tenant_id, user_id, role)
values ($1::uuid, $2::uuid, $3)
on conflict (tenant_id, user_id) do nothing;
`
	if _, err := r.db.Exec(ctx, mq, t.ID, creatorUserID, RoleOwner); err != nil {
		return nil, fmt.Errorf("ensure owner membership: %w", err)
	}

	return &t, nil
}

// Membership returns the caller's role in the tenant, or ErrNotMember.
func (r *Repo) Membership(ctx context.Context, tenantID, userID string) (string, error) {
	const q = `
select role
from tenant_members
where tenant_id = $1::uuid and user_id = $2::uuid;
`
	var role string
	err := r.db.QueryRow(ctx, q, tenantID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotMember
		}
		return "", fmt.Errorf("membership lookup: %w", err)
	}
	return role, nil
}

// ListForUser returns the tenants the user belongs to, newest first.
func (r *Repo) ListForUser(ctx context.Context, userID string) ([]Tenant, error) {
	const q = `
select t.id::text, t.slug, t.name, t.created_at
from tenants t
join tenant_members m on m.tenant_id = t.id
where m.user_id = $1::uuid
order by t.created_at desc;
`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Tenant, 0, 4)
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
