package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docshelf-app/docshelf-backend/internal/projects/domain"
)

const projectColumns = `
id, tenant_id::text, slug, name,
coalesce(description,''), coalesce(meta_title,''), coalesce(meta_description,''),
coalesce(primary_color,''), coalesce(custom_css,''),
settings, is_public, published_at, is_active, created_at, updated_at`

// Repo provides persistence for projects. Every query filters on tenant_id
// so a caller can never reach another tenant's rows; "wrong tenant" and
// "does not exist" are indistinguishable by construction.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Insert persists a new project. The partial unique index on
// (tenant_id, slug) where is_active is the authoritative uniqueness check;
// a violation surfaces as domain.ErrSlugConflict.
func (r *Repo) Insert(ctx context.Context, p *domain.Project) error {
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	const q = `
insert into projects
  (id, tenant_id, slug, name, description, meta_title, meta_description,
   primary_color, custom_css, settings, is_public, published_at)
values
  ($1, $2::uuid, $3, $4, nullif($5,''), nullif($6,''), nullif($7,''),
   nullif($8,''), nullif($9,''), $10, $11, $12)
returning created_at, updated_at, is_active;
`
	err = r.db.QueryRow(ctx, q,
		p.ID, p.TenantID, p.Slug, p.Name, p.Description, p.MetaTitle, p.MetaDescription,
		p.PrimaryColor, p.CustomCSS, settings, p.IsPublic, p.PublishedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt, &p.IsActive)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

// GetByID returns the active project with the given id under the tenant.
func (r *Repo) GetByID(ctx context.Context, tenantID, id string) (*domain.Project, error) {
	q := `
select ` + projectColumns + `
from projects
where tenant_id = $1::uuid and id = $2 and is_active;
`
	return r.scanOne(r.db.QueryRow(ctx, q, tenantID, id))
}

// List returns all active projects for the tenant, newest first.
func (r *Repo) List(ctx context.Context, tenantID string) ([]domain.Project, error) {
	q := `
select ` + projectColumns + `
from projects
where tenant_id = $1::uuid and is_active
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// SlugExists reports whether another active project in the tenant already
// uses the slug. excludeID skips the project's own row on rename.
func (r *Repo) SlugExists(ctx context.Context, tenantID, slug, excludeID string) (bool, error) {
	const q = `
select exists (
  select 1 from projects
  where tenant_id = $1::uuid and slug = $2 and is_active and id <> $3
);
`
	var exists bool
	if err := r.db.QueryRow(ctx, q, tenantID, slug, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update applies a partial update and returns the fresh row.
func (r *Repo) Update(ctx context.Context, tenantID, id, newSlug string, up domain.UpdateProject) (*domain.Project, error) {
	set := "updated_at = now()"
	args := []interface{}{tenantID, id}
	idx := 3

	add := func(col string, val interface{}) {
		set += fmt.Sprintf(", %s = $%d", col, idx)
		args = append(args, val)
		idx++
	}

	if up.Name != nil {
		add("name", *up.Name)
	}
	if newSlug != "" {
		add("slug", newSlug)
	}
	if up.Description != nil {
		add("description", nullEmpty(*up.Description))
	}
	if up.MetaTitle != nil {
		add("meta_title", nullEmpty(*up.MetaTitle))
	}
	if up.MetaDescription != nil {
		add("meta_description", nullEmpty(*up.MetaDescription))
	}
	if up.PrimaryColor != nil {
		add("primary_color", nullEmpty(*up.PrimaryColor))
	}
	if up.CustomCSS != nil {
		add("custom_css", nullEmpty(*up.CustomCSS))
	}
	if up.Settings != nil {
		settings, err := json.Marshal(*up.Settings)
		if err != nil {
			return nil, fmt.Errorf("marshal settings: %w", err)
		}
		add("settings", settings)
	}

	q := `
update projects
set ` + set + `
where tenant_id = $1::uuid and id = $2 and is_active
returning ` + projectColumns + `;
`
	p, err := r.scanOne(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return p, nil
}

// SoftDelete flips is_active off; the row is retained.
func (r *Repo) SoftDelete(ctx context.Context, tenantID, id string) (bool, error) {
	const q = `
update projects
set is_active = false, updated_at = now()
where tenant_id = $1::uuid and id = $2 and is_active;
`
	ct, err := r.db.Exec(ctx, q, tenantID, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// SetVisibility toggles is_public and keeps published_at in sync:
// set to now() when publishing, cleared when unpublishing.
func (r *Repo) SetVisibility(ctx context.Context, tenantID, id string, public bool) (*domain.Project, error) {
	q := `
update projects
set is_public = $3,
    published_at = case when $3 then now() else null end,
    updated_at = now()
where tenant_id = $1::uuid and id = $2 and is_active
returning ` + projectColumns + `;
`
	return r.scanOne(r.db.QueryRow(ctx, q, tenantID, id, public))
}

// CountDocuments counts the active documents attached to a project.
func (r *Repo) CountDocuments(ctx context.Context, tenantID, projectID string) (int, error) {
	const q = `
select count(*)
from documents
where tenant_id = $1::uuid and project_id = $2 and is_active;
`
	var n int
	if err := r.db.QueryRow(ctx, q, tenantID, projectID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repo) scanOne(row pgx.Row) (*domain.Project, error) {
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p        domain.Project
		settings []byte
	)
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Slug, &p.Name,
		&p.Description, &p.MetaTitle, &p.MetaDescription,
		&p.PrimaryColor, &p.CustomCSS,
		&settings, &p.IsPublic, &p.PublishedAt, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &p.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}
	return &p, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// unique violation on (tenant_id, slug) where is_active
		return domain.ErrSlugConflict
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func nullEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
