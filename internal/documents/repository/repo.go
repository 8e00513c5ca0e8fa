package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docshelf-app/docshelf-backend/internal/documents/domain"
)

const documentColumns = `
id, project_id, tenant_id::text, slug, title, coalesce(content,''),
position, is_active, created_at, updated_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Insert persists a new document. The partial unique index on
// (project_id, slug) where is_active surfaces as domain.ErrSlugConflict.
func (r *Repo) Insert(ctx context.Context, d *domain.Document) error {
	const q = `
insert into documents (id, project_id, tenant_id, slug, title, content, position)
values ($1, $2, $3::uuid, $4, $5, nullif($6,''), $7)
returning created_at, updated_at, is_active;
`
	err := r.db.QueryRow(ctx, q, d.ID, d.ProjectID, d.TenantID, d.Slug, d.Title, d.Content, d.Position).
		Scan(&d.CreatedAt, &d.UpdatedAt, &d.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrSlugConflict
		}
		return err
	}
	return nil
}

// GetByID returns the active document under the tenant.
func (r *Repo) GetByID(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	q := `
select ` + documentColumns + `
from documents
where tenant_id = $1::uuid and id = $2 and is_active;
`
	return scanOne(r.db.QueryRow(ctx, q, tenantID, id))
}

// ListByProject returns a project's active documents in reading order.
func (r *Repo) ListByProject(ctx context.Context, tenantID, projectID string) ([]domain.Document, error) {
	q := `
select ` + documentColumns + `
from documents
where tenant_id = $1::uuid and project_id = $2 and is_active
order by position asc, created_at asc;
`
	rows, err := r.db.Query(ctx, q, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Document, 0, 16)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Update applies a partial update and returns the fresh row.
func (r *Repo) Update(ctx context.Context, tenantID, id, newSlug string, up domain.UpdateDocument) (*domain.Document, error) {
	set := "updated_at = now()"
	args := []interface{}{tenantID, id}
	idx := 3

	add := func(col string, val interface{}) {
		set += fmt.Sprintf(", %s = $%d", col, idx)
		args = append(args, val)
		idx++
	}

	if up.Title != nil {
		add("title", *up.Title)
	}
	if newSlug != "" {
		add("slug", newSlug)
	}
	if up.Content != nil {
		add("content", *up.Content)
	}
	if up.Position != nil {
		add("position", *up.Position)
	}

	q := `
update documents
set ` + set + `
where tenant_id = $1::uuid and id = $2 and is_active
returning ` + documentColumns + `;
`
	d, err := scanOne(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}
	return d, nil
}

// SoftDelete flips is_active off; the row is retained.
func (r *Repo) SoftDelete(ctx context.Context, tenantID, id string) (bool, error) {
	const q = `
update documents
set is_active = false, updated_at = now()
where tenant_id = $1::uuid and id = $2 and is_active;
`
	ct, err := r.db.Exec(ctx, q, tenantID, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// SlugExists reports whether another active document in the project uses the slug.
func (r *Repo) SlugExists(ctx context.Context, tenantID, projectID, slug, excludeID string) (bool, error) {
	const q = `
select exists (
  select 1 from documents
  where tenant_id = $1::uuid and project_id = $2 and slug = $3 and is_active and id <> $4
);
`
	var exists bool
	if err := r.db.QueryRow(ctx, q, tenantID, projectID, slug, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOne(row pgx.Row) (*domain.Document, error) {
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	err := row.Scan(
		&d.ID, &d.ProjectID, &d.TenantID, &d.Slug, &d.Title, &d.Content,
		&d.Position, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
