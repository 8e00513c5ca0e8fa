package public

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	projectsdomain "github.com/docshelf-app/docshelf-backend/internal/projects/domain"
)

// ErrNotFound covers every public miss: unknown tenant, unknown project,
// private project, soft-deleted anything. Visitors get no distinction.
var ErrNotFound = errors.New("published page not found")

// SiteProject is the public payload for a published project.
type SiteProject struct {
	ProjectID    string                 `json:"project_id"`
	TenantSlug   string                 `json:"tenant_slug"`
	Slug         string                 `json:"slug"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	MetaTitle    string                 `json:"meta_title,omitempty"`
	MetaDesc     string                 `json:"meta_description,omitempty"`
	PrimaryColor string                 `json:"primary_color,omitempty"`
	CustomCSS    string                 `json:"custom_css,omitempty"`
	Settings     projectsdomain.Settings `json:"settings"`
	PublishedAt  time.Time              `json:"published_at"`
	Documents    []SiteDocumentSummary  `json:"documents"`
}

// SiteDocumentSummary is one entry in a published project's navigation.
type SiteDocumentSummary struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// SiteDocument is a published document body.
type SiteDocument struct {
	ProjectID string    `json:"project_id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repo is the read-only query side for the public site.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// PublishedProject resolves a public project by tenant and project slug,
// including its document navigation.
func (r *Repo) PublishedProject(ctx context.Context, tenantSlug, projectSlug string) (*SiteProject, error) {
	const q = `
select p.id, t.slug, p.slug, p.name,
       coalesce(p.description,''), coalesce(p.meta_title,''), coalesce(p.meta_description,''),
       coalesce(p.primary_color,''), coalesce(p.custom_css,''),
       p.settings, p.published_at
from projects p
join tenants t on t.id = p.tenant_id
where t.slug = $1 and p.slug = $2 and p.is_public and p.is_active;
`
	var (
		sp       SiteProject
		settings []byte
	)
	err := r.db.QueryRow(ctx, q, tenantSlug, projectSlug).Scan(
		&sp.ProjectID, &sp.TenantSlug, &sp.Slug, &sp.Name,
		&sp.Description, &sp.MetaTitle, &sp.MetaDesc,
		&sp.PrimaryColor, &sp.CustomCSS,
		&settings, &sp.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &sp.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	const dq = `
select slug, title, position
from documents
where project_id = $1 and is_active
order by position asc, created_at asc;
`
	rows, err := r.db.Query(ctx, dq, sp.ProjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sp.Documents = make([]SiteDocumentSummary, 0, 16)
	for rows.Next() {
		var d SiteDocumentSummary
		if err := rows.Scan(&d.Slug, &d.Title, &d.Position); err != nil {
			return nil, err
		}
		sp.Documents = append(sp.Documents, d)
	}
	return &sp, rows.Err()
}

// PublishedDocument resolves a single document on a published project.
func (r *Repo) PublishedDocument(ctx context.Context, tenantSlug, projectSlug, docSlug string) (*SiteDocument, error) {
	const q = `
select d.project_id, d.slug, d.title, coalesce(d.content,''), d.updated_at
from documents d
join projects p on p.id = d.project_id
join tenants t on t.id = p.tenant_id
where t.slug = $1 and p.slug = $2 and d.slug = $3
  and p.is_public and p.is_active and d.is_active;
`
	var sd SiteDocument
	err := r.db.QueryRow(ctx, q, tenantSlug, projectSlug, docSlug).Scan(
		&sd.ProjectID, &sd.Slug, &sd.Title, &sd.Content, &sd.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sd, nil
}
