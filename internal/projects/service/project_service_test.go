package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshelf-app/docshelf-backend/internal/events"
	"github.com/docshelf-app/docshelf-backend/internal/projects/domain"
	"github.com/docshelf-app/docshelf-backend/internal/tenants"
)

// fakeStore mimics the repository including the authoritative unique
// constraint on (tenant_id, slug) among active rows.
type fakeStore struct {
	projects map[string]*domain.Project
	docs     map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]*domain.Project),
		docs:     make(map[string]int),
	}
}

func (f *fakeStore) Insert(_ context.Context, p *domain.Project) error {
	for _, other := range f.projects {
		if other.IsActive && other.TenantID == p.TenantID && other.Slug == p.Slug {
			return domain.ErrSlugConflict
		}
	}
	cp := *p
	cp.IsActive = true
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.projects[cp.ID] = &cp
	*p = cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, tenantID, id string) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok || !p.IsActive || p.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, tenantID string) ([]domain.Project, error) {
	out := []domain.Project{}
	for _, p := range f.projects {
		if p.IsActive && p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) SlugExists(_ context.Context, tenantID, slug, excludeID string) (bool, error) {
	for _, p := range f.projects {
		if p.IsActive && p.TenantID == tenantID && p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Update(_ context.Context, tenantID, id, newSlug string, up domain.UpdateProject) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok || !p.IsActive || p.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	if newSlug != "" {
		for _, other := range f.projects {
			if other.ID != id && other.IsActive && other.TenantID == tenantID && other.Slug == newSlug {
				return nil, domain.ErrSlugConflict
			}
		}
		p.Slug = newSlug
	}
	if up.Name != nil {
		p.Name = *up.Name
	}
	if up.Description != nil {
		p.Description = *up.Description
	}
	if up.MetaTitle != nil {
		p.MetaTitle = *up.MetaTitle
	}
	if up.MetaDescription != nil {
		p.MetaDescription = *up.MetaDescription
	}
	if up.PrimaryColor != nil {
		p.PrimaryColor = *up.PrimaryColor
	}
	if up.CustomCSS != nil {
		p.CustomCSS = *up.CustomCSS
	}
	if up.Settings != nil {
		p.Settings = *up.Settings
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (f *fakeStore) SoftDelete(_ context.Context, tenantID, id string) (bool, error) {
	p, ok := f.projects[id]
	if !ok || !p.IsActive || p.TenantID != tenantID {
		return false, nil
	}
	p.IsActive = false
	return true, nil
}

func (f *fakeStore) SetVisibility(_ context.Context, tenantID, id string, public bool) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok || !p.IsActive || p.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	p.IsPublic = public
	if public {
		now := time.Now()
		p.PublishedAt = &now
	} else {
		p.PublishedAt = nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) CountDocuments(_ context.Context, tenantID, projectID string) (int, error) {
	return f.docs[projectID], nil
}

type fakeRecorder struct {
	recorded []events.Event
}

func (f *fakeRecorder) Record(_ context.Context, e events.Event) {
	f.recorded = append(f.recorded, e)
}

func (f *fakeRecorder) last() events.Event {
	return f.recorded[len(f.recorded)-1]
}

func setup() (*Service, *fakeStore, *fakeRecorder) {
	store := newFakeStore()
	rec := &fakeRecorder{}
	return NewService(store, rec), store, rec
}

func adminCtx(tenantID string) tenants.Context {
	return tenants.Context{TenantID: tenantID, UserID: "00000000-0000-0000-0000-000000000001", Role: tenants.RoleAdmin}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("derives slug from name", func(t *testing.T) {
		svc, _, rec := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)
		assert.Equal(t, "api-docs", p.Slug)
		assert.Equal(t, "API Docs", p.Name)
		assert.NotEmpty(t, p.ID)
		assert.False(t, p.IsPublic)
		assert.Nil(t, p.PublishedAt)
		assert.True(t, p.Settings.SearchEnabled)

		require.Len(t, rec.recorded, 1)
		assert.Equal(t, events.ProjectCreated, rec.last().Name)
	})

	t.Run("same slug in one tenant conflicts", func(t *testing.T) {
		svc, _, _ := setup()

		_, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)

		_, err = svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		assert.ErrorIs(t, err, domain.ErrSlugConflict)

		// different casing normalizes to the same slug
		_, err = svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "api docs"})
		assert.ErrorIs(t, err, domain.ErrSlugConflict)
	})

	t.Run("same name in two tenants both succeed", func(t *testing.T) {
		svc, _, _ := setup()

		p1, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)

		p2, err := svc.Create(ctx, adminCtx("t2"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)

		assert.Equal(t, "api-docs", p1.Slug)
		assert.Equal(t, "api-docs", p2.Slug)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc, _, _ := setup()

		_, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "   "})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "!!!"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("no tenant selected", func(t *testing.T) {
		svc, _, _ := setup()

		_, err := svc.Create(ctx, tenants.Context{UserID: "u1", Role: tenants.RoleOwner}, domain.CreateProject{Name: "Docs"})
		assert.ErrorIs(t, err, domain.ErrNoTenant)
	})

	t.Run("viewer cannot create", func(t *testing.T) {
		svc, _, _ := setup()

		tc := tenants.Context{TenantID: "t1", UserID: "u1", Role: tenants.RoleViewer}
		_, err := svc.Create(ctx, tc, domain.CreateProject{Name: "Docs"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("rename regenerates slug", func(t *testing.T) {
		svc, _, rec := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)

		name := "User Guide"
		updated, err := svc.Update(ctx, adminCtx("t1"), p.ID, domain.UpdateProject{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "user-guide", updated.Slug)

		assert.Equal(t, events.ProjectUpdated, rec.last().Name)
		assert.Equal(t, []string{"name"}, rec.last().Payload["changed_fields"])
	})

	t.Run("rename onto another project's slug conflicts", func(t *testing.T) {
		svc, _, _ := setup()

		_, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)
		p2, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "User Guide"})
		require.NoError(t, err)

		name := "API Docs"
		_, err = svc.Update(ctx, adminCtx("t1"), p2.ID, domain.UpdateProject{Name: &name})
		assert.ErrorIs(t, err, domain.ErrSlugConflict)
	})

	t.Run("rename to own current name does not self-conflict", func(t *testing.T) {
		svc, _, _ := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)

		name := "API DOCS"
		updated, err := svc.Update(ctx, adminCtx("t1"), p.ID, domain.UpdateProject{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "api-docs", updated.Slug)
		assert.Equal(t, "API DOCS", updated.Name)
	})

	t.Run("event carries field names not values", func(t *testing.T) {
		svc, _, rec := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)

		css := "body { color: red }"
		desc := "internal"
		_, err = svc.Update(ctx, adminCtx("t1"), p.ID, domain.UpdateProject{CustomCSS: &css, Description: &desc})
		require.NoError(t, err)

		payload := fmt.Sprintf("%v", rec.last().Payload)
		assert.Contains(t, payload, "custom_css")
		assert.NotContains(t, payload, "color: red")
	})

	t.Run("unknown id under tenant is not found", func(t *testing.T) {
		svc, _, _ := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)

		// same id, wrong tenant: indistinguishable from absent
		name := "X"
		_, err = svc.Update(ctx, adminCtx("t2"), p.ID, domain.UpdateProject{Name: &name})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("soft delete retains the record", func(t *testing.T) {
		svc, store, rec := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)
		store.docs[p.ID] = 3

		require.NoError(t, svc.Delete(ctx, adminCtx("t1"), p.ID))

		kept, ok := store.projects[p.ID]
		require.True(t, ok, "record must not be physically removed")
		assert.False(t, kept.IsActive)

		assert.Equal(t, events.ProjectDeleted, rec.last().Name)
		assert.Equal(t, 3, rec.last().Payload["document_count"])
	})

	t.Run("deleting an absent project is not found", func(t *testing.T) {
		svc, _, _ := setup()
		err := svc.Delete(ctx, adminCtx("t1"), "shelf-00000-0000")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("slug is reusable after delete", func(t *testing.T) {
		svc, _, _ := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, adminCtx("t1"), p.ID))

		_, err = svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		assert.NoError(t, err)
	})
}

func TestService_SetPublic(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := setup()

	p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
	require.NoError(t, err)

	published, err := svc.SetPublic(ctx, adminCtx("t1"), p.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublic)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, events.ProjectPublished, rec.last().Name)

	private, err := svc.SetPublic(ctx, adminCtx("t1"), p.ID, false)
	require.NoError(t, err)
	assert.False(t, private.IsPublic)
	assert.Nil(t, private.PublishedAt)
	assert.Equal(t, events.ProjectUnpublished, rec.last().Name)
}

func TestService_Duplicate(t *testing.T) {
	ctx := context.Background()

	t.Run("copy is private even when source is public", func(t *testing.T) {
		svc, _, rec := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{
			Name:         "API Docs",
			Description:  "The docs",
			PrimaryColor: "#336699",
		})
		require.NoError(t, err)
		_, err = svc.SetPublic(ctx, adminCtx("t1"), p.ID, true)
		require.NoError(t, err)

		dup, err := svc.Duplicate(ctx, adminCtx("t1"), p.ID)
		require.NoError(t, err)
		assert.False(t, dup.IsPublic)
		assert.Nil(t, dup.PublishedAt)
		assert.Equal(t, "API Docs (Copy)", dup.Name)
		assert.Equal(t, "api-docs-copy", dup.Slug)
		assert.Equal(t, "The docs", dup.Description)
		assert.Equal(t, "#336699", dup.PrimaryColor)

		assert.Equal(t, events.ProjectDuplicated, rec.last().Name)
		assert.Equal(t, p.ID, rec.last().Payload["source_project_id"])
	})

	t.Run("numeric suffix on collision", func(t *testing.T) {
		svc, _, _ := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)

		first, err := svc.Duplicate(ctx, adminCtx("t1"), p.ID)
		require.NoError(t, err)
		assert.Equal(t, "api-docs-copy", first.Slug)

		second, err := svc.Duplicate(ctx, adminCtx("t1"), p.ID)
		require.NoError(t, err)
		assert.Equal(t, "api-docs-copy-2", second.Slug)

		third, err := svc.Duplicate(ctx, adminCtx("t1"), p.ID)
		require.NoError(t, err)
		assert.Equal(t, "api-docs-copy-3", third.Slug)
	})

	t.Run("random suffix fallback when numeric walk is exhausted", func(t *testing.T) {
		svc, _, _ := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)

		for i := 0; i < maxSlugAttempts; i++ {
			_, err := svc.Duplicate(ctx, adminCtx("t1"), p.ID)
			require.NoError(t, err)
		}

		dup, err := svc.Duplicate(ctx, adminCtx("t1"), p.ID)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(dup.Slug, "api-docs-copy-"))
		// hex fallback, not the next number in the walk
		assert.NotEqual(t, "api-docs-copy-6", dup.Slug)
	})

	t.Run("documents are not copied", func(t *testing.T) {
		svc, store, _ := setup()

		p, err := svc.Create(ctx, adminCtx("t1"), domain.CreateProject{Name: "API Docs"})
		require.NoError(t, err)
		store.docs[p.ID] = 7

		dup, err := svc.Duplicate(ctx, adminCtx("t1"), p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, store.docs[dup.ID])
	})
}
