package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docshelf-app/docshelf-backend/internal/events"
	"github.com/docshelf-app/docshelf-backend/internal/projects/domain"
	"github.com/docshelf-app/docshelf-backend/internal/tenants"
)

const (
	publicIDPrefix = "shelf"
	copySuffix     = " (Copy)"

	// Attempts at numeric slug de-duplication before falling back to a
	// random suffix. Keeps duplication bounded under slug clustering.
	maxSlugAttempts = 5
)

// Store is the persistence surface the mutation service needs.
// *repository.Repo satisfies it.
type Store interface {
	Insert(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Project, error)
	List(ctx context.Context, tenantID string) ([]domain.Project, error)
	SlugExists(ctx context.Context, tenantID, slug, excludeID string) (bool, error)
	Update(ctx context.Context, tenantID, id, newSlug string, up domain.UpdateProject) (*domain.Project, error)
	SoftDelete(ctx context.Context, tenantID, id string) (bool, error)
	SetVisibility(ctx context.Context, tenantID, id string, public bool) (*domain.Project, error)
	CountDocuments(ctx context.Context, tenantID, projectID string) (int, error)
}

// Recorder appends analytics events; it must never fail the mutation.
type Recorder interface {
	Record(ctx context.Context, e events.Event)
}

// Service implements the tenant-scoped project mutations. Role enforcement
// lives here, not in the HTTP layer, so a request that bypasses the UI gate
// still cannot mutate as a viewer.
type Service struct {
	store  Store
	events Recorder
}

func NewService(store Store, rec Recorder) *Service {
	return &Service{store: store, events: rec}
}

// Create persists a new project with a slug derived from its name.
// The storage unique constraint is the authoritative conflict signal; the
// SlugExists pre-check only exists to fail fast with a clean message.
func (s *Service) Create(ctx context.Context, tc tenants.Context, req domain.CreateProject) (*domain.Project, error) {
	if err := s.mutationGuard(tc); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	slug := domain.Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: name must contain letters or digits", domain.ErrValidation)
	}

	taken, err := s.store.SlugExists(ctx, tc.TenantID, slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrSlugConflict
	}

	id, err := domain.NewPublicID(publicIDPrefix)
	if err != nil {
		return nil, err
	}

	p := &domain.Project{
		ID:              id,
		TenantID:        tc.TenantID,
		Slug:            slug,
		Name:            name,
		Description:     req.Description,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		PrimaryColor:    req.PrimaryColor,
		CustomCSS:       req.CustomCSS,
		Settings:        domain.DefaultSettings(),
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.events.Record(ctx, events.Event{
		TenantID:  tc.TenantID,
		ProjectID: p.ID,
		ActorID:   tc.UserID,
		Name:      events.ProjectCreated,
		Payload:   map[string]interface{}{"slug": p.Slug},
	})
	return p, nil
}

// Update applies a partial update. A name change regenerates the slug and
// re-checks uniqueness excluding the project's own row, so renaming a
// project to its current name never self-conflicts.
func (s *Service) Update(ctx context.Context, tc tenants.Context, id string, up domain.UpdateProject) (*domain.Project, error) {
	if err := s.mutationGuard(tc); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByID(ctx, tc.TenantID, id)
	if err != nil {
		return nil, err
	}

	newSlug := ""
	if up.Name != nil {
		name := strings.TrimSpace(*up.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
		}
		up.Name = &name

		slug := domain.Slugify(name)
		if slug == "" {
			return nil, fmt.Errorf("%w: name must contain letters or digits", domain.ErrValidation)
		}
		if slug != existing.Slug {
			taken, err := s.store.SlugExists(ctx, tc.TenantID, slug, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.ErrSlugConflict
			}
			newSlug = slug
		}
	}

	changed := up.ChangedFields()
	if len(changed) == 0 {
		return existing, nil
	}

	p, err := s.store.Update(ctx, tc.TenantID, id, newSlug, up)
	if err != nil {
		return nil, err
	}

	s.events.Record(ctx, events.Event{
		TenantID:  tc.TenantID,
		ProjectID: p.ID,
		ActorID:   tc.UserID,
		Name:      events.ProjectUpdated,
		Payload:   map[string]interface{}{"changed_fields": changed},
	})
	return p, nil
}

// Delete performs a logical delete; documents are left in place. The
// document count is snapshotted before the flag flip for the event payload.
func (s *Service) Delete(ctx context.Context, tc tenants.Context, id string) error {
	if err := s.mutationGuard(tc); err != nil {
		return err
	}

	docCount, err := s.store.CountDocuments(ctx, tc.TenantID, id)
	if err != nil {
		return err
	}

	ok, err := s.store.SoftDelete(ctx, tc.TenantID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}

	s.events.Record(ctx, events.Event{
		TenantID:  tc.TenantID,
		ProjectID: id,
		ActorID:   tc.UserID,
		Name:      events.ProjectDeleted,
		Payload:   map[string]interface{}{"document_count": docCount},
	})
	return nil
}

// SetPublic flips visibility. published_at is set when turning public and
// cleared when turning private.
func (s *Service) SetPublic(ctx context.Context, tc tenants.Context, id string, public bool) (*domain.Project, error) {
	if err := s.mutationGuard(tc); err != nil {
		return nil, err
	}

	p, err := s.store.SetVisibility(ctx, tc.TenantID, id, public)
	if err != nil {
		return nil, err
	}

	name := events.ProjectUnpublished
	if public {
		name = events.ProjectPublished
	}
	s.events.Record(ctx, events.Event{
		TenantID:  tc.TenantID,
		ProjectID: p.ID,
		ActorID:   tc.UserID,
		Name:      name,
	})
	return p, nil
}

// Duplicate copies a project's descriptive, branding and settings fields
// under a suffixed name. The copy is always private. Documents are not
// copied. Slug collisions are resolved with a bounded numeric suffix walk
// and a random-suffix fallback when the walk is exhausted.
func (s *Service) Duplicate(ctx context.Context, tc tenants.Context, id string) (*domain.Project, error) {
	if err := s.mutationGuard(tc); err != nil {
		return nil, err
	}

	src, err := s.store.GetByID(ctx, tc.TenantID, id)
	if err != nil {
		return nil, err
	}

	name := src.Name + copySuffix
	baseSlug := domain.Slugify(name)

	copyOf := func(slug string) *domain.Project {
		return &domain.Project{
			TenantID:        tc.TenantID,
			Slug:            slug,
			Name:            name,
			Description:     src.Description,
			MetaTitle:       src.MetaTitle,
			MetaDescription: src.MetaDescription,
			PrimaryColor:    src.PrimaryColor,
			CustomCSS:       src.CustomCSS,
			Settings:        src.Settings,
			IsPublic:        false,
		}
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug := baseSlug
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", baseSlug, attempt+1)
		}

		taken, err := s.store.SlugExists(ctx, tc.TenantID, slug, "")
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		dup, err := s.insertCopy(ctx, copyOf(slug))
		if err != nil {
			if errors.Is(err, domain.ErrSlugConflict) {
				// lost the race to a concurrent insert, keep walking
				continue
			}
			return nil, err
		}
		s.recordDuplicated(ctx, tc, src.ID, dup)
		return dup, nil
	}

	// Numeric walk exhausted: one shot with a random suffix.
	suffix, err := domain.RandomSlugSuffix()
	if err != nil {
		return nil, err
	}
	dup, err := s.insertCopy(ctx, copyOf(baseSlug+"-"+suffix))
	if err != nil {
		return nil, err
	}
	s.recordDuplicated(ctx, tc, src.ID, dup)
	return dup, nil
}

// Get returns a single active project under the caller's tenant.
func (s *Service) Get(ctx context.Context, tc tenants.Context, id string) (*domain.Project, error) {
	if !tc.HasTenant() {
		return nil, domain.ErrNoTenant
	}
	return s.store.GetByID(ctx, tc.TenantID, id)
}

// List returns the tenant's active projects.
func (s *Service) List(ctx context.Context, tc tenants.Context) ([]domain.Project, error) {
	if !tc.HasTenant() {
		return nil, domain.ErrNoTenant
	}
	return s.store.List(ctx, tc.TenantID)
}

func (s *Service) insertCopy(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	id, err := domain.NewPublicID(publicIDPrefix)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) recordDuplicated(ctx context.Context, tc tenants.Context, srcID string, dup *domain.Project) {
	s.events.Record(ctx, events.Event{
		TenantID:  tc.TenantID,
		ProjectID: dup.ID,
		ActorID:   tc.UserID,
		Name:      events.ProjectDuplicated,
		Payload:   map[string]interface{}{"source_project_id": srcID, "slug": dup.Slug},
	})
}

func (s *Service) mutationGuard(tc tenants.Context) error {
	if !tc.HasTenant() {
		return domain.ErrNoTenant
	}
	if !tc.CanMutate() {
		return domain.ErrForbidden
	}
	return nil
}
