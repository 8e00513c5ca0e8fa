package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/docshelf-app/docshelf-backend/internal/documents/domain"
	"github.com/docshelf-app/docshelf-backend/internal/events"
	projectsdomain "github.com/docshelf-app/docshelf-backend/internal/projects/domain"
	"github.com/docshelf-app/docshelf-backend/internal/tenants"
)

// Store is the document persistence surface; *repository.Repo satisfies it.
type Store interface {
	Insert(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Document, error)
	ListByProject(ctx context.Context, tenantID, projectID string) ([]domain.Document, error)
	Update(ctx context.Context, tenantID, id, newSlug string, up domain.UpdateDocument) (*domain.Document, error)
	SoftDelete(ctx context.Context, tenantID, id string) (bool, error)
	SlugExists(ctx context.Context, tenantID, projectID, slug, excludeID string) (bool, error)
}

// ProjectStore is the slice of the project repository the document service
// needs to anchor documents to an existing, tenant-owned project.
type ProjectStore interface {
	GetByID(ctx context.Context, tenantID, id string) (*projectsdomain.Project, error)
}

type Recorder interface {
	Record(ctx context.Context, e events.Event)
}

// Service implements tenant-scoped document mutations. Like the project
// service, role enforcement lives here.
type Service struct {
	store    Store
	projects ProjectStore
	events   Recorder
}

func NewService(store Store, projects ProjectStore, rec Recorder) *Service {
	return &Service{store: store, projects: projects, events: rec}
}

// Create adds a document to a project the caller's tenant owns. The slug is
// derived from the title and must be unique among the project's active
// documents.
func (s *Service) Create(ctx context.Context, tc tenants.Context, projectID string, req domain.CreateDocument) (*domain.Document, error) {
	if err := mutationGuard(tc); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, tc.TenantID, projectID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", projectsdomain.ErrValidation)
	}
	slug := projectsdomain.Slugify(title)
	if slug == "" {
		return nil, fmt.Errorf("%w: title must contain letters or digits", projectsdomain.ErrValidation)
	}

	taken, err := s.store.SlugExists(ctx, tc.TenantID, project.ID, slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrSlugConflict
	}

	id, err := domain.NewDocumentID()
	if err != nil {
		return nil, err
	}

	d := &domain.Document{
		ID:        id,
		ProjectID: project.ID,
		TenantID:  tc.TenantID,
		Slug:      slug,
		Title:     title,
		Content:   req.Content,
		Position:  req.Position,
	}
	if err := s.store.Insert(ctx, d); err != nil {
		return nil, err
	}

	s.events.Record(ctx, events.Event{
		TenantID:  tc.TenantID,
		ProjectID: project.ID,
		ActorID:   tc.UserID,
		Name:      events.DocumentCreated,
		Payload:   map[string]interface{}{"document_id": d.ID, "slug": d.Slug},
	})
	return d, nil
}

// Update applies a partial update; a title change regenerates the slug.
func (s *Service) Update(ctx context.Context, tc tenants.Context, id string, up domain.UpdateDocument) (*domain.Document, error) {
	if err := mutationGuard(tc); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByID(ctx, tc.TenantID, id)
	if err != nil {
		return nil, err
	}

	newSlug := ""
	if up.Title != nil {
		title := strings.TrimSpace(*up.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", projectsdomain.ErrValidation)
		}
		up.Title = &title

		slug := projectsdomain.Slugify(title)
		if slug == "" {
			return nil, fmt.Errorf("%w: title must contain letters or digits", projectsdomain.ErrValidation)
		}
		if slug != existing.Slug {
			taken, err := s.store.SlugExists(ctx, tc.TenantID, existing.ProjectID, slug, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.ErrSlugConflict
			}
			newSlug = slug
		}
	}

	d, err := s.store.Update(ctx, tc.TenantID, id, newSlug, up)
	if err != nil {
		return nil, err
	}

	s.events.Record(ctx, events.Event{
		TenantID:  tc.TenantID,
		ProjectID: d.ProjectID,
		ActorID:   tc.UserID,
		Name:      events.DocumentUpdated,
		Payload:   map[string]interface{}{"document_id": d.ID},
	})
	return d, nil
}

// Delete soft-deletes a document.
func (s *Service) Delete(ctx context.Context, tc tenants.Context, id string) error {
	if err := mutationGuard(tc); err != nil {
		return err
	}

	existing, err := s.store.GetByID(ctx, tc.TenantID, id)
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
		ProjectID: existing.ProjectID,
		ActorID:   tc.UserID,
		Name:      events.DocumentDeleted,
		Payload:   map[string]interface{}{"document_id": id},
	})
	return nil
}

// List returns a project's active documents in reading order.
func (s *Service) List(ctx context.Context, tc tenants.Context, projectID string) ([]domain.Document, error) {
	if !tc.HasTenant() {
		return nil, projectsdomain.ErrNoTenant
	}
	if _, err := s.projects.GetByID(ctx, tc.TenantID, projectID); err != nil {
		return nil, err
	}
	return s.store.ListByProject(ctx, tc.TenantID, projectID)
}

// Get returns a single active document.
func (s *Service) Get(ctx context.Context, tc tenants.Context, id string) (*domain.Document, error) {
	if !tc.HasTenant() {
		return nil, projectsdomain.ErrNoTenant
	}
	return s.store.GetByID(ctx, tc.TenantID, id)
}

func mutationGuard(tc tenants.Context) error {
	if !tc.HasTenant() {
		return projectsdomain.ErrNoTenant
	}
	if !tc.CanMutate() {
		return projectsdomain.ErrForbidden
	}
	return nil
}
