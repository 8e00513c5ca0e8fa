package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshelf-app/docshelf-backend/internal/public"
)

// SiteReader is the published-content query surface; *public.Repo satisfies it.
type SiteReader interface {
	PublishedProject(ctx context.Context, tenantSlug, projectSlug string) (*public.SiteProject, error)
	PublishedDocument(ctx context.Context, tenantSlug, projectSlug, docSlug string) (*public.SiteDocument, error)
}

// ViewRecorder tracks a page view; failures must not break the page.
type ViewRecorder interface {
	RecordView(ctx context.Context, projectID string) error
}

// Handler serves the unauthenticated public site API.
type Handler struct {
	reader  SiteReader
	cache   *public.Cache // nil disables caching
	counter ViewRecorder
}

func New(reader SiteReader, cache *public.Cache, counter ViewRecorder) *Handler {
	return &Handler{reader: reader, cache: cache, counter: counter}
}

// Register attaches the public routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:tenant/:project", h.project)
	rg.GET("/:tenant/:project/:doc", h.document)
}

func (h *Handler) project(c *gin.Context) {
	tenantSlug := c.Param("tenant")
	projectSlug := c.Param("project")
	ctx := c.Request.Context()

	sp := h.cachedProject(ctx, tenantSlug, projectSlug)
	if sp == nil {
		var err error
		sp, err = h.reader.PublishedProject(ctx, tenantSlug, projectSlug)
		if err != nil {
			writePublicError(c, err)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetProject(ctx, sp); err != nil {
				log.Printf("public: cache %s/%s: %v", tenantSlug, projectSlug, err)
			}
		}
	}

	if err := h.counter.RecordView(ctx, sp.ProjectID); err != nil {
		log.Printf("public: record view for %s: %v", sp.ProjectID, err)
	}

	c.JSON(http.StatusOK, sp)
}

func (h *Handler) document(c *gin.Context) {
	sd, err := h.reader.PublishedDocument(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("doc"))
	if err != nil {
		writePublicError(c, err)
		return
	}
	c.JSON(http.StatusOK, sd)
}

func (h *Handler) cachedProject(ctx context.Context, tenantSlug, projectSlug string) *public.SiteProject {
	if h.cache == nil {
		return nil
	}
	sp, err := h.cache.GetProject(ctx, tenantSlug, projectSlug)
	if err != nil {
		log.Printf("public: cache read %s/%s: %v", tenantSlug, projectSlug, err)
		return nil
	}
	return sp
}

func writePublicError(c *gin.Context, err error) {
	if errors.Is(err, public.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	log.Printf("public: %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
