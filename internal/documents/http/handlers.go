package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshelf-app/docshelf-backend/internal/auth"
	"github.com/docshelf-app/docshelf-backend/internal/documents/domain"
	"github.com/docshelf-app/docshelf-backend/internal/documents/service"
	projectsdomain "github.com/docshelf-app/docshelf-backend/internal/projects/domain"
)

// Handler bundles the dependencies for the document endpoints.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type mutationResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DocumentID string `json:"document_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type createReq struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Content  string `json:"content"`
	Position int    `json:"position" binding:"min=0"`
}

type updateReq struct {
	Title    *string `json:"title" binding:"omitempty,min=1,max=200"`
	Content  *string `json:"content"`
	Position *int    `json:"position" binding:"omitempty,min=0"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, mutationResult{Success: false, Message: err.Error(), Error: "validation"})
		return
	}

	d, err := h.svc.Create(c.Request.Context(), auth.TenantContext(c), c.Param("id"), domain.CreateDocument{
		Title:    req.Title,
		Content:  req.Content,
		Position: req.Position,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mutationResult{Success: true, Message: "document created", DocumentID: d.ID})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), auth.TenantContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "documents": items})
}

func (h *Handler) get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), auth.TenantContext(c), c.Param("doc_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "document": d})
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, mutationResult{Success: false, Message: err.Error(), Error: "validation"})
		return
	}

	d, err := h.svc.Update(c.Request.Context(), auth.TenantContext(c), c.Param("doc_id"), domain.UpdateDocument{
		Title:    req.Title,
		Content:  req.Content,
		Position: req.Position,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, mutationResult{Success: true, Message: "document updated", DocumentID: d.ID})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.TenantContext(c), c.Param("doc_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mutationResult{Success: true, Message: "document deleted"})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, projectsdomain.ErrValidation):
		c.JSON(http.StatusBadRequest, mutationResult{Success: false, Message: err.Error(), Error: "validation"})
	case errors.Is(err, projectsdomain.ErrNoTenant):
		c.JSON(http.StatusBadRequest, mutationResult{Success: false, Message: "no tenant selected", Error: "no_tenant_selected"})
	case errors.Is(err, projectsdomain.ErrForbidden):
		c.JSON(http.StatusForbidden, mutationResult{Success: false, Message: "insufficient permissions", Error: "forbidden"})
	case errors.Is(err, projectsdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, mutationResult{Success: false, Message: "project not found", Error: "not_found"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, mutationResult{Success: false, Message: "document not found", Error: "not_found"})
	case errors.Is(err, domain.ErrSlugConflict):
		c.JSON(http.StatusConflict, mutationResult{
			Success: false,
			Message: "a document with a similar title already exists in this project",
			Error:   "slug_conflict",
		})
	default:
		log.Printf("documents: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, mutationResult{
			Success: false,
			Message: "something went wrong, please try again",
			Error:   "internal",
		})
	}
}
