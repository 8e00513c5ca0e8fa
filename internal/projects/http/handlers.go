package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshelf-app/docshelf-backend/internal/auth"
	"github.com/docshelf-app/docshelf-backend/internal/projects/domain"
)

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, err)
		return
	}

	p, err := h.svc.Create(c.Request.Context(), auth.TenantContext(c), domain.CreateProject{
		Name:            req.Name,
		Description:     req.Description,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		PrimaryColor:    req.PrimaryColor,
		CustomCSS:       req.CustomCSS,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mutationResult{Success: true, Message: "project created", ProjectID: p.ID})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), auth.TenantContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), auth.TenantContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, err)
		return
	}

	p, err := h.svc.Update(c.Request.Context(), auth.TenantContext(c), c.Param("id"), domain.UpdateProject{
		Name:            req.Name,
		Description:     req.Description,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		PrimaryColor:    req.PrimaryColor,
		CustomCSS:       req.CustomCSS,
		Settings:        req.Settings,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, mutationResult{Success: true, Message: "project updated", ProjectID: p.ID})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.TenantContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mutationResult{Success: true, Message: "project deleted"})
}

func (h *Handler) setVisibility(c *gin.Context) {
	var req visibilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, err)
		return
	}

	p, err := h.svc.SetPublic(c.Request.Context(), auth.TenantContext(c), c.Param("id"), *req.IsPublic)
	if err != nil {
		writeError(c, err)
		return
	}

	msg := "project unpublished"
	if p.IsPublic {
		msg = "project published"
	}
	c.JSON(http.StatusOK, mutationResult{Success: true, Message: msg, ProjectID: p.ID})
}

func (h *Handler) duplicate(c *gin.Context) {
	p, err := h.svc.Duplicate(c.Request.Context(), auth.TenantContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mutationResult{Success: true, Message: "project duplicated", ProjectID: p.ID})
}

func writeValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, mutationResult{
		Success: false,
		Message: err.Error(),
		Error:   "validation",
	})
}

// writeError maps service errors onto the uniform result shape. Unclassified
// failures are logged and answered with a generic retry message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, mutationResult{Success: false, Message: err.Error(), Error: "validation"})
	case errors.Is(err, domain.ErrNoTenant):
		c.JSON(http.StatusBadRequest, mutationResult{Success: false, Message: "no tenant selected", Error: "no_tenant_selected"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, mutationResult{Success: false, Message: "insufficient permissions", Error: "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, mutationResult{Success: false, Message: "project not found", Error: "not_found"})
	case errors.Is(err, domain.ErrSlugConflict):
		c.JSON(http.StatusConflict, mutationResult{
			Success: false,
			Message: "a project with a similar name already exists, choose a different name",
			Error:   "slug_conflict",
		})
	default:
		log.Printf("projects: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, mutationResult{
			Success: false,
			Message: "something went wrong, please try again",
			Error:   "internal",
		})
	}
}
