package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docshelf-app/docshelf-backend/internal/analytics"
	"github.com/docshelf-app/docshelf-backend/internal/auth"
	"github.com/docshelf-app/docshelf-backend/internal/events"
	"github.com/docshelf-app/docshelf-backend/internal/projects/domain"
	"github.com/docshelf-app/docshelf-backend/internal/projects/repository"
)

// Handler serves the dashboard analytics readout. Project ownership is
// checked through the tenant-scoped project repository before any numbers
// are returned.
type Handler struct {
	projects *repository.Repo
	history  *analytics.History
	counter  *analytics.ViewCounter
	recorder *events.Recorder
}

func New(projects *repository.Repo, history *analytics.History, counter *analytics.ViewCounter, recorder *events.Recorder) *Handler {
	return &Handler{projects: projects, history: history, counter: counter, recorder: recorder}
}

// Register attaches analytics routes under the projects group.
func (h *Handler) Register(projects *gin.RouterGroup) {
	projects.GET("/:id/analytics", h.views)
	projects.GET("/:id/events", h.events)
}

func (h *Handler) views(c *gin.Context) {
	tc := auth.TenantContext(c)
	if !tc.HasTenant() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no tenant selected"})
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), tc.TenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "project not found"})
			return
		}
		log.Printf("analytics: project lookup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "something went wrong, please try again"})
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days <= 0 || days > 365 {
		days = 30
	}

	now := time.Now().UTC()
	daily, err := h.history.Daily(c.Request.Context(), project.ID, now.AddDate(0, 0, -days))
	if err != nil {
		log.Printf("analytics: daily views for %s: %v", project.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "something went wrong, please try again"})
		return
	}

	// Today's views are usually not rolled up yet; merge the live counter.
	live, err := h.counter.ViewsOn(c.Request.Context(), project.ID, now)
	if err != nil {
		log.Printf("analytics: live views for %s: %v", project.ID, err)
		live = 0
	}

	merged, total := mergeDaily(daily, now, live)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"views":   merged,
		"total":   total,
	})
}

func (h *Handler) events(c *gin.Context) {
	tc := auth.TenantContext(c)
	if !tc.HasTenant() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no tenant selected"})
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), tc.TenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "project not found"})
			return
		}
		log.Printf("analytics: project lookup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "something went wrong, please try again"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.recorder.Recent(c.Request.Context(), tc.TenantID, project.ID, limit)
	if err != nil {
		log.Printf("analytics: recent events for %s: %v", project.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "something went wrong, please try again"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": entries})
}
