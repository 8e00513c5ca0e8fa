package tenants

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	projectsdomain "github.com/docshelf-app/docshelf-backend/internal/projects/domain"
)

type createTenantReq struct {
	Name string `json:"name" binding:"required,min=1,max=80"`
	Slug string `json:"slug" binding:"omitempty,min=1,max=80"`
}

// Register attaches the tenant endpoints. The group must already carry an
// authenticated user id under userIDKey.
func Register(rg *gin.RouterGroup, repo *Repo, userIDKey string) {
	rg.POST("", func(c *gin.Context) {
		var req createTenantReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "tenant name is required"})
			return
		}

		slug := req.Slug
		if slug == "" {
			slug = projectsdomain.Slugify(req.Name)
		}
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "tenant name must contain letters or digits"})
			return
		}

		t, err := repo.EnsureTenant(c.Request.Context(), slug, req.Name, c.GetString(userIDKey))
		if err != nil {
			log.Printf("tenants: create %q: %v", slug, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not create tenant"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "tenant": t})
	})

	rg.GET("", func(c *gin.Context) {
		list, err := repo.ListForUser(c.Request.Context(), c.GetString(userIDKey))
		if err != nil {
			log.Printf("tenants: list: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not list tenants"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenants": list})
	})
}
