package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docshelf-app/docshelf-backend/internal/users"
)

// WithUser upserts the authenticated caller into the users table and stores
// the database user id in the gin context. Runs after FirebaseAuth or
// HeaderAuth, which set auth_uid.
func WithUser(userRepo *users.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetString(CtxAuthUID))
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authenticated"})
			c.Abort()
			return
		}

		dbID, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			AuthUID:     uid,
			Email:       c.GetString("email"),
			DisplayName: c.GetString("display_name"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "ensure user: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(CtxUserDBID, dbID)
		c.Next()
	}
}
