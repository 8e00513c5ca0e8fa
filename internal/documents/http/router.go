package http

import "github.com/gin-gonic/gin"

// RegisterProjectSubroutes attaches document routes under the projects group.
func (h *Handler) RegisterProjectSubroutes(projects *gin.RouterGroup) {
	projects.POST("/:id/documents", h.create)
	projects.GET("/:id/documents", h.list)
}

// Register attaches the flat document routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:doc_id", h.get)
	rg.PATCH("/:doc_id", h.update)
	rg.DELETE("/:doc_id", h.delete)
}
