package http

import (
	"github.com/docshelf-app/docshelf-backend/internal/projects/domain"
	"github.com/docshelf-app/docshelf-backend/internal/projects/service"
)

// Handler bundles the dependencies for the project endpoints.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// mutationResult is the uniform shape every mutation returns, success or not.
type mutationResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ProjectID string `json:"project_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type createReq struct {
	Name            string `json:"name" binding:"required,min=1,max=120"`
	Description     string `json:"description" binding:"max=2000"`
	MetaTitle       string `json:"meta_title" binding:"max=160"`
	MetaDescription string `json:"meta_description" binding:"max=320"`
	PrimaryColor    string `json:"primary_color" binding:"max=32"`
	CustomCSS       string `json:"custom_css" binding:"max=20000"`
}

type updateReq struct {
	Name            *string          `json:"name" binding:"omitempty,min=1,max=120"`
	Description     *string          `json:"description" binding:"omitempty,max=2000"`
	MetaTitle       *string          `json:"meta_title" binding:"omitempty,max=160"`
	MetaDescription *string          `json:"meta_description" binding:"omitempty,max=320"`
	PrimaryColor    *string          `json:"primary_color" binding:"omitempty,max=32"`
	CustomCSS       *string          `json:"custom_css" binding:"omitempty,max=20000"`
	Settings        *domain.Settings `json:"settings"`
}

type visibilityReq struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}
