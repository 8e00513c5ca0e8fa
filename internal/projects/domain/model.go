package domain

import "time"

// Project is a tenant-owned documentation project. It is storage-agnostic
// and shared across the repository, service and HTTP layers.
type Project struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	Slug            string     `json:"slug"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	MetaTitle       string     `json:"meta_title,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	PrimaryColor    string     `json:"primary_color,omitempty"`
	CustomCSS       string     `json:"custom_css,omitempty"`
	Settings        Settings   `json:"settings"`
	IsPublic        bool       `json:"is_public"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Settings is the per-project feature flag blob, stored as JSONB.
type Settings struct {
	SearchEnabled   bool `json:"search_enabled"`
	FeedbackEnabled bool `json:"feedback_enabled"`
}

// DefaultSettings returns the settings applied to newly created projects.
func DefaultSettings() Settings {
	return Settings{
		SearchEnabled:   true,
		FeedbackEnabled: false,
	}
}

// CreateProject carries the validated field set for project creation.
type CreateProject struct {
	Name            string
	Description     string
	MetaTitle       string
	MetaDescription string
	PrimaryColor    string
	CustomCSS       string
}

// UpdateProject carries a partial update; nil fields are left untouched.
type UpdateProject struct {
	Name            *string
	Description     *string
	MetaTitle       *string
	MetaDescription *string
	PrimaryColor    *string
	CustomCSS       *string
	Settings        *Settings
}

// ChangedFields lists the names of the fields an update would touch.
// Event payloads carry these names, never the values.
func (u UpdateProject) ChangedFields() []string {
	fields := make([]string, 0, 7)
	if u.Name != nil {
		fields = append(fields, "name")
	}
	if u.Description != nil {
		fields = append(fields, "description")
	}
	if u.MetaTitle != nil {
		fields = append(fields, "meta_title")
	}
	if u.MetaDescription != nil {
		fields = append(fields, "meta_description")
	}
	if u.PrimaryColor != nil {
		fields = append(fields, "primary_color")
	}
	if u.CustomCSS != nil {
		fields = append(fields, "custom_css")
	}
	if u.Settings != nil {
		fields = append(fields, "settings")
	}
	return fields
}
