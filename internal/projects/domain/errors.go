package domain

import "errors"

var (
	ErrNotFound     = errors.New("project not found")
	ErrSlugConflict = errors.New("project slug already in use")
	ErrNoTenant     = errors.New("no tenant selected")
	ErrForbidden    = errors.New("insufficient role for this operation")
	ErrValidation   = errors.New("invalid project input")
)
