package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrSlugConflict = errors.New("document slug already in use")
)

// Document is a single page inside a project. Soft-deleted rows keep their
// content but drop out of every listing.
type Document struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	TenantID  string    `json:"tenant_id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Position  int       `json:"position"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateDocument struct {
	Title    string
	Content  string
	Position int
}

type UpdateDocument struct {
	Title    *string
	Content  *string
	Position *int
}

// NewDocumentID generates a hex-based document id, e.g. "doc_a1b2c3...".
func NewDocumentID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("doc_%s", hex.EncodeToString(b)), nil
}
