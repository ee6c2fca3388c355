// Package template models the editable HTML documents agreements are
// generated from. Templates are addressed by slug; the generator treats a
// missing slug as a hard error.
package template

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingSlug    = errors.New("template: slug is required")
	ErrMissingContent = errors.New("template: HTML content is required")
)

// DocumentTemplate is one stored HTML template.
type DocumentTemplate struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	HTMLContent string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the fields an upsert must carry.
func (t *DocumentTemplate) Validate() error {
	if t.Slug == "" {
		return ErrMissingSlug
	}
	if t.HTMLContent == "" {
		return ErrMissingContent
	}
	return nil
}
