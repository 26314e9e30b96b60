// Package template holds uploaded style templates and the session that
// selects one of them for transformation.
package template

import (
	"fmt"

	"github.com/google/uuid"
)

// Template is an uploaded reference document. Content and StyledMarkup are
// derived from the same upload; StyledMarkup is empty for plain-text sources.
type Template struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Content      string `json:"content"`
	StyledMarkup string `json:"styledMarkup,omitempty"`
}

// HasMarkup reports whether the template carries styled markup.
func (t Template) HasMarkup() bool { return t.StyledMarkup != "" }

// NewID returns a fresh random template id.
func NewID() string { return uuid.NewString() }

// New builds a template with a fresh id.
func New(name, content, styledMarkup string) Template {
	return Template{ID: NewID(), Name: name, Content: content, StyledMarkup: styledMarkup}
}

// ConflictError reports an attempt to add a template whose id is taken.
type ConflictError struct {
	ID string
}

func (e *ConflictError) Error() string { return fmt.Sprintf("template %q already exists", e.ID) }

// NotFoundError reports a lookup of an id that is not in the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("template %q not found", e.ID) }
