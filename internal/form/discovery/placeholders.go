package discovery

import (
	"fmt"

	"github.com/docuform/pdf-form-filler/internal/form"
)

const (
	placeholdersPerPage = 2
	maxPlaceholders     = 10
)

// PlaceholderStrategy synthesizes generic numbered fields when every
// other stage came back empty, so the downstream mapping UI is never
// presented with zero fields.
type PlaceholderStrategy struct{}

// NewPlaceholderStrategy creates the last-resort stage.
func NewPlaceholderStrategy() *PlaceholderStrategy {
	return &PlaceholderStrategy{}
}

// Name identifies the stage in diagnostics.
func (s *PlaceholderStrategy) Name() string { return "synthetic_placeholders" }

// Attempt yields a small numbered field set bounded by the declared page
// count. Even a zero-page (unreadable) template gets a minimal set.
func (s *PlaceholderStrategy) Attempt(tpl *form.Template, _ form.Classification) ([]form.FieldDescriptor, error) {
	pages := tpl.PageCount
	if pages < 1 {
		pages = 1
	}
	n := pages * placeholdersPerPage
	if n > maxPlaceholders {
		n = maxPlaceholders
	}

	fields := make([]form.FieldDescriptor, 0, n)
	for i := 1; i <= n; i++ {
		fields = append(fields, form.FieldDescriptor{
			Name: fmt.Sprintf("field_%d", i),
			Type: form.SemanticText,
		})
	}
	return fields, nil
}
