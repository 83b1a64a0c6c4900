package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuform/pdf-form-filler/internal/form"
)

func TestAcroFormStrategy_EmptyInput(t *testing.T) {
	s := NewAcroFormStrategy()
	fields, err := s.Attempt(&form.Template{}, form.Classification{})
	if err != nil {
		t.Fatalf("empty input should decline quietly, got %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("expected no fields, got %v", fields)
	}
}

func TestAcroFormStrategy_GarbageInput(t *testing.T) {
	s := NewAcroFormStrategy()
	_, err := s.Attempt(&form.Template{Raw: []byte("%PDF-1.7 garbage")}, form.Classification{})
	if err == nil {
		t.Errorf("expected an error for unparsable input")
	}
}

func TestAcroFormStrategy_RealForm(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testPDF := filepath.Join("..", "..", "..", "testdata", "simple_form.pdf")
	raw, err := os.ReadFile(testPDF)
	if os.IsNotExist(err) {
		t.Skipf("test PDF not found at %s", testPDF)
	}
	require.NoError(t, err)

	s := NewAcroFormStrategy()
	fields, err := s.Attempt(&form.Template{Raw: raw}, form.Classification{Complexity: form.ComplexitySimple})
	require.NoError(t, err)
	require.NotEmpty(t, fields, "expected AcroForm fields in the fixture")

	seen := make(map[string]form.FieldDescriptor, len(fields))
	for _, f := range fields {
		assert.NotEmpty(t, f.Name)
		assert.NotEmpty(t, f.Type)
		_, dup := seen[f.Name]
		assert.False(t, dup, "field names must be unique: %s", f.Name)
		seen[f.Name] = f
	}

	for _, f := range fields {
		switch f.Type {
		case form.SemanticSingleChoice, form.SemanticMultiChoice:
			// Choice fields carry their option lists when the document
			// declares them.
		default:
			assert.Empty(t, f.ChoiceOptions, "non-choice field %s should have no options", f.Name)
		}
	}
}
