package batch

import (
	"strings"
	"testing"

	"github.com/docuform/pdf-form-filler/internal/form"
)

func TestOutputName(t *testing.T) {
	mappings := []form.FieldMapping{
		{FieldName: "nume_solicitant", SourceColumn: "nume"},
		{FieldName: "email", SourceColumn: "email"},
	}

	tests := []struct {
		name string
		rec  form.DataRecord
		want string
	}{
		{
			name: "with name fragment",
			rec:  form.DataRecord{ID: "rec-1", Values: map[string]string{"nume": "Ana Pop"}},
			want: "cereri-rec_1-Ana_Pop.pdf",
		},
		{
			name: "no name-like value",
			rec:  form.DataRecord{ID: "rec-2", Values: map[string]string{"email": "x@y.ro"}},
			want: "cereri-rec_2.pdf",
		},
		{
			name: "name value needs sanitizing",
			rec:  form.DataRecord{ID: "rec-3", Values: map[string]string{"nume": "Pop / Ana <1>"}},
			want: "cereri-rec_3-Pop__Ana_1.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputName("cereri", tt.rec, mappings); got != tt.want {
				t.Errorf("OutputName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutputName_Deterministic(t *testing.T) {
	rec := form.DataRecord{ID: "rec-1", Values: map[string]string{"nume": "Ana"}}
	mappings := []form.FieldMapping{{FieldName: "nume", SourceColumn: "nume"}}

	first := OutputName("job", rec, mappings)
	for i := 0; i < 5; i++ {
		if got := OutputName("job", rec, mappings); got != first {
			t.Fatalf("output name changed between calls: %q vs %q", first, got)
		}
	}
}

func TestOutputName_LongValuesCapped(t *testing.T) {
	rec := form.DataRecord{ID: "rec-1", Values: map[string]string{"nume": strings.Repeat("a", 200)}}
	mappings := []form.FieldMapping{{FieldName: "nume", SourceColumn: "nume"}}

	got := OutputName("job", rec, mappings)
	if len(got) > 100 {
		t.Errorf("expected capped name, got %d chars: %q", len(got), got)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("expected .pdf suffix, got %q", got)
	}
}

func TestSanitizeFragment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ana Pop", "Ana_Pop"},
		{"  trimmed  ", "trimmed"},
		{"cu-diacritice-ăâț", "cu_diacritice_ăâț"},
		{"slash/back\\slash", "slashbackslash"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sanitizeFragment(tt.in); got != tt.want {
			t.Errorf("sanitizeFragment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
