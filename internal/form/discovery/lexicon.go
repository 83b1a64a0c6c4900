package discovery

import (
	"github.com/docuform/pdf-form-filler/internal/form"
)

// DefaultFieldLexicon lists field names typical of the government
// application forms this engine most often processes. Used by the
// lexicon fallback stage when nothing can be recovered from the bytes;
// it trades precision for recoverability so the mapping UI always has
// realistic targets to offer.
func DefaultFieldLexicon() []string {
	return []string{
		"nume",
		"prenume",
		"cnp",
		"adresa",
		"localitate",
		"judet",
		"strada",
		"numar",
		"bloc",
		"apartament",
		"cod_postal",
		"telefon",
		"email",
		"data",
		"suma",
		"cont_iban",
		"denumire",
		"semnatura",
	}
}

// LexiconStrategy synthesizes a descriptor set from a configured field
// name lexicon. It recovers nothing from the document itself.
type LexiconStrategy struct {
	names []string
}

// NewLexiconStrategy creates the lexicon stage. An empty lexicon
// disables it.
func NewLexiconStrategy(names []string) *LexiconStrategy {
	return &LexiconStrategy{names: names}
}

// Name identifies the stage in diagnostics.
func (s *LexiconStrategy) Name() string { return "domain_lexicon" }

// Attempt yields one descriptor per lexicon entry, in lexicon order,
// with types inferred from the names.
func (s *LexiconStrategy) Attempt(tpl *form.Template, _ form.Classification) ([]form.FieldDescriptor, error) {
	if len(s.names) == 0 || len(tpl.Raw) == 0 {
		return nil, nil
	}
	fields := make([]form.FieldDescriptor, 0, len(s.names))
	for _, n := range dedupeNames(s.names) {
		fields = append(fields, form.FieldDescriptor{
			Name: n,
			Type: form.InferSemanticType(n),
		})
	}
	return fields, nil
}
