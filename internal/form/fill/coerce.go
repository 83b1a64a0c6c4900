package fill

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/docuform/pdf-form-filler/internal/form"
	"github.com/docuform/pdf-form-filler/internal/form/formerr"
)

// DefaultMaxTextLength caps text written into a field. Overlong values
// are truncated, not rejected.
const DefaultMaxTextLength = 400

// truthyTokens is the fixed vocabulary a boolean field accepts as true,
// case-insensitive. Anything else is false. Includes the Romanian
// equivalents used by the default domain lexicon.
var truthyTokens = map[string]struct{}{
	"true":    {},
	"yes":     {},
	"1":       {},
	"on":      {},
	"x":       {},
	"checked": {},
	"da":      {},
	"bifat":   {},
}

// Truthy reports whether raw is in the accepted truthy vocabulary.
func Truthy(raw string) bool {
	_, ok := truthyTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// WriteKind selects the kind of mutation a coerced value implies.
type WriteKind int

const (
	WriteText WriteKind = iota
	WriteCheck
	WriteChoice
)

// WriteValue is a coerced, type-checked value ready to be written into
// a document control.
type WriteValue struct {
	Kind    WriteKind
	Text    string
	Checked bool
}

// FieldWrite pairs a field name with the value to write into it.
type FieldWrite struct {
	Name  string
	Value WriteValue
}

// Coerce converts a resolved string value according to the field's
// semantic type. A choice value that matches no known option returns an
// UnsupportedFieldOperation error; the caller skips that single field.
func Coerce(desc form.FieldDescriptor, raw string, maxTextLength int) (WriteValue, error) {
	if maxTextLength <= 0 {
		maxTextLength = DefaultMaxTextLength
	}

	switch desc.Type {
	case form.SemanticBoolean:
		return WriteValue{Kind: WriteCheck, Checked: Truthy(raw)}, nil

	case form.SemanticSingleChoice, form.SemanticMultiChoice:
		opt, ok := matchOption(raw, desc.ChoiceOptions)
		if !ok {
			return WriteValue{}, formerr.New(formerr.KindUnsupportedFieldOperation,
				fmt.Sprintf("value %q matches none of %d option(s)", raw, len(desc.ChoiceOptions))).
				WithField(desc.Name)
		}
		return WriteValue{Kind: WriteChoice, Text: opt}, nil

	default:
		return WriteValue{Kind: WriteText, Text: sanitizeText(raw, maxTextLength)}, nil
	}
}

// matchOption selects an option by exact match first, then by
// case-insensitive substring as a secondary pass.
func matchOption(raw string, options []string) (string, bool) {
	for _, opt := range options {
		if opt == raw {
			return opt, true
		}
	}
	lower := strings.ToLower(raw)
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt), lower) {
			return opt, true
		}
	}
	return "", false
}

// sanitizeText strips control characters and caps the length of a text
// value before it is written.
func sanitizeText(raw string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)

	if len(cleaned) > maxLen {
		// Cut on a rune boundary.
		runes := []rune(cleaned)
		for len(string(runes)) > maxLen {
			runes = runes[:len(runes)-1]
		}
		cleaned = string(runes)
	}
	return strings.TrimSpace(cleaned)
}
