package batch

import (
	"strings"
	"unicode"

	"github.com/docuform/pdf-form-filler/internal/form"
)

const maxNameFragment = 40

// nameLikeColumns are the conventional column names whose value makes a
// useful human-readable fragment in an output file name.
var nameLikeColumns = []string{
	"nume", "prenume", "name", "fullname", "full_name", "nume_complet",
}

// OutputName builds the deterministic file name for one record's output:
// the job name, the record identifier, and, when a mapping resolves a
// name-like column, a sanitized readable fragment, keeping archive
// contents navigable.
func OutputName(jobName string, rec form.DataRecord, mappings []form.FieldMapping) string {
	parts := []string{sanitizeFragment(jobName), sanitizeFragment(rec.ID)}
	if frag := nameFragment(rec, mappings); frag != "" {
		parts = append(parts, frag)
	}
	return strings.Join(nonEmpty(parts), "-") + ".pdf"
}

func nameFragment(rec form.DataRecord, mappings []form.FieldMapping) string {
	for _, m := range mappings {
		col := strings.ToLower(m.SourceColumn)
		for _, candidate := range nameLikeColumns {
			if col == candidate {
				if v := rec.Values[m.SourceColumn]; v != "" {
					return sanitizeFragment(v)
				}
			}
		}
	}
	return ""
}

// sanitizeFragment reduces a value to a filesystem- and archive-safe
// fragment: letters and digits kept, separators collapsed to
// underscores, length capped.
func sanitizeFragment(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune('_')
		}
		if b.Len() >= maxNameFragment {
			break
		}
	}
	return b.String()
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
