package discovery

import (
	"regexp"
	"strings"

	"github.com/docuform/pdf-form-filler/internal/form"
)

// DefaultPatternScanCap bounds how many bytes the pattern stage will
// scan, keeping worst-case latency proportional to the cap rather than
// the file size.
const DefaultPatternScanCap = 8 * 1024 * 1024

// namePattern is one extraction pattern. Patterns run in order so a
// name found by an earlier, more reliable pattern keeps its position.
type namePattern struct {
	label   string
	re      *regexp.Regexp
	xfaOnly bool
	// extract post-processes the raw capture, e.g. taking the last
	// segment of a data-binding reference. Nil means use it as-is.
	extract func(string) string
}

var scanPatterns = []namePattern{
	{label: "acroform_name", re: regexp.MustCompile(`/T\s*\(([^)]{1,100})\)`)},
	{label: "tooltip", re: regexp.MustCompile(`/TU\s*\(([^)]{1,200})\)`)},
	{label: "xfa_field", re: regexp.MustCompile(`<field[^>]*\bname="([^"]{1,100})"`), xfaOnly: true},
	{label: "xfa_bind_ref", re: regexp.MustCompile(`<bind[^>]*\bref="([^"]{1,200})"`), xfaOnly: true, extract: lastBindSegment},
	{label: "js_get_field", re: regexp.MustCompile(`getField\("([^"]{1,100})"\)`)},
	{label: "js_resolve_node", re: regexp.MustCompile(`resolveNode\("([^"]{1,200})"\)`), extract: lastBindSegment},
}

// lastBindSegment reduces an XFA SOM expression or data-binding path to
// its final name segment: "$record.solicitant.nume[0]" → "nume".
func lastBindSegment(ref string) string {
	ref = strings.TrimPrefix(ref, "$record.")
	ref = strings.TrimPrefix(ref, "$data.")
	if i := strings.LastIndex(ref, "."); i >= 0 {
		ref = ref[i+1:]
	}
	if i := strings.Index(ref, "["); i >= 0 {
		ref = ref[:i]
	}
	return ref
}

// PatternScanStrategy re-scans the byte stream with an ordered list of
// textual patterns that correlate with field names in conventional and
// XML-driven forms. Every candidate passes name validation before it
// joins the catalog; types are inferred from the name alone.
type PatternScanStrategy struct {
	scanCap int
}

// NewPatternScanStrategy creates the pattern-scan stage with the default
// scan cap.
func NewPatternScanStrategy() *PatternScanStrategy {
	return &PatternScanStrategy{scanCap: DefaultPatternScanCap}
}

// Name identifies the stage in diagnostics.
func (s *PatternScanStrategy) Name() string { return "pattern_scan" }

// Attempt runs the pattern list over a bounded prefix of the template
// bytes, deduplicating in first-seen order. XFA-specific patterns run
// only for complex-classified documents.
func (s *PatternScanStrategy) Attempt(tpl *form.Template, cls form.Classification) ([]form.FieldDescriptor, error) {
	if len(tpl.Raw) == 0 {
		return nil, nil
	}
	raw := tpl.Raw
	if len(raw) > s.scanCap {
		raw = raw[:s.scanCap]
	}

	var candidates []string
	for _, pat := range scanPatterns {
		if pat.xfaOnly && !cls.IsComplex() {
			continue
		}
		for _, match := range pat.re.FindAllSubmatch(raw, -1) {
			name := strings.TrimSpace(string(match[1]))
			if pat.extract != nil {
				name = pat.extract(name)
			}
			if ValidFieldName(name) {
				candidates = append(candidates, name)
			}
		}
	}

	names := dedupeNames(candidates)
	fields := make([]form.FieldDescriptor, 0, len(names))
	for _, n := range names {
		fields = append(fields, form.FieldDescriptor{
			Name: n,
			Type: form.InferSemanticType(n),
		})
	}
	return fields, nil
}
