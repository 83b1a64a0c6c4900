package discovery

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	minNameLength = 2
	maxNameLength = 100
)

// nameDenylist rejects structural and boilerplate tokens that raw-byte
// scanning surfaces constantly: container names, product names, font
// names, generic root identifiers. Matched case-insensitively against
// the whole candidate.
var nameDenylist = map[string]struct{}{
	"adobe":      {},
	"acrobat":    {},
	"designer":   {},
	"form1":      {},
	"root":       {},
	"template":   {},
	"subform":    {},
	"datasets":   {},
	"data":       {},
	"xfa":        {},
	"xdp":        {},
	"pdf":        {},
	"page1":      {},
	"master":     {},
	"helvetica":  {},
	"arial":      {},
	"times":      {},
	"courier":    {},
	"annotation": {},
	"untitled":   {},
}

var (
	urlPattern       = regexp.MustCompile(`(?i)^(https?://|www\.)|://`)
	numberPattern    = regexp.MustCompile(`^[0-9.,+\- ]+$`)
	extensionPattern = regexp.MustCompile(`(?i)\.(pdf|xml|xdp|js|fdf|xfdf|jpg|jpeg|png|gif|tif|tiff|txt)$`)
	booleanLiterals  = map[string]struct{}{
		"true": {}, "false": {}, "yes": {}, "no": {}, "on": {}, "off": {},
		"da": {}, "nu": {},
	}
)

// ValidFieldName reports whether a scanned candidate string is plausible
// as a form field name. Pattern scanning over raw bytes produces piles
// of false positives; this filter is the primary quality gate.
func ValidFieldName(candidate string) bool {
	name := strings.TrimSpace(candidate)
	if len(name) < minNameLength || len(name) > maxNameLength {
		return false
	}

	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsControl(r) {
			return false
		}
		switch r {
		case '<', '>', '(', ')', '{', '}', '[', ']', '"', '\'', '\\', '/', '%', '&', ';':
			return false
		}
	}
	if !hasLetter {
		return false
	}

	lower := strings.ToLower(name)
	if _, denied := nameDenylist[lower]; denied {
		return false
	}
	if _, boolish := booleanLiterals[lower]; boolish {
		return false
	}
	if urlPattern.MatchString(name) || numberPattern.MatchString(name) || extensionPattern.MatchString(name) {
		return false
	}
	return true
}

// dedupeNames keeps the first occurrence of each name, preserving
// first-seen order so discovery output is deterministic.
func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
