package form

import (
	"strings"
)

// typeRule maps name fragments to a semantic type. Rules are evaluated
// in order; the first hit wins, so boolean vocabulary shadows choice
// vocabulary and so on.
type typeRule struct {
	semantic SemanticType
	tokens   []string
}

var typeRules = []typeRule{
	{SemanticBoolean, []string{
		"check", "bifat", "accept", "agree", "consent", "subscribed",
		"da_nu", "yesno", "optiune_da", "is_", "are_", "has_",
	}},
	{SemanticSingleChoice, []string{
		"judet", "county", "region", "tara", "country", "sector",
		"categorie", "category", "tip_", "status", "gen", "gender", "sex",
	}},
	{SemanticDate, []string{
		"data", "date", "dob", "nastere", "birth", "emis", "issued",
		"expir", "valabil", "valid_until",
	}},
	{SemanticNumber, []string{
		"cnp", "cui", "cif", "suma", "amount", "total", "numar", "nr_",
		"number", "telefon", "phone", "tel", "cod", "code", "zip",
		"postal", "iban", "cont",
	}},
}

// InferSemanticType guesses a field's semantic type from its bare name.
// Best effort: a wrong guess only changes the default widget offered for
// manual correction, it never blocks filling.
func InferSemanticType(name string) SemanticType {
	lower := strings.ToLower(name)
	for _, rule := range typeRules {
		for _, tok := range rule.tokens {
			if strings.Contains(lower, tok) {
				return rule.semantic
			}
		}
	}
	return SemanticText
}

// NativeSemanticType maps an AcroForm control type to a semantic type.
// Native types are authoritative and used unmodified.
func NativeSemanticType(controlType string, multi bool) SemanticType {
	switch controlType {
	case "checkbox":
		return SemanticBoolean
	case "radio":
		return SemanticSingleChoice
	case "select":
		if multi {
			return SemanticMultiChoice
		}
		return SemanticSingleChoice
	default:
		return SemanticText
	}
}
