// Package fill implements the per-document, per-record safe-fill state
// machine. Its contract is "never worse than the original": any failure
// at any state degrades to the untouched template bytes, and the engine
// never lets an error or panic escape its boundary. Every call yields
// a FillResult.
package fill

import (
	"fmt"
	"strings"

	"github.com/docuform/pdf-form-filler/internal/form"
)

// State names the positions of the fill state machine. Every state has
// a single absorbing failure path into StateDone carrying the original
// bytes.
type State string

const (
	StateLoaded            State = "loaded"
	StateClassified        State = "classified"
	StateFilled            State = "filled"
	StateSkippedUnfillable State = "skipped_unfillable"
	StateValidated         State = "validated"
	StateDone              State = "done"
)

// DefaultPrioritySubsetSize bounds how many fields a complex-classified
// document is allowed to have filled. Tunable, not a constant: the
// right bound is a product decision.
const DefaultPrioritySubsetSize = 5

// DefaultPriorityFragments are the high-value name fragments used to
// pick the priority subset on complex documents: identity and contact
// fields are worth the mutation risk, decorative ones are not.
var DefaultPriorityFragments = []string{
	"nume", "name", "prenume", "cnp", "email", "telefon", "phone",
	"adresa", "address", "localitate", "id",
}

// Engine drives one template plus one record through the fill state
// machine.
type Engine struct {
	classifier        *form.DocumentClassifier
	mutator           Mutator
	validate          ResultValidator
	reporter          form.Reporter
	prioritySubset    int
	priorityFragments []string
	maxTextLength     int
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClassifier overrides the document classifier.
func WithClassifier(c *form.DocumentClassifier) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithMutator overrides the document mutator. Tests use this to inject
// corrupt-producing stubs.
func WithMutator(m Mutator) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.mutator = m
		}
	}
}

// WithResultValidator overrides the post-fill validator.
func WithResultValidator(v ResultValidator) EngineOption {
	return func(e *Engine) {
		if v != nil {
			e.validate = v
		}
	}
}

// WithEngineReporter routes engine diagnostics to the given reporter.
func WithEngineReporter(r form.Reporter) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithPrioritySubsetSize overrides the complex-document fill bound.
func WithPrioritySubsetSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.prioritySubset = n
		}
	}
}

// WithMaxTextLength overrides the text value length cap.
func WithMaxTextLength(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxTextLength = n
		}
	}
}

// NewEngine creates a safe-fill engine with production defaults.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		classifier:        form.NewDocumentClassifier(),
		validate:          ValidateResult,
		reporter:          form.NopReporter{},
		prioritySubset:    DefaultPrioritySubsetSize,
		priorityFragments: DefaultPriorityFragments,
		maxTextLength:     DefaultMaxTextLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.mutator == nil {
		e.mutator = NewPDFCPUMutator(e.reporter)
	}
	return e
}

// FillRecord runs the state machine for one record. It never panics and
// never returns an error: the result either carries validated filled
// bytes, the untouched original bytes, or, only when no original bytes
// exist at all, a failed entry with no output.
func (e *Engine) FillRecord(tpl *form.Template, rec form.DataRecord, mappings []form.FieldMapping) (result form.FillResult) {
	result = form.FillResult{RecordID: rec.ID}

	defer func() {
		if r := recover(); r != nil {
			e.reporter.Diagnostic(fmt.Sprintf("fill: record %s: recovered: %v", rec.ID, r))
			result = e.fallback(tpl, rec, 0, fmt.Sprintf("recovered from panic: %v", r))
		}
	}()

	// Loaded
	if len(tpl.Raw) == 0 {
		result.Outcome = form.OutcomeFailed
		result.Note = "template bytes are empty"
		return result
	}

	// Loaded → Classified
	cls := e.classifier.Classify(tpl.Raw)

	// Classified → Filled | SkippedUnfillable
	writes := e.resolveWrites(tpl, rec, mappings)
	if cls.IsComplex() {
		writes = e.prioritize(writes)
	}
	if len(writes) == 0 {
		// SkippedUnfillable: nothing to write, hand back the original.
		return e.fallback(tpl, rec, 0, "nothing to fill")
	}

	mutated, filled, err := e.mutator.Apply(tpl.Raw, writes, !cls.IsComplex())
	if err != nil {
		e.reporter.Diagnostic(fmt.Sprintf("fill: record %s: mutation failed: %v", rec.ID, err))
		return e.fallback(tpl, rec, len(writes), err.Error())
	}

	// Filled → Validated
	if err := e.validate(mutated); err != nil {
		e.reporter.Diagnostic(fmt.Sprintf("fill: record %s: validation failed: %v", rec.ID, err))
		return e.fallback(tpl, rec, len(writes), err.Error())
	}

	// Validated → Done
	result.Outcome = form.OutcomeFilled
	result.Bytes = mutated
	result.FieldsAttempted = len(writes)
	result.FieldsFilled = filled
	return result
}

// fallback builds the original-bytes result shared by every failure
// path. The returned buffer is a private copy; results own their bytes.
func (e *Engine) fallback(tpl *form.Template, rec form.DataRecord, attempted int, note string) form.FillResult {
	out := make([]byte, len(tpl.Raw))
	copy(out, tpl.Raw)
	return form.FillResult{
		RecordID:        rec.ID,
		Outcome:         form.OutcomeOriginalFallback,
		Bytes:           out,
		FieldsAttempted: attempted,
		Note:            note,
	}
}

// resolveWrites turns mappings into coerced field writes. Per-field
// problems (no value, unmatched choice) skip that field only.
func (e *Engine) resolveWrites(tpl *form.Template, rec form.DataRecord, mappings []form.FieldMapping) []FieldWrite {
	writes := make([]FieldWrite, 0, len(mappings))
	for _, m := range mappings {
		if m.FieldName == "" {
			continue
		}
		value, ok := m.Resolve(rec)
		if !ok {
			continue
		}
		desc := e.descriptorFor(tpl, m.FieldName)
		wv, err := Coerce(desc, value, e.maxTextLength)
		if err != nil {
			e.reporter.Diagnostic(fmt.Sprintf("fill: %v", err))
			continue
		}
		writes = append(writes, FieldWrite{Name: m.FieldName, Value: wv})
	}
	return writes
}

// descriptorFor finds the catalog entry for a mapped field, retrying
// case-insensitively; unknown names get a best-effort descriptor with
// an inferred type so the mutator can still try an exact-name write.
func (e *Engine) descriptorFor(tpl *form.Template, name string) form.FieldDescriptor {
	for _, f := range tpl.Fields {
		if f.Name == name {
			return f
		}
	}
	lower := strings.ToLower(name)
	for _, f := range tpl.Fields {
		if strings.ToLower(f.Name) == lower {
			return f
		}
	}
	return form.FieldDescriptor{Name: name, Type: form.InferSemanticType(name)}
}

// prioritize restricts writes on a complex document to the bounded
// priority subset: name-fragment matches first, topped up in mapping
// order when no fragment matches at all.
func (e *Engine) prioritize(writes []FieldWrite) []FieldWrite {
	if len(writes) <= e.prioritySubset {
		return writes
	}

	subset := make([]FieldWrite, 0, e.prioritySubset)
	for _, w := range writes {
		if len(subset) == e.prioritySubset {
			break
		}
		if e.isPriorityName(w.Name) {
			subset = append(subset, w)
		}
	}
	if len(subset) == 0 {
		return writes[:e.prioritySubset]
	}
	return subset
}

func (e *Engine) isPriorityName(name string) bool {
	lower := strings.ToLower(name)
	for _, frag := range e.priorityFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
