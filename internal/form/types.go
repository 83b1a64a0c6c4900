package form

import (
	"time"
)

// Complexity classifies how risky it is to mutate a template.
type Complexity string

const (
	// ComplexitySimple marks documents with a conventional flat AcroForm
	// catalog and no signals that blind mutation could corrupt them.
	ComplexitySimple Complexity = "simple"
	// ComplexityComplex marks documents carrying an XFA data model,
	// signature dictionaries, or similar structures. Filling such a
	// document is restricted to a small priority subset of fields and
	// skips flattening and appearance regeneration.
	ComplexityComplex Complexity = "complex"
)

// SemanticType is the inferred meaning of a field, used to pick the
// default widget in a mapping UI and to coerce values at fill time.
type SemanticType string

const (
	SemanticText         SemanticType = "text"
	SemanticNumber       SemanticType = "number"
	SemanticDate         SemanticType = "date"
	SemanticBoolean      SemanticType = "boolean"
	SemanticSingleChoice SemanticType = "single_choice"
	SemanticMultiChoice  SemanticType = "multi_choice"
)

// FieldDescriptor describes one fillable field discovered in a template.
// Name is unique within a template. For Simple documents it addresses an
// actual control; for Complex documents it is best-effort and may be
// synthetic.
type FieldDescriptor struct {
	Name          string       `json:"name"`
	Type          SemanticType `json:"type"`
	ChoiceOptions []string     `json:"choice_options,omitempty"`
	Required      bool         `json:"required"`
}

// Classification is the classifier verdict plus the signals that
// produced it. Signals are diagnostic only and never drive control flow
// downstream.
type Classification struct {
	Complexity Complexity `json:"complexity"`
	Signals    []string   `json:"signals,omitempty"`
}

// IsComplex reports whether the template was classified as complex.
func (c Classification) IsComplex() bool {
	return c.Complexity == ComplexityComplex
}

// Template is an immutable template document plus discovery metadata.
// The engine never mutates Raw; every fill operates on a fresh copy.
type Template struct {
	FileName     string            `json:"file_name"`
	Raw          []byte            `json:"-"`
	PageCount    int               `json:"page_count"`
	Fields       []FieldDescriptor `json:"fields,omitempty"`
	DiscoveredAt time.Time         `json:"discovered_at,omitempty"`
}

// DataRecord is one flat row of input data. Values are never mutated.
type DataRecord struct {
	ID     string            `json:"id"`
	Values map[string]string `json:"values"`
}

// FieldMapping connects a template field to a record column and/or a
// literal default. At fill time the value is record[SourceColumn] when
// present and non-empty, else DefaultValue, else the field is omitted.
type FieldMapping struct {
	FieldName    string `json:"field_name"`
	SourceColumn string `json:"source_column,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
}

// Resolve returns the value this mapping contributes for the given
// record, and whether there is one at all.
func (m FieldMapping) Resolve(rec DataRecord) (string, bool) {
	if m.SourceColumn != "" {
		if v, ok := rec.Values[m.SourceColumn]; ok && v != "" {
			return v, true
		}
	}
	if m.DefaultValue != "" {
		return m.DefaultValue, true
	}
	return "", false
}

// FillOutcome describes how a single record's fill ended.
type FillOutcome string

const (
	// OutcomeFilled means the template was mutated and validated.
	OutcomeFilled FillOutcome = "filled"
	// OutcomeOriginalFallback means something along the way was unsafe
	// and the untouched original bytes were returned instead.
	OutcomeOriginalFallback FillOutcome = "original_fallback"
	// OutcomeFailed means no output could be produced for the record.
	OutcomeFailed FillOutcome = "failed"
)

// FillResult is produced once per record and consumed immediately by the
// batch orchestrator. Bytes is exclusively owned by the result.
type FillResult struct {
	RecordID        string      `json:"record_id"`
	Outcome         FillOutcome `json:"outcome"`
	Bytes           []byte      `json:"-"`
	FieldsAttempted int         `json:"fields_attempted"`
	FieldsFilled    int         `json:"fields_filled"`
	Note            string      `json:"note,omitempty"`
}

// ProgressStatus is the per-record status carried by progress events.
type ProgressStatus string

const (
	StatusProcessing ProgressStatus = "processing"
	StatusCompleted  ProgressStatus = "completed"
	StatusError      ProgressStatus = "error"
)

// ProgressEvent reports batch advancement to an observer. Current is
// monotonically non-decreasing within a batch.
type ProgressEvent struct {
	Current int            `json:"current"`
	Total   int            `json:"total"`
	Status  ProgressStatus `json:"status"`
}

// Reporter receives progress and diagnostic events from the engine and
// the batch orchestrator. Implementations must be cheap; they are called
// inline from the processing loop.
type Reporter interface {
	Progress(ev ProgressEvent)
	Diagnostic(msg string)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Progress(ProgressEvent) {}
func (NopReporter) Diagnostic(string)      {}
