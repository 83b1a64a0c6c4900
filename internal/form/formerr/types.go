// Package formerr defines the error taxonomy for the field-discovery and
// safe-fill engine. Errors are swallowed at the narrowest scope that can
// absorb them; only an unreadable input with no original bytes available
// is allowed to escape the engine.
package formerr

import (
	"errors"
	"fmt"
	"time"
)

// Kind categorizes engine errors by the scope that recovers from them.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnreadableInput: the bytes cannot be parsed as a PDF at all.
	// Terminal per document. The engine returns the original bytes when
	// it has them; without them this is the sole fatal condition.
	KindUnreadableInput
	// KindFieldNotFound: a mapping names a field the document does not
	// have. Recovered by skipping that field.
	KindFieldNotFound
	// KindUnsupportedFieldOperation: the field exists but the requested
	// write is not applicable, e.g. a choice value outside the option
	// list. Recovered by skipping that field.
	KindUnsupportedFieldOperation
	// KindValidationFailed: the mutated document did not pass post-fill
	// validation. Recovered by reverting to the original bytes.
	KindValidationFailed
	// KindRecordProcessingFailed: a record blew up inside a batch.
	// Recovered by recording an error entry and continuing.
	KindRecordProcessingFailed
)

// String returns the stable identifier for a Kind.
func (k Kind) String() string {
	switch k {
	case KindUnreadableInput:
		return "UNREADABLE_INPUT"
	case KindFieldNotFound:
		return "FIELD_NOT_FOUND"
	case KindUnsupportedFieldOperation:
		return "UNSUPPORTED_FIELD_OPERATION"
	case KindValidationFailed:
		return "VALIDATION_FAILED"
	case KindRecordProcessingFailed:
		return "RECORD_PROCESSING_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Recoverable reports whether an error of this kind can be absorbed
// without losing the document.
func (k Kind) Recoverable() bool {
	switch k {
	case KindFieldNotFound, KindUnsupportedFieldOperation:
		return true // per-field skip
	case KindValidationFailed:
		return true // revert to original bytes
	case KindRecordProcessingFailed:
		return true // batch continues
	case KindUnreadableInput:
		return false // recoverable only when original bytes exist
	default:
		return false
	}
}

// Error is the concrete engine error carrying its kind and context.
type Error struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	FieldName string    `json:"field_name,omitempty"`
	RecordID  string    `json:"record_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Err       error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.FieldName != "":
		return fmt.Sprintf("[%s] field %q: %s", e.Kind, e.FieldName, e.Message)
	case e.RecordID != "":
		return fmt.Sprintf("[%s] record %q: %s", e.Kind, e.RecordID, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// New creates an engine error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Timestamp: time.Now()}
}

// Wrap preserves an underlying cause under an engine kind.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Timestamp: time.Now(), Err: err}
}

// WithField attaches the field name an error refers to.
func (e *Error) WithField(name string) *Error {
	e.FieldName = name
	return e
}

// WithRecord attaches the record identifier an error refers to.
func (e *Error) WithRecord(id string) *Error {
	e.RecordID = id
	return e
}

// KindOf extracts the Kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsFatal reports whether the error must propagate out of the engine.
// Only an unreadable input qualifies, and only when no original bytes
// were available to fall back to; callers signal that case by wrapping
// with no recovery applied.
func IsFatal(err error) bool {
	return KindOf(err) == KindUnreadableInput
}
