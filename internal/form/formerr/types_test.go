package formerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnknown, "UNKNOWN"},
		{KindUnreadableInput, "UNREADABLE_INPUT"},
		{KindFieldNotFound, "FIELD_NOT_FOUND"},
		{KindUnsupportedFieldOperation, "UNSUPPORTED_FIELD_OPERATION"},
		{KindValidationFailed, "VALIDATION_FAILED"},
		{KindRecordProcessingFailed, "RECORD_PROCESSING_FAILED"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKind_Recoverable(t *testing.T) {
	recoverable := []Kind{
		KindFieldNotFound,
		KindUnsupportedFieldOperation,
		KindValidationFailed,
		KindRecordProcessingFailed,
	}
	for _, k := range recoverable {
		if !k.Recoverable() {
			t.Errorf("%s should be recoverable", k)
		}
	}

	if KindUnreadableInput.Recoverable() {
		t.Errorf("UNREADABLE_INPUT should not be recoverable")
	}
	if KindUnknown.Recoverable() {
		t.Errorf("UNKNOWN should not be recoverable")
	}
}

func TestError_Context(t *testing.T) {
	err := New(KindFieldNotFound, "no such field").WithField("nume_solicitant")
	if got := err.Error(); got != `[FIELD_NOT_FOUND] field "nume_solicitant": no such field` {
		t.Errorf("unexpected error text: %s", got)
	}

	err = New(KindRecordProcessingFailed, "panic recovered").WithRecord("rec-7")
	if got := err.Error(); got != `[RECORD_PROCESSING_FAILED] record "rec-7": panic recovered` {
		t.Errorf("unexpected error text: %s", got)
	}

	if err.Timestamp.IsZero() {
		t.Errorf("expected timestamp to be set")
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("bad xref table")
	err := Wrap(KindUnreadableInput, cause)

	if !errors.Is(err, cause) {
		t.Errorf("wrapped cause should be reachable via errors.Is")
	}
	if KindOf(err) != KindUnreadableInput {
		t.Errorf("KindOf should see the outer kind, got %v", KindOf(err))
	}

	wrapped := fmt.Errorf("loading template: %w", err)
	if KindOf(wrapped) != KindUnreadableInput {
		t.Errorf("KindOf should traverse fmt.Errorf wrapping, got %v", KindOf(wrapped))
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Errorf("foreign errors should map to KindUnknown")
	}
	if KindOf(nil) != KindUnknown {
		t.Errorf("nil should map to KindUnknown")
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(New(KindUnreadableInput, "garbage")) {
		t.Errorf("unreadable input should be fatal")
	}
	if IsFatal(New(KindValidationFailed, "reparse failed")) {
		t.Errorf("validation failure should not be fatal")
	}
}
