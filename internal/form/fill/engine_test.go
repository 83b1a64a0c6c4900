package fill

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docuform/pdf-form-filler/internal/form"
)

// stubMutator records what it was asked to write and returns canned
// output. corrupt makes it hand back bytes a validator stub rejects;
// fail makes Apply error; boom makes it panic.
type stubMutator struct {
	out      []byte
	fail     error
	boom     bool
	corrupt  bool
	lastRaw  []byte
	writes   []FieldWrite
	finalize bool
}

func (m *stubMutator) Apply(raw []byte, writes []FieldWrite, finalize bool) ([]byte, int, error) {
	m.lastRaw = raw
	m.writes = writes
	m.finalize = finalize
	if m.boom {
		panic("mutator exploded")
	}
	if m.fail != nil {
		return nil, 0, m.fail
	}
	if m.corrupt {
		return []byte("garbage"), len(writes), nil
	}
	out := m.out
	if out == nil {
		out = append([]byte{}, raw...)
		out = append(out, []byte("+filled")...)
	}
	return out, len(writes), nil
}

// acceptAll is a validator stub that accepts anything.
func acceptAll([]byte) error { return nil }

// rejectGarbage is a validator stub that rejects the corrupt marker.
func rejectGarbage(candidate []byte) error {
	if bytes.Equal(candidate, []byte("garbage")) {
		return errors.New("candidate failed reparse")
	}
	return nil
}

func simplePDF() []byte {
	return []byte("%PDF-1.7\n1 0 obj << /Type /Catalog >> endobj\n%%EOF")
}

func complexPDF() []byte {
	return []byte("%PDF-1.7\n<< /XFA 5 0 R /ByteRange [0 1 2 3] >>\n%%EOF")
}

func testTemplate(raw []byte, fields ...form.FieldDescriptor) *form.Template {
	return &form.Template{FileName: "test.pdf", Raw: raw, PageCount: 1, Fields: fields}
}

func textMappings(names ...string) []form.FieldMapping {
	out := make([]form.FieldMapping, 0, len(names))
	for _, n := range names {
		out = append(out, form.FieldMapping{FieldName: n, SourceColumn: n})
	}
	return out
}

func TestEngine_FillsSimpleDocument(t *testing.T) {
	mut := &stubMutator{}
	e := NewEngine(WithMutator(mut), WithResultValidator(acceptAll))

	tpl := testTemplate(simplePDF(),
		form.FieldDescriptor{Name: "nume_solicitant", Type: form.SemanticText},
		form.FieldDescriptor{Name: "accept", Type: form.SemanticBoolean},
	)
	rec := form.DataRecord{ID: "rec-1", Values: map[string]string{
		"nume_solicitant": "Ana Pop",
		"accept":          "da",
	}}

	result := e.FillRecord(tpl, rec, textMappings("nume_solicitant", "accept"))

	if result.Outcome != form.OutcomeFilled {
		t.Fatalf("expected filled, got %s (%s)", result.Outcome, result.Note)
	}
	if result.FieldsAttempted != 2 || result.FieldsFilled != 2 {
		t.Errorf("expected 2 attempted, 2 filled; got %d/%d", result.FieldsAttempted, result.FieldsFilled)
	}
	if !mut.finalize {
		t.Errorf("simple documents must be finalized")
	}
	if len(mut.writes) != 2 {
		t.Fatalf("expected 2 writes, got %v", mut.writes)
	}
	if mut.writes[0].Value.Kind != WriteText || mut.writes[0].Value.Text != "Ana Pop" {
		t.Errorf("unexpected first write: %+v", mut.writes[0])
	}
	if mut.writes[1].Value.Kind != WriteCheck || !mut.writes[1].Value.Checked {
		t.Errorf("unexpected second write: %+v", mut.writes[1])
	}
}

func TestEngine_TemplateNeverMutated(t *testing.T) {
	raw := simplePDF()
	pristine := append([]byte{}, raw...)
	tpl := testTemplate(raw, form.FieldDescriptor{Name: "nume", Type: form.SemanticText})

	e := NewEngine(WithMutator(&stubMutator{}), WithResultValidator(acceptAll))
	rec := form.DataRecord{ID: "rec-1", Values: map[string]string{"nume": "Ana"}}

	for i := 0; i < 3; i++ {
		e.FillRecord(tpl, rec, textMappings("nume"))
	}

	if !bytes.Equal(tpl.Raw, pristine) {
		t.Fatalf("template bytes were mutated")
	}
}

func TestEngine_MutationFailureFallsBackToOriginal(t *testing.T) {
	raw := simplePDF()
	tpl := testTemplate(raw, form.FieldDescriptor{Name: "nume", Type: form.SemanticText})

	e := NewEngine(
		WithMutator(&stubMutator{fail: errors.New("xref rebuild failed")}),
		WithResultValidator(acceptAll),
	)
	rec := form.DataRecord{ID: "rec-1", Values: map[string]string{"nume": "Ana"}}

	result := e.FillRecord(tpl, rec, textMappings("nume"))

	if result.Outcome != form.OutcomeOriginalFallback {
		t.Fatalf("expected original fallback, got %s", result.Outcome)
	}
	if !bytes.Equal(result.Bytes, raw) {
		t.Errorf("fallback output must be byte-identical to the original")
	}
	if result.Note == "" {
		t.Errorf("fallback should carry the failure note")
	}
}

func TestEngine_ValidationFailureFallsBackToOriginal(t *testing.T) {
	raw := simplePDF()
	tpl := testTemplate(raw, form.FieldDescriptor{Name: "nume", Type: form.SemanticText})

	e := NewEngine(
		WithMutator(&stubMutator{corrupt: true}),
		WithResultValidator(rejectGarbage),
	)
	rec := form.DataRecord{ID: "rec-1", Values: map[string]string{"nume": "Ana"}}

	result := e.FillRecord(tpl, rec, textMappings("nume"))

	if result.Outcome != form.OutcomeOriginalFallback {
		t.Fatalf("corrupt mutation output must fall back, got %s", result.Outcome)
	}
	if !bytes.Equal(result.Bytes, raw) {
		t.Errorf("fallback output must be byte-identical to the original")
	}
}

func TestEngine_PanicRecoversToOriginal(t *testing.T) {
	raw := simplePDF()
	tpl := testTemplate(raw, form.FieldDescriptor{Name: "nume", Type: form.SemanticText})

	e := NewEngine(WithMutator(&stubMutator{boom: true}), WithResultValidator(acceptAll))
	rec := form.DataRecord{ID: "rec-1", Values: map[string]string{"nume": "Ana"}}

	result := e.FillRecord(tpl, rec, textMappings("nume"))

	if result.Outcome != form.OutcomeOriginalFallback {
		t.Fatalf("panic must degrade to the original bytes, got %s", result.Outcome)
	}
	if !bytes.Equal(result.Bytes, raw) {
		t.Errorf("fallback output must be byte-identical to the original")
	}
	if !strings.Contains(result.Note, "panic") {
		t.Errorf("note should mention the recovery: %q", result.Note)
	}
}

func TestEngine_EmptyTemplateFails(t *testing.T) {
	e := NewEngine(WithMutator(&stubMutator{}), WithResultValidator(acceptAll))
	result := e.FillRecord(&form.Template{FileName: "empty.pdf"}, form.DataRecord{ID: "rec-1"}, nil)

	if result.Outcome != form.OutcomeFailed {
		t.Fatalf("no original bytes means nothing to fall back to, got %s", result.Outcome)
	}
	if len(result.Bytes) != 0 {
		t.Errorf("failed results carry no output")
	}
}

func TestEngine_NothingToFillFallsBack(t *testing.T) {
	raw := simplePDF()
	tpl := testTemplate(raw, form.FieldDescriptor{Name: "nume", Type: form.SemanticText})

	e := NewEngine(WithMutator(&stubMutator{}), WithResultValidator(acceptAll))

	// Record has no values and mappings have no defaults.
	result := e.FillRecord(tpl, form.DataRecord{ID: "rec-1"}, textMappings("nume"))

	if result.Outcome != form.OutcomeOriginalFallback {
		t.Fatalf("expected fallback when nothing resolves, got %s", result.Outcome)
	}
	if !bytes.Equal(result.Bytes, raw) {
		t.Errorf("expected the untouched original")
	}
}

func TestEngine_PerFieldIsolation(t *testing.T) {
	// One unmatched choice value must not sink the other writes.
	tpl := testTemplate(simplePDF(),
		form.FieldDescriptor{Name: "nume", Type: form.SemanticText},
		form.FieldDescriptor{Name: "judet", Type: form.SemanticSingleChoice, ChoiceOptions: []string{"Cluj"}},
		form.FieldDescriptor{Name: "email", Type: form.SemanticText},
	)
	rec := form.DataRecord{ID: "rec-1", Values: map[string]string{
		"nume":  "Ana Pop",
		"judet": "Atlantida",
		"email": "ana@example.com",
	}}

	mut := &stubMutator{}
	e := NewEngine(WithMutator(mut), WithResultValidator(acceptAll))
	result := e.FillRecord(tpl, rec, textMappings("nume", "judet", "email"))

	if result.Outcome != form.OutcomeFilled {
		t.Fatalf("expected filled, got %s (%s)", result.Outcome, result.Note)
	}
	if len(mut.writes) != 2 {
		t.Fatalf("expected the unmatched choice skipped, got %d writes", len(mut.writes))
	}
	for _, w := range mut.writes {
		if w.Name == "judet" {
			t.Errorf("judet should have been skipped")
		}
	}
}

func TestEngine_ComplexDocumentRestraint(t *testing.T) {
	var fields []form.FieldDescriptor
	var names []string
	for i := 1; i <= 12; i++ {
		n := fmt.Sprintf("camp_%d", i)
		fields = append(fields, form.FieldDescriptor{Name: n, Type: form.SemanticText})
		names = append(names, n)
	}
	// Identity fields that should win the priority selection.
	fields = append(fields,
		form.FieldDescriptor{Name: "nume_solicitant", Type: form.SemanticText},
		form.FieldDescriptor{Name: "email_contact", Type: form.SemanticText},
	)
	names = append(names, "nume_solicitant", "email_contact")

	tpl := testTemplate(complexPDF(), fields...)
	values := make(map[string]string, len(names))
	for _, n := range names {
		values[n] = "v"
	}
	rec := form.DataRecord{ID: "rec-1", Values: values}

	mut := &stubMutator{}
	e := NewEngine(WithMutator(mut), WithResultValidator(acceptAll), WithPrioritySubsetSize(5))
	result := e.FillRecord(tpl, rec, textMappings(names...))

	if result.Outcome != form.OutcomeFilled {
		t.Fatalf("expected filled, got %s (%s)", result.Outcome, result.Note)
	}
	if len(mut.writes) > 5 {
		t.Fatalf("complex documents must fill at most the priority bound, got %d writes", len(mut.writes))
	}
	if mut.finalize {
		t.Errorf("complex documents must not be finalized")
	}

	found := map[string]bool{}
	for _, w := range mut.writes {
		found[w.Name] = true
	}
	if !found["nume_solicitant"] || !found["email_contact"] {
		t.Errorf("priority fragments should be selected first, got %v", found)
	}
}

func TestEngine_ComplexWithoutPriorityMatchesTopsUp(t *testing.T) {
	var fields []form.FieldDescriptor
	var names []string
	for i := 1; i <= 8; i++ {
		n := fmt.Sprintf("camp_%d", i)
		fields = append(fields, form.FieldDescriptor{Name: n, Type: form.SemanticText})
		names = append(names, n)
	}
	tpl := testTemplate(complexPDF(), fields...)
	values := make(map[string]string, len(names))
	for _, n := range names {
		values[n] = "v"
	}

	mut := &stubMutator{}
	e := NewEngine(WithMutator(mut), WithResultValidator(acceptAll), WithPrioritySubsetSize(3))
	result := e.FillRecord(tpl, form.DataRecord{ID: "rec-1", Values: values}, textMappings(names...))

	if result.Outcome != form.OutcomeFilled {
		t.Fatalf("expected filled, got %s", result.Outcome)
	}
	if len(mut.writes) != 3 {
		t.Fatalf("expected the first 3 writes in mapping order, got %d", len(mut.writes))
	}
	if mut.writes[0].Name != "camp_1" {
		t.Errorf("expected mapping order preserved, got %q first", mut.writes[0].Name)
	}
}

func TestEngine_UnknownFieldStillAttempted(t *testing.T) {
	// A mapping naming a field outside the catalog still produces a
	// write; the mutator decides whether the document has it.
	tpl := testTemplate(simplePDF(), form.FieldDescriptor{Name: "nume", Type: form.SemanticText})
	rec := form.DataRecord{ID: "rec-1", Values: map[string]string{"telefon_mobil": "0712345678"}}

	mut := &stubMutator{}
	e := NewEngine(WithMutator(mut), WithResultValidator(acceptAll))
	e.FillRecord(tpl, rec, textMappings("telefon_mobil"))

	if len(mut.writes) != 1 || mut.writes[0].Name != "telefon_mobil" {
		t.Fatalf("unknown fields should still be attempted, got %v", mut.writes)
	}
	if mut.writes[0].Value.Kind != WriteText {
		t.Errorf("type inferred from the name should drive coercion, got %+v", mut.writes[0].Value)
	}
}

func TestEngine_CaseInsensitiveCatalogLookup(t *testing.T) {
	tpl := testTemplate(simplePDF(),
		form.FieldDescriptor{Name: "Accept", Type: form.SemanticBoolean},
	)
	rec := form.DataRecord{ID: "rec-1", Values: map[string]string{"accept": "da"}}

	mut := &stubMutator{}
	e := NewEngine(WithMutator(mut), WithResultValidator(acceptAll))
	e.FillRecord(tpl, rec, textMappings("accept"))

	if len(mut.writes) != 1 || mut.writes[0].Value.Kind != WriteCheck {
		t.Fatalf("catalog lookup should retry case-insensitively, got %v", mut.writes)
	}
}
