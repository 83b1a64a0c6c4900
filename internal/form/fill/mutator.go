package fill

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/docuform/pdf-form-filler/internal/form"
	"github.com/docuform/pdf-form-filler/internal/form/formerr"
)

const ffReadOnly = 1 // bit 1 of the field flags

// Mutator applies a set of field writes to a working copy of the
// document. Implementations must never mutate raw; they parse it and
// produce a fresh output buffer. filled counts the writes that actually
// landed; writes naming unknown fields are skipped, not failed.
type Mutator interface {
	Apply(raw []byte, writes []FieldWrite, finalize bool) (out []byte, filled int, err error)
}

// PDFCPUMutator writes AcroForm field values at the dictionary level.
// With finalize set it additionally marks written fields read-only and
// requests appearance regeneration; callers keep finalize off for
// complex documents, where both operations are unacceptably likely to
// corrupt an XML-driven form.
type PDFCPUMutator struct {
	reporter form.Reporter
}

// NewPDFCPUMutator creates the production mutator.
func NewPDFCPUMutator(reporter form.Reporter) *PDFCPUMutator {
	if reporter == nil {
		reporter = form.NopReporter{}
	}
	return &PDFCPUMutator{reporter: reporter}
}

// Apply parses raw, locates each named field (exact name first, then
// case-insensitive), writes the coerced values, and serializes the
// result into a new buffer.
func (m *PDFCPUMutator) Apply(raw []byte, writes []FieldWrite, finalize bool) ([]byte, int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(raw), conf)
	if err != nil {
		return nil, 0, formerr.Wrap(formerr.KindUnreadableInput, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, 0, formerr.Wrap(formerr.KindUnreadableInput, err)
	}

	acroFormDict, fieldIndex, err := indexFields(ctx)
	if err != nil {
		return nil, 0, err
	}

	filled := 0
	for _, w := range writes {
		fieldDict, ok := lookupField(fieldIndex, w.Name)
		if !ok {
			m.reporter.Diagnostic(fmt.Sprintf("fill: field %q not found, skipping", w.Name))
			continue
		}
		if err := writeField(ctx, fieldDict, w.Value); err != nil {
			m.reporter.Diagnostic(fmt.Sprintf("fill: field %q: %v", w.Name, err))
			continue
		}
		if finalize {
			markReadOnly(fieldDict)
		}
		filled++
	}

	if finalize && filled > 0 {
		acroFormDict["NeedAppearances"] = types.Boolean(true)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, 0, formerr.Wrap(formerr.KindValidationFailed, err)
	}
	return buf.Bytes(), filled, nil
}

// indexFields walks Catalog → AcroForm → Fields and builds a full-name
// index of terminal field dictionaries.
func indexFields(ctx *model.Context) (types.Dict, map[string]types.Dict, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, nil, formerr.Wrap(formerr.KindUnreadableInput, err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil, formerr.New(formerr.KindFieldNotFound, "document has no AcroForm dictionary")
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return nil, nil, formerr.New(formerr.KindFieldNotFound, "AcroForm dictionary is unreadable")
	}

	index := make(map[string]types.Dict)
	if fieldsObj, found := acroFormDict.Find("Fields"); found {
		if fieldsArray, err := ctx.DereferenceArray(fieldsObj); err == nil {
			for _, fieldRef := range fieldsArray {
				indexField(ctx, fieldRef, "", index)
			}
		}
	}
	return acroFormDict, index, nil
}

func indexField(ctx *model.Context, fieldObj types.Object, prefix string, index map[string]types.Dict) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil || fieldDict == nil {
		return
	}

	name := prefix
	if nameObj, found := fieldDict.Find("T"); found {
		if partial, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil && partial != "" {
			if name != "" {
				name = name + "." + partial
			} else {
				name = partial
			}
		}
	}

	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kidsArray, err := ctx.DereferenceArray(kidsObj); err == nil {
			childFields := false
			for _, kid := range kidsArray {
				if kidDict, err := ctx.DereferenceDict(kid); err == nil && kidDict != nil {
					if _, hasName := kidDict.Find("T"); hasName {
						childFields = true
						indexField(ctx, kid, name, index)
					}
				}
			}
			if childFields {
				return
			}
		}
	}

	if name == "" {
		return
	}
	if _, dup := index[name]; !dup {
		index[name] = fieldDict
	}
}

// lookupField resolves a write target by exact name, then retries with
// a case-insensitive match.
func lookupField(index map[string]types.Dict, name string) (types.Dict, bool) {
	if d, ok := index[name]; ok {
		return d, true
	}
	lower := strings.ToLower(name)
	for n, d := range index {
		if strings.ToLower(n) == lower {
			return d, true
		}
	}
	return nil, false
}

// writeField sets the field's value entry according to the write kind.
func writeField(ctx *model.Context, fieldDict types.Dict, v WriteValue) error {
	switch v.Kind {
	case WriteCheck:
		state := "Off"
		if v.Checked {
			state = onStateName(ctx, fieldDict)
		}
		fieldDict["V"] = types.Name(state)
		fieldDict["AS"] = types.Name(state)
	case WriteChoice:
		fieldDict["V"] = types.StringLiteral(v.Text)
	default:
		fieldDict["V"] = types.StringLiteral(v.Text)
	}
	return nil
}

// onStateName finds the checkbox's on-state from its appearance
// dictionary; "Yes" is the conventional default when none is declared.
func onStateName(ctx *model.Context, fieldDict types.Dict) string {
	apObj, found := fieldDict.Find("AP")
	if !found {
		return "Yes"
	}
	apDict, err := ctx.DereferenceDict(apObj)
	if err != nil || apDict == nil {
		return "Yes"
	}
	nObj, found := apDict.Find("N")
	if !found {
		return "Yes"
	}
	nDict, err := ctx.DereferenceDict(nObj)
	if err != nil || nDict == nil {
		return "Yes"
	}
	for state := range nDict {
		if state != "Off" {
			return state
		}
	}
	return "Yes"
}

// markReadOnly sets bit 1 of the field flags so the filled control is no
// longer editable.
func markReadOnly(fieldDict types.Dict) {
	flags := 0
	if flagsObj, found := fieldDict.Find("Ff"); found {
		if i, ok := flagsObj.(types.Integer); ok {
			flags = int(i)
		}
	}
	fieldDict["Ff"] = types.Integer(flags | ffReadOnly)
}
