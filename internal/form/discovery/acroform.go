package discovery

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/docuform/pdf-form-filler/internal/form"
)

// Field flag bits from the AcroForm field dictionary (Ff entry).
const (
	ffRequired    = 1 << 1
	ffRadio       = 1 << 15
	ffPushbutton  = 1 << 16
	ffMultiSelect = 1 << 21
)

// AcroFormStrategy reads the conventional AcroForm field catalog. It is
// always attempted first regardless of classification: when present it
// is the cheapest and most reliable source of names, native control
// types, and choice lists.
type AcroFormStrategy struct{}

// NewAcroFormStrategy creates the structured-catalog stage.
func NewAcroFormStrategy() *AcroFormStrategy {
	return &AcroFormStrategy{}
}

// Name identifies the stage in diagnostics.
func (s *AcroFormStrategy) Name() string { return "acroform_catalog" }

// Attempt walks Catalog → AcroForm → Fields and converts each field
// dictionary into a descriptor. Individual malformed fields are skipped.
func (s *AcroFormStrategy) Attempt(tpl *form.Template, _ form.Classification) ([]form.FieldDescriptor, error) {
	if len(tpl.Raw) == 0 {
		return nil, nil
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(tpl.Raw), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return nil, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	var names []string
	byName := make(map[string]form.FieldDescriptor)
	for _, fieldRef := range fieldsArray {
		collectField(ctx, fieldRef, "", &names, byName)
	}

	out := make([]form.FieldDescriptor, 0, len(names))
	for _, n := range names {
		out = append(out, byName[n])
	}
	return out, nil
}

// collectField converts one field dictionary, recursing into Kids that
// carry their own partial names.
func collectField(ctx *model.Context, fieldObj types.Object, prefix string, names *[]string, byName map[string]form.FieldDescriptor) {
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

	// Kids carrying their own T entries are child fields; kids without
	// one are widget annotations of this field.
	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kidsArray, err := ctx.DereferenceArray(kidsObj); err == nil {
			childFields := false
			for _, kid := range kidsArray {
				if kidDict, err := ctx.DereferenceDict(kid); err == nil && kidDict != nil {
					if _, hasName := kidDict.Find("T"); hasName {
						childFields = true
						collectField(ctx, kid, name, names, byName)
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
	if _, dup := byName[name]; dup {
		return
	}

	flags := fieldFlags(ctx, fieldDict)
	controlType := resolveControlType(ctx, fieldDict, flags)
	if controlType == "button" || controlType == "signature" {
		// Pushbuttons and signature fields are not fillable targets.
		return
	}

	desc := form.FieldDescriptor{
		Name:     name,
		Type:     form.NativeSemanticType(controlType, flags&ffMultiSelect != 0),
		Required: flags&ffRequired != 0,
	}
	if controlType == "select" || controlType == "radio" {
		desc.ChoiceOptions = fieldOptions(ctx, fieldDict)
	}

	*names = append(*names, name)
	byName[name] = desc
}

// fieldFlags reads the Ff entry, walking up Parent for inheritance.
func fieldFlags(ctx *model.Context, fieldDict types.Dict) int {
	if flagsObj, found := fieldDict.Find("Ff"); found {
		if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
			return int(*flags)
		}
	}
	if parentObj, found := fieldDict.Find("Parent"); found {
		if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
			return fieldFlags(ctx, parentDict)
		}
	}
	return 0
}

// resolveControlType determines the control type from the FT entry,
// walking up Parent for inherited types.
func resolveControlType(ctx *model.Context, fieldDict types.Dict, flags int) string {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return resolveControlType(ctx, parentDict, flags)
			}
		}
		return "text"
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return "text"
	}

	switch ftName {
	case "Btn":
		switch {
		case flags&ffRadio != 0:
			return "radio"
		case flags&ffPushbutton != 0:
			return "button"
		default:
			return "checkbox"
		}
	case "Tx":
		return "text"
	case "Ch":
		return "select"
	case "Sig":
		return "signature"
	default:
		return "text"
	}
}

// fieldOptions reads the Opt array of a choice field. Entries can be
// plain strings or [export, display] pairs; the display value is used.
func fieldOptions(ctx *model.Context, fieldDict types.Dict) []string {
	optObj, found := fieldDict.Find("Opt")
	if !found {
		return nil
	}
	optArray, err := ctx.DereferenceArray(optObj)
	if err != nil {
		return nil
	}

	var options []string
	for _, opt := range optArray {
		if str, err := ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			options = append(options, str)
		} else if arr, err := ctx.DereferenceArray(opt); err == nil && len(arr) >= 2 {
			if displayVal, err := ctx.DereferenceStringOrHexLiteral(arr[1], model.V10, nil); err == nil {
				options = append(options, displayVal)
			}
		}
	}
	return options
}
