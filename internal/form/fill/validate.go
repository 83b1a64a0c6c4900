package fill

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/docuform/pdf-form-filler/internal/form"
	"github.com/docuform/pdf-form-filler/internal/form/formerr"
)

// ResultValidator checks whether mutated bytes are safe to hand back.
// A non-nil error discards the candidate and reverts to the original.
type ResultValidator func(candidate []byte) error

// ValidateResult is the production validator: the candidate must not be
// trivially small, must begin with the PDF signature, and must survive
// an independent re-parse without structural errors.
func ValidateResult(candidate []byte) error {
	if len(candidate) < form.MinViablePDFSize {
		return formerr.New(formerr.KindValidationFailed,
			fmt.Sprintf("result too small: %d bytes", len(candidate)))
	}
	if !bytes.HasPrefix(candidate, []byte("%PDF-")) {
		return formerr.New(formerr.KindValidationFailed, "result missing %PDF header")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(candidate), conf)
	if err != nil {
		return formerr.Wrap(formerr.KindValidationFailed, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return formerr.Wrap(formerr.KindValidationFailed, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return formerr.Wrap(formerr.KindValidationFailed, err)
	}
	return nil
}
