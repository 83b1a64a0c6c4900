package form

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/docuform/pdf-form-filler/internal/form/formerr"
)

// MinViablePDFSize is the smallest byte count a structurally meaningful
// PDF can have. Anything below it is treated as unreadable.
const MinViablePDFSize = 100

// Validator performs cheap structural checks on template input before
// the engine does any real work with it.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator with the given file size ceiling.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateBytes checks that raw holds an openable PDF.
func (v *Validator) ValidateBytes(raw []byte) error {
	if len(raw) == 0 {
		return formerr.New(formerr.KindUnreadableInput, "input is empty")
	}
	if int64(len(raw)) > v.maxFileSize {
		return formerr.New(formerr.KindUnreadableInput,
			fmt.Sprintf("input too large: %d bytes (max: %d bytes)", len(raw), v.maxFileSize))
	}
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		return formerr.New(formerr.KindUnreadableInput, "missing %PDF header")
	}
	if len(raw) < MinViablePDFSize {
		return formerr.New(formerr.KindUnreadableInput,
			fmt.Sprintf("input too small to be a PDF: %d bytes", len(raw)))
	}
	if _, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw))); err != nil {
		return formerr.Wrap(formerr.KindUnreadableInput, err)
	}
	return nil
}

// ValidateFile checks that path points at an openable PDF file.
func (v *Validator) ValidateFile(path string) error {
	if path == "" {
		return formerr.New(formerr.KindUnreadableInput, "path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return formerr.New(formerr.KindUnreadableInput, fmt.Sprintf("file does not exist: %s", path))
	}
	if err != nil {
		return formerr.Wrap(formerr.KindUnreadableInput, err)
	}
	if fileInfo.IsDir() {
		return formerr.New(formerr.KindUnreadableInput, fmt.Sprintf("path is a directory, not a file: %s", path))
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return formerr.New(formerr.KindUnreadableInput, fmt.Sprintf("file is not a PDF: %s", path))
	}
	if fileInfo.Size() == 0 {
		return formerr.New(formerr.KindUnreadableInput, fmt.Sprintf("file is empty: %s", path))
	}
	if fileInfo.Size() > v.maxFileSize {
		return formerr.New(formerr.KindUnreadableInput,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), v.maxFileSize))
	}

	f, _, err := pdf.Open(path)
	if err != nil {
		return formerr.Wrap(formerr.KindUnreadableInput, err)
	}
	defer f.Close()

	return nil
}

// IsValidPDF is a convenience wrapper for quick checks.
func (v *Validator) IsValidPDF(raw []byte) bool {
	return v.ValidateBytes(raw) == nil
}

// Inspect builds the Template metadata for raw bytes: page count plus
// the discovery timestamp. The field catalog is attached later by the
// discovery pipeline. Unreadable input still yields a usable Template
// with a zero page count so downstream fallbacks have something to
// anchor on.
func (v *Validator) Inspect(fileName string, raw []byte) Template {
	tpl := Template{
		FileName:     fileName,
		Raw:          raw,
		DiscoveredAt: time.Now(),
	}
	if len(raw) == 0 {
		return tpl
	}
	if r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw))); err == nil {
		tpl.PageCount = r.NumPage()
	}
	return tpl
}
