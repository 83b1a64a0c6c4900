package batch

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/docuform/pdf-form-filler/internal/form"
)

// BuildArchive packs a finished batch into a zip: one entry per record
// that produced output bytes, plus an errors.txt note when any record
// failed. Duplicate output names get a numeric suffix so nothing is
// silently overwritten.
func BuildArchive(result Result) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	used := make(map[string]int)
	var errorNotes []string

	for _, entry := range result.Entries {
		if entry.Outcome == form.OutcomeFailed || len(entry.Bytes) == 0 {
			errorNotes = append(errorNotes,
				fmt.Sprintf("record %s: %s", entry.RecordID, noteOr(entry.Note, "no output produced")))
			continue
		}

		name := entry.OutputName
		if name == "" {
			name = fmt.Sprintf("record-%s.pdf", sanitizeFragment(entry.RecordID))
		}
		if n := used[name]; n > 0 {
			base := name[:len(name)-len(".pdf")]
			name = fmt.Sprintf("%s_%d.pdf", base, n+1)
		}
		used[entry.OutputName]++

		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %s: %w", name, err)
		}
		if _, err := w.Write(entry.Bytes); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %s: %w", name, err)
		}
	}

	if len(errorNotes) > 0 {
		w, err := zw.Create("errors.txt")
		if err != nil {
			return nil, fmt.Errorf("failed to create error note: %w", err)
		}
		for _, line := range errorNotes {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return nil, fmt.Errorf("failed to write error note: %w", err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func noteOr(note, fallback string) string {
	if note != "" {
		return note
	}
	return fallback
}
