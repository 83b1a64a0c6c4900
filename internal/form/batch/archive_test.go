package batch

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuform/pdf-form-filler/internal/form"
)

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = string(content)
	}
	return out
}

func entry(id, name string, outcome form.FillOutcome, data []byte, note string) Entry {
	return Entry{
		FillResult: form.FillResult{RecordID: id, Outcome: outcome, Bytes: data, Note: note},
		OutputName: name,
	}
}

func TestBuildArchive(t *testing.T) {
	result := Result{Entries: []Entry{
		entry("rec-1", "job-rec_1.pdf", form.OutcomeFilled, []byte("%PDF-one"), ""),
		entry("rec-2", "job-rec_2.pdf", form.OutcomeOriginalFallback, []byte("%PDF-orig"), "nothing to fill"),
		entry("rec-3", "job-rec_3.pdf", form.OutcomeFailed, nil, "template bytes are empty"),
	}}

	data, err := BuildArchive(result)
	require.NoError(t, err)

	files := readArchive(t, data)
	assert.Len(t, files, 3)
	assert.Equal(t, "%PDF-one", files["job-rec_1.pdf"])
	assert.Equal(t, "%PDF-orig", files["job-rec_2.pdf"], "fallback outputs belong in the archive")

	notes, ok := files["errors.txt"]
	require.True(t, ok, "failed records must be noted")
	assert.Contains(t, notes, "rec-3")
	assert.Contains(t, notes, "template bytes are empty")
}

func TestBuildArchive_DuplicateNames(t *testing.T) {
	result := Result{Entries: []Entry{
		entry("rec-1", "job-a.pdf", form.OutcomeFilled, []byte("first"), ""),
		entry("rec-2", "job-a.pdf", form.OutcomeFilled, []byte("second"), ""),
		entry("rec-3", "job-a.pdf", form.OutcomeFilled, []byte("third"), ""),
	}}

	data, err := BuildArchive(result)
	require.NoError(t, err)

	files := readArchive(t, data)
	assert.Len(t, files, 3, "duplicates must not overwrite each other")
	assert.Equal(t, "first", files["job-a.pdf"])
	assert.Equal(t, "second", files["job-a_2.pdf"])
	assert.Equal(t, "third", files["job-a_3.pdf"])
}

func TestBuildArchive_MissingOutputName(t *testing.T) {
	result := Result{Entries: []Entry{
		entry("rec-9", "", form.OutcomeFilled, []byte("data"), ""),
	}}

	data, err := BuildArchive(result)
	require.NoError(t, err)

	files := readArchive(t, data)
	require.Len(t, files, 1)
	for name := range files {
		assert.True(t, strings.HasSuffix(name, ".pdf"))
		assert.Contains(t, name, "rec_9")
	}
}

func TestBuildArchive_AllFailed(t *testing.T) {
	result := Result{Entries: []Entry{
		entry("rec-1", "a.pdf", form.OutcomeFailed, nil, ""),
		entry("rec-2", "b.pdf", form.OutcomeFailed, nil, "boom"),
	}}

	data, err := BuildArchive(result)
	require.NoError(t, err)

	files := readArchive(t, data)
	require.Len(t, files, 1)
	notes := files["errors.txt"]
	assert.Contains(t, notes, "no output produced")
	assert.Contains(t, notes, "boom")
}

func TestBuildArchive_Empty(t *testing.T) {
	data, err := BuildArchive(Result{})
	require.NoError(t, err)

	files := readArchive(t, data)
	assert.Empty(t, files)
}
