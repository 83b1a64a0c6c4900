package form

// Request and result shapes for the service surface the MCP server and
// CLI consume. The wiring lives in internal/service to keep this
// package free of dependencies on the discovery and fill stages.

// DiscoverFieldsRequest asks for the field catalog of a template file.
type DiscoverFieldsRequest struct {
	Path string `json:"path"`
}

// DiscoverFieldsResult carries the discovered catalog plus the
// classification that gated discovery.
type DiscoverFieldsResult struct {
	Path           string            `json:"path"`
	PageCount      int               `json:"page_count"`
	Classification Classification    `json:"classification"`
	Fields         []FieldDescriptor `json:"fields"`
}

// ClassifyFileRequest asks for the complexity verdict of a template.
type ClassifyFileRequest struct {
	Path string `json:"path"`
}

// ClassifyFileResult carries the verdict and matched signals.
type ClassifyFileResult struct {
	Path           string         `json:"path"`
	Classification Classification `json:"classification"`
}

// ValidateFileRequest asks whether a file is an openable PDF template.
type ValidateFileRequest struct {
	Path string `json:"path"`
}

// ValidateFileResult reports validity; Message explains failures.
type ValidateFileResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// FillFileRequest fills one template with one record.
type FillFileRequest struct {
	Path       string         `json:"path"`
	Record     DataRecord     `json:"record"`
	Mappings   []FieldMapping `json:"mappings"`
	OutputPath string         `json:"output_path,omitempty"`
}

// FillFileResult reports the single-record outcome. Bytes are written
// to OutputPath when one was requested, otherwise retained in memory.
type FillFileResult struct {
	Path            string      `json:"path"`
	OutputPath      string      `json:"output_path,omitempty"`
	Outcome         FillOutcome `json:"outcome"`
	FieldsAttempted int         `json:"fields_attempted"`
	FieldsFilled    int         `json:"fields_filled"`
	Note            string      `json:"note,omitempty"`
	Bytes           []byte      `json:"-"`
}

// FillBatchRequest fills one template once per record and optionally
// writes the assembled archive.
type FillBatchRequest struct {
	Path        string         `json:"path"`
	JobName     string         `json:"job_name,omitempty"`
	Records     []DataRecord   `json:"records"`
	Mappings    []FieldMapping `json:"mappings"`
	ArchivePath string         `json:"archive_path,omitempty"`
}

// BatchEntrySummary is the per-record line of a batch result, without
// the output bytes.
type BatchEntrySummary struct {
	RecordID   string      `json:"record_id"`
	OutputName string      `json:"output_name"`
	Outcome    FillOutcome `json:"outcome"`
	Note       string      `json:"note,omitempty"`
}

// FillBatchResult reports the batch summary and per-record outcomes.
type FillBatchResult struct {
	Path        string              `json:"path"`
	ArchivePath string              `json:"archive_path,omitempty"`
	Total       int                 `json:"total"`
	Filled      int                 `json:"filled"`
	Fallback    int                 `json:"fallback"`
	Failed      int                 `json:"failed"`
	SuccessRate float64             `json:"success_rate"`
	Entries     []BatchEntrySummary `json:"entries"`
}
