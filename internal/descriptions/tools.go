package descriptions

// Tool descriptions with practical examples and use cases

const (
	PDFValidateFileDescription = `Validate that a file is a readable PDF template.

**When to use:** Before discovery or filling, to confirm the template can be opened at all.

**Why it's useful:** Catches missing files, empty files, oversized files, and non-PDF content with a clear message instead of a downstream failure.

**Examples:**
• Pre-flight a new upload: "Validate cerere-alocatie.pdf before adding it to the project"
• Debug a failing batch: "Check whether template.pdf is actually parseable"

**Best practices:** Run this once per newly uploaded template; the fill tools re-validate internally but give less specific messages.`

	PDFClassifyFileDescription = `Classify a PDF template as simple or complex before filling.

**When to use:** To understand how aggressively the engine will treat a template.

**Why it's useful:** Complex documents (XFA data models, digital signatures, suppressed appearance regeneration) are filled conservatively: only a small priority subset of fields is written and no flattening is applied. Knowing the verdict up front explains those restrictions.

**Examples:**
• "Classify formular-D230.pdf" → complex, signals: /XFA, /ByteRange
• "Classify simple-invoice.pdf" → simple, no signals

**Best practices:** The verdict is conservative on purpose; a simple form misclassified as complex still fills correctly, just more cautiously.`

	PDFDiscoverFieldsDescription = `Discover the fillable fields of a PDF template.

**When to use:** To build or refresh the field catalog a mapping UI presents.

**Why it's useful:** Falls back through four strategies (AcroForm catalog, raw byte pattern scan, domain lexicon, synthetic placeholders) so there is always a non-empty catalog to map data onto, even for templates that expose no clean field table.

**Examples:**
• "Discover fields in cerere.pdf" → nume, prenume, cnp, adresa (acroform_catalog)
• "Discover fields in scanned-form.pdf" → field_1..field_4 (synthetic_placeholders)

**Common workflows:**
1. Upload template → discover fields → map CSV columns → fill batch
2. Template changed → re-discover → diff catalogs → fix mappings

**Best practices:** Discovery is deterministic: the same bytes always produce the same catalog in the same order.`

	PDFFillFileDescription = `Fill one PDF template with one data record.

**When to use:** Single-document generation, or spot-checking a mapping before a batch run.

**Why it's useful:** The safe-fill engine guarantees the output is never worse than the original: any unsafe step falls back to the untouched template bytes, and each problem field is skipped individually rather than failing the document.

**Arguments:** record_json is {"id": "...", "values": {"column": "value"}}; mappings_json is a list of {"field_name", "source_column", "default_value"}.

**Examples:**
• Fill a contract: record {"values": {"fullName": "Ana Pop"}}, mapping name→fullName
• Default a checkbox: mapping {"field_name": "subscribed", "default_value": "yes"}

**Best practices:** Inspect fields_attempted vs fields_filled in the result to spot mappings that never land.`

	PDFFillBatchDescription = `Fill one PDF template once per data record and assemble the outputs.

**When to use:** Bulk generation: one template, many records, one archive.

**Why it's useful:** Per-record failures are isolated: a bad record becomes a failed entry with a note and the rest of the batch completes. Outputs get deterministic, human-navigable names built from the job name, record id, and a name-like column when one is mapped.

**Arguments:** records_json is a list of {"id", "values"}; mappings_json as in pdf_fill_file; archive_path writes a zip of the outputs plus an errors.txt for failures.

**Common workflows:**
1. Discover fields → map columns → fill batch → download archive
2. Re-run failed records only, using the per-entry notes from the previous run

**Best practices:** Keep job_name short; it leads every output file name.`

	FormServerInfoDescription = `Get server information, available tools, and usage guidance.

**When to use:** First contact with the server, or when unsure which tool fits.

**Why it's useful:** Lists the configured template directory, engine tuning (sufficiency threshold, complex-document fill bound, worker count), and the recommended discover → map → fill workflow.`
)
