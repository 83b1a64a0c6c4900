package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docuform/pdf-form-filler/internal/config"
	"github.com/docuform/pdf-form-filler/internal/form"
	"github.com/docuform/pdf-form-filler/internal/service"
)

var (
	recordsPath  = flag.String("records", "", "Path to a JSON file with the data records")
	mappingsPath = flag.String("mappings", "", "Path to a JSON file with the field mappings")
	jobName      = flag.String("job", "", "Job name leading every output file name")
	archivePath  = flag.String("archive", "", "Path to write the output zip to")
	workers      = flag.Int("workers", config.DefaultWorkerCount, "Bounded worker count (1 keeps input order)")
	outputFormat = flag.String("format", "text", "Output format: text, json")
	verbose      = flag.Bool("verbose", false, "Enable verbose output")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF template path required\n\n")
		printUsage()
		os.Exit(1)
	}
	if *recordsPath == "" || *mappingsPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -records and -mappings are required\n\n")
		printUsage()
		os.Exit(1)
	}

	templatePath := flag.Arg(0)
	if _, err := os.Stat(templatePath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", templatePath)
		os.Exit(1)
	}

	records, mappings, err := loadInputs(*recordsPath, *mappingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	cfg.WorkerCount = *workers
	if dir := filepath.Dir(templatePath); dir != "" {
		cfg.TemplateDirectory = dir
	}

	var reporter form.Reporter = form.NopReporter{}
	if *verbose {
		reporter = consoleReporter{}
	}
	svc := service.NewService(cfg, reporter)

	result, err := svc.FillBatch(context.Background(), form.FillBatchRequest{
		Path:        templatePath,
		JobName:     *jobName,
		Records:     records,
		Mappings:    mappings,
		ArchivePath: *archivePath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running batch: %v\n", err)
		os.Exit(1)
	}

	if err := outputResult(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func loadInputs(recordsFile, mappingsFile string) ([]form.DataRecord, []form.FieldMapping, error) {
	recordsRaw, err := os.ReadFile(recordsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read records file: %w", err)
	}
	var records []form.DataRecord
	if err := json.Unmarshal(recordsRaw, &records); err != nil {
		return nil, nil, fmt.Errorf("invalid records JSON: %w", err)
	}

	mappingsRaw, err := os.ReadFile(mappingsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read mappings file: %w", err)
	}
	var mappings []form.FieldMapping
	if err := json.Unmarshal(mappingsRaw, &mappings); err != nil {
		return nil, nil, fmt.Errorf("invalid mappings JSON: %w", err)
	}

	return records, mappings, nil
}

// consoleReporter prints engine progress and diagnostics to stderr so
// stdout stays clean for -format json.
type consoleReporter struct{}

func (consoleReporter) Progress(ev form.ProgressEvent) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", ev.Current, ev.Total, ev.Status)
}

func (consoleReporter) Diagnostic(msg string) {
	fmt.Fprintf(os.Stderr, "  %s\n", msg)
}

func outputResult(result *form.FillBatchResult) error {
	switch *outputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "text":
		return outputText(result)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputText(result *form.FillBatchResult) error {
	fmt.Printf("Batch finished for %s\n", result.Path)
	fmt.Printf("  Total:    %d\n", result.Total)
	fmt.Printf("  Filled:   %d\n", result.Filled)
	fmt.Printf("  Fallback: %d\n", result.Fallback)
	fmt.Printf("  Failed:   %d\n", result.Failed)
	fmt.Printf("  Success rate: %.0f%%\n", result.SuccessRate*100)
	if result.ArchivePath != "" {
		fmt.Printf("  Archive: %s\n", result.ArchivePath)
	}
	fmt.Println()

	for i, entry := range result.Entries {
		fmt.Printf("[%d] %s\n", i+1, entry.RecordID)
		fmt.Printf("    Outcome: %s\n", entry.Outcome)
		if entry.OutputName != "" {
			fmt.Printf("    Output: %s\n", entry.OutputName)
		}
		if entry.Note != "" {
			fmt.Printf("    Note: %s\n", entry.Note)
		}
	}

	return nil
}

func printHelp() {
	fmt.Println("PDF Fill Batch - Fill a PDF template once per data record")
	fmt.Println()
	fmt.Println("The template is parsed once, its fields are discovered, and every")
	fmt.Println("record produces one output document. Records that cannot be filled")
	fmt.Println("safely fall back to the untouched template bytes; a record failure")
	fmt.Println("never stops the rest of the batch.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -records   Path to a JSON file: [{\"id\": \"...\", \"values\": {...}}, ...]")
	fmt.Println("  -mappings  Path to a JSON file: [{\"field_name\", \"source_column\", \"default_value\"}, ...]")
	fmt.Println("  -job       Job name leading every output file name")
	fmt.Println("  -archive   Path to write the zip of outputs to")
	fmt.Println("  -workers   Bounded worker count (default 1, keeps input order)")
	fmt.Println("  -format    Output format: text (default), json")
	fmt.Println("  -verbose   Print per-record progress to stderr")
	fmt.Println("  -help      Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  pdf-fill-batch -records records.json -mappings mappings.json formular.pdf")
	fmt.Println("  pdf-fill-batch -job d230 -archive out.zip -records r.json -mappings m.json d230.pdf")
	fmt.Println("  pdf-fill-batch -workers 4 -format json -records r.json -mappings m.json template.pdf")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  pdf-fill-batch [OPTIONS] <pdf_template>")
}

func init() {
	// Custom flag usage
	flag.Usage = func() {
		printHelp()
	}
}
