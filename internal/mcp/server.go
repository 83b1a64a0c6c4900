package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/docuform/pdf-form-filler/internal/config"
	"github.com/docuform/pdf-form-filler/internal/descriptions"
	"github.com/docuform/pdf-form-filler/internal/form"
	"github.com/docuform/pdf-form-filler/internal/service"
)

// Server represents the MCP server instance
type Server struct {
	config      *config.Config
	formService *service.Service
	mcpServer   *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, formService *service.Service) (*Server, error) {
	if formService == nil {
		return nil, fmt.Errorf("formService cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:      cfg,
		formService: formService,
		mcpServer:   mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.PDFValidateFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF template"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	pdfClassifyFileTool := mcp.NewTool(
		"pdf_classify_file",
		mcp.WithDescription(descriptions.PDFClassifyFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF template"),
		),
	)
	s.mcpServer.AddTool(pdfClassifyFileTool, s.handlePDFClassifyFile)

	pdfDiscoverFieldsTool := mcp.NewTool(
		"pdf_discover_fields",
		mcp.WithDescription(descriptions.PDFDiscoverFieldsDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF template"),
		),
	)
	s.mcpServer.AddTool(pdfDiscoverFieldsTool, s.handlePDFDiscoverFields)

	pdfFillFileTool := mcp.NewTool(
		"pdf_fill_file",
		mcp.WithDescription(descriptions.PDFFillFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF template"),
		),
		mcp.WithString("record_json",
			mcp.Required(),
			mcp.Description("One data record as JSON: {\"id\": \"...\", \"values\": {\"column\": \"value\"}}"),
		),
		mcp.WithString("mappings_json",
			mcp.Required(),
			mcp.Description("Field mappings as a JSON list of {field_name, source_column, default_value}"),
		),
		mcp.WithString("output_path",
			mcp.Description("Optional path to write the filled PDF to"),
		),
	)
	s.mcpServer.AddTool(pdfFillFileTool, s.handlePDFFillFile)

	pdfFillBatchTool := mcp.NewTool(
		"pdf_fill_batch",
		mcp.WithDescription(descriptions.PDFFillBatchDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF template"),
		),
		mcp.WithString("records_json",
			mcp.Required(),
			mcp.Description("Data records as a JSON list of {id, values}"),
		),
		mcp.WithString("mappings_json",
			mcp.Required(),
			mcp.Description("Field mappings as a JSON list of {field_name, source_column, default_value}"),
		),
		mcp.WithString("job_name",
			mcp.Description("Optional job name leading every output file name"),
		),
		mcp.WithString("archive_path",
			mcp.Description("Optional path to write the zip of outputs to"),
		),
	)
	s.mcpServer.AddTool(pdfFillBatchTool, s.handlePDFFillBatch)

	formServerInfoTool := mcp.NewTool(
		"form_server_info",
		mcp.WithDescription(descriptions.FormServerInfoDescription),
	)
	s.mcpServer.AddTool(formServerInfoTool, s.handleFormServerInfo)
}

// Handler functions
func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.formService.ValidateFile(form.ValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF template %s is valid and readable", result.Path)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFClassifyFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.formService.ClassifyFile(form.ClassifyFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Classification for %s: %s\n", result.Path, result.Classification.Complexity)
	if len(result.Classification.Signals) > 0 {
		responseText += "Matched signals:\n"
		for _, sig := range result.Classification.Signals {
			responseText += fmt.Sprintf("  - %s\n", sig)
		}
	} else {
		responseText += "No risk signals matched.\n"
	}
	if result.Classification.IsComplex() {
		responseText += "\nFills on this template are restricted to the priority field subset and skip flattening."
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFDiscoverFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.formService.DiscoverFields(form.DiscoverFieldsRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatDiscoverFieldsResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFFillFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recordJSON, err := request.RequireString("record_json")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mappingsJSON, err := request.RequireString("mappings_json")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var record form.DataRecord
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid record_json: %v", err)), nil
	}
	var mappings []form.FieldMapping
	if err := json.Unmarshal([]byte(mappingsJSON), &mappings); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid mappings_json: %v", err)), nil
	}

	args := request.GetArguments()
	outputPath := ""
	if op, ok := args["output_path"].(string); ok {
		outputPath = op
	}

	result, err := s.formService.FillFile(form.FillFileRequest{
		Path:       path,
		Record:     record,
		Mappings:   mappings,
		OutputPath: outputPath,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Fill outcome for %s: %s\n", result.Path, result.Outcome)
	responseText += fmt.Sprintf("Fields attempted: %d\n", result.FieldsAttempted)
	responseText += fmt.Sprintf("Fields filled: %d\n", result.FieldsFilled)
	if result.Note != "" {
		responseText += fmt.Sprintf("Note: %s\n", result.Note)
	}
	if result.OutputPath != "" {
		responseText += fmt.Sprintf("Output written to: %s\n", result.OutputPath)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFFillBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recordsJSON, err := request.RequireString("records_json")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mappingsJSON, err := request.RequireString("mappings_json")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var records []form.DataRecord
	if err := json.Unmarshal([]byte(recordsJSON), &records); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid records_json: %v", err)), nil
	}
	var mappings []form.FieldMapping
	if err := json.Unmarshal([]byte(mappingsJSON), &mappings); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid mappings_json: %v", err)), nil
	}

	args := request.GetArguments()
	jobName := ""
	if jn, ok := args["job_name"].(string); ok {
		jobName = jn
	}
	archivePath := ""
	if ap, ok := args["archive_path"].(string); ok {
		archivePath = ap
	}

	result, err := s.formService.FillBatch(ctx, form.FillBatchRequest{
		Path:        path,
		JobName:     jobName,
		Records:     records,
		Mappings:    mappings,
		ArchivePath: archivePath,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFillBatchResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("%s v%s\n\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Template directory: %s\n", s.config.TemplateDirectory)
	text += fmt.Sprintf("Max file size: %d bytes\n", s.config.MaxFileSize)
	text += fmt.Sprintf("Discovery sufficiency threshold: %d\n", s.config.SufficiencyThreshold)
	text += fmt.Sprintf("Complex-document fill bound: %d\n", s.config.PrioritySubsetSize)
	text += fmt.Sprintf("Batch workers: %d\n", s.config.WorkerCount)
	text += "\nTools: pdf_validate_file, pdf_classify_file, pdf_discover_fields, pdf_fill_file, pdf_fill_batch\n"
	text += "\nRecommended workflow:\n"
	text += "1. pdf_validate_file - confirm the template opens\n"
	text += "2. pdf_discover_fields - get the catalog to map data onto\n"
	text += "3. pdf_fill_file - spot-check one record\n"
	text += "4. pdf_fill_batch - generate the full set\n"

	return mcp.NewToolResultText(text), nil
}

// Formatting methods
func (s *Server) formatDiscoverFieldsResult(result *form.DiscoverFieldsResult) string {
	text := fmt.Sprintf("Discovered %d field(s) in %s\n", len(result.Fields), result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.PageCount)
	text += fmt.Sprintf("Classification: %s\n", result.Classification.Complexity)
	text += "\nFields:\n"

	for i, field := range result.Fields {
		text += fmt.Sprintf("%d. %s (%s)", i+1, field.Name, field.Type)
		if field.Required {
			text += " [required]"
		}
		text += "\n"
		if len(field.ChoiceOptions) > 0 {
			text += fmt.Sprintf("   Options: %v\n", field.ChoiceOptions)
		}
	}

	return text
}

func (s *Server) formatFillBatchResult(result *form.FillBatchResult) string {
	text := fmt.Sprintf("Batch finished for %s\n", result.Path)
	text += fmt.Sprintf("Total records: %d\n", result.Total)
	text += fmt.Sprintf("Filled: %d\n", result.Filled)
	text += fmt.Sprintf("Original fallback: %d\n", result.Fallback)
	text += fmt.Sprintf("Failed: %d\n", result.Failed)
	text += fmt.Sprintf("Success rate: %.0f%%\n", result.SuccessRate*100)
	if result.ArchivePath != "" {
		text += fmt.Sprintf("Archive written to: %s\n", result.ArchivePath)
	}

	if result.Failed > 0 {
		text += "\nFailed records:\n"
		for _, e := range result.Entries {
			if e.Outcome == form.OutcomeFailed {
				text += fmt.Sprintf("  - %s: %s\n", e.RecordID, e.Note)
			}
		}
	}

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF form filler MCP server in stdio mode")
		log.Printf("Template directory: %s", s.config.TemplateDirectory)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs transport does not expose an HTTP listener here yet.
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
