package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docuform/pdf-form-filler/internal/config"
	"github.com/docuform/pdf-form-filler/internal/service"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Mode:                 "stdio",
		Host:                 "127.0.0.1",
		Port:                 8080,
		TemplateDirectory:    dir,
		Version:              "1.0.0",
		ServerName:           "test-server",
		LogLevel:             "info",
		MaxFileSize:          1024 * 1024,
		SufficiencyThreshold: config.DefaultSufficiencyThreshold,
		PrioritySubsetSize:   config.DefaultPrioritySubsetSize,
		ClassifyScanCap:      config.DefaultClassifyScanCap,
		MaxTextLength:        config.DefaultMaxTextLength,
		WorkerCount:          1,
	}
}

func testServer(t *testing.T, dir string) *Server {
	t.Helper()
	cfg := testConfig(dir)
	svc := service.NewService(cfg, nil)
	server, err := NewServer(cfg, svc)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server
}

func TestNewServer(t *testing.T) {
	tempDir := t.TempDir()
	cfg := testConfig(tempDir)
	svc := service.NewService(cfg, nil)

	tests := []struct {
		name        string
		config      *config.Config
		service     *service.Service
		expectError bool
	}{
		{
			name:        "valid stdio mode config",
			config:      cfg,
			service:     svc,
			expectError: false,
		},
		{
			name: "valid server mode config",
			config: func() *config.Config {
				c := testConfig(tempDir)
				c.Mode = "server"
				return c
			}(),
			service:     svc,
			expectError: false,
		},
		{
			name:        "nil service",
			config:      cfg,
			service:     nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.config, tt.service)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.expectError {
				if server == nil {
					t.Fatal("server should not be nil")
				}
				if server.config != tt.config {
					t.Error("server config not set correctly")
				}
				if server.formService != tt.service {
					t.Error("server formService not set correctly")
				}
				if server.mcpServer == nil {
					t.Error("mcpServer should be initialized")
				}
			}
		})
	}
}

func TestServer_HandlePDFValidateFile(t *testing.T) {
	tempDir := t.TempDir()

	// Not a real PDF, so validation should fail gracefully
	testFile := filepath.Join(tempDir, "test.pdf")
	if err := os.WriteFile(testFile, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	server := testServer(t, tempDir)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": testFile,
			},
		},
	}

	result, err := server.handlePDFValidateFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil {
		t.Fatal("result should not be nil")
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "PDF validation failed") {
		t.Errorf("expected validation to fail, got: %s", resultText)
	}
}

func TestServer_HandlePDFValidateFile_MissingPath(t *testing.T) {
	server := testServer(t, t.TempDir())

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{},
		},
	}

	result, err := server.handlePDFValidateFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil || !result.IsError {
		t.Errorf("missing path should produce an error result")
	}
}

func TestServer_HandlePDFFillFile_BadJSON(t *testing.T) {
	tempDir := t.TempDir()
	server := testServer(t, tempDir)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{
			name: "invalid record json",
			args: map[string]interface{}{
				"path":          filepath.Join(tempDir, "x.pdf"),
				"record_json":   "{not json",
				"mappings_json": "[]",
			},
			want: "invalid record_json",
		},
		{
			name: "invalid mappings json",
			args: map[string]interface{}{
				"path":          filepath.Join(tempDir, "x.pdf"),
				"record_json":   `{"id":"r1","values":{}}`,
				"mappings_json": "{not json",
			},
			want: "invalid mappings_json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := mcp.CallToolRequest{
				Params: mcp.CallToolParams{
					Arguments: tt.args,
				},
			}

			result, err := server.handlePDFFillFile(context.Background(), request)
			if err != nil {
				t.Fatalf("handler failed: %v", err)
			}
			if result == nil || !result.IsError {
				t.Fatalf("expected an error result")
			}
			if text := extractTextFromResult(result); !strings.Contains(text, tt.want) {
				t.Errorf("expected %q in %q", tt.want, text)
			}
		})
	}
}

func TestServer_HandlePDFFillBatch_BadJSON(t *testing.T) {
	tempDir := t.TempDir()
	server := testServer(t, tempDir)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path":          filepath.Join(tempDir, "x.pdf"),
				"records_json":  "not a list",
				"mappings_json": "[]",
			},
		},
	}

	result, err := server.handlePDFFillBatch(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatalf("expected an error result")
	}
	if text := extractTextFromResult(result); !strings.Contains(text, "invalid records_json") {
		t.Errorf("unexpected error text: %s", text)
	}
}

func TestServer_HandleFormServerInfo(t *testing.T) {
	tempDir := t.TempDir()
	server := testServer(t, tempDir)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{},
		},
	}

	result, err := server.handleFormServerInfo(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := extractTextFromResult(result)
	for _, expected := range []string{
		"test-server",
		"1.0.0",
		tempDir,
		"pdf_discover_fields",
		"pdf_fill_batch",
	} {
		if !strings.Contains(text, expected) {
			t.Errorf("server info should mention %q, got: %s", expected, text)
		}
	}
}

func TestServer_HandlersRejectMissingFiles(t *testing.T) {
	tempDir := t.TempDir()
	server := testServer(t, tempDir)
	missing := filepath.Join(tempDir, "missing.pdf")

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"classify": server.handlePDFClassifyFile,
		"discover": server.handlePDFDiscoverFields,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			request := mcp.CallToolRequest{
				Params: mcp.CallToolParams{
					Arguments: map[string]interface{}{
						"path": missing,
					},
				},
			}

			result, err := handler(context.Background(), request)
			if err != nil {
				t.Fatalf("handler failed: %v", err)
			}
			if result == nil || !result.IsError {
				t.Errorf("missing file should produce an error result")
			}
		})
	}
}

// extractTextFromResult extracts the text content from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	// Try to extract text content
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		// Handle pointer to TextContent as well
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
