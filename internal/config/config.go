package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Engine tuning defaults. The sufficiency threshold and priority
	// subset bound are deliberately configuration, not constants: the
	// right values are product decisions.
	DefaultSufficiencyThreshold = 5
	DefaultPrioritySubsetSize   = 5
	DefaultClassifyScanCap      = 2 * 1024 * 1024
	DefaultMaxTextLength        = 400
	DefaultWorkerCount          = 1

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the form-filler server and engine.
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Template configuration
	TemplateDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum template file size in bytes

	// Engine tuning
	SufficiencyThreshold int // minimum field count for a discovery stage to win
	PrioritySubsetSize   int // fill bound on complex-classified documents
	ClassifyScanCap      int // prefix bytes inspected by the classifier
	MaxTextLength        int // text value length cap at fill time
	WorkerCount          int // bounded batch concurrency; 1 keeps input order
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:                 ModeStdio, // Default to stdio mode for MCP compatibility
		Host:                 DefaultHost,
		Port:                 DefaultPort,
		TemplateDirectory:    currentDir,
		Version:              "1.0.0",
		ServerName:           "pdf-form-filler",
		LogLevel:             DefaultLogLevel,
		MaxFileSize:          DefaultMaxFileSize,
		SufficiencyThreshold: DefaultSufficiencyThreshold,
		PrioritySubsetSize:   DefaultPrioritySubsetSize,
		ClassifyScanCap:      DefaultClassifyScanCap,
		MaxTextLength:        DefaultMaxTextLength,
		WorkerCount:          DefaultWorkerCount,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.TemplateDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.TemplateDirectory); err == nil {
			cfg.TemplateDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("PDF_FORM_FILLER")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.TemplateDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("sufficiency", cfg.SufficiencyThreshold)
	viper.SetDefault("prioritysubset", cfg.PrioritySubsetSize)
	viper.SetDefault("scancap", cfg.ClassifyScanCap)
	viper.SetDefault("maxtextlength", cfg.MaxTextLength)
	viper.SetDefault("workers", cfg.WorkerCount)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.TemplateDirectory, "Directory containing PDF templates")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum template file size in bytes")
	pflag.Int("sufficiency", cfg.SufficiencyThreshold, "Minimum field count for a discovery stage to be sufficient")
	pflag.Int("prioritysubset", cfg.PrioritySubsetSize, "Maximum fields filled on complex-classified documents")
	pflag.Int("scancap", cfg.ClassifyScanCap, "Classifier prefix scan cap in bytes")
	pflag.Int("maxtextlength", cfg.MaxTextLength, "Text value length cap at fill time")
	pflag.Int("workers", cfg.WorkerCount, "Bounded batch worker count (1 keeps input order)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("sufficiency", pflag.Lookup("sufficiency"))
	_ = viper.BindPFlag("prioritysubset", pflag.Lookup("prioritysubset"))
	_ = viper.BindPFlag("scancap", pflag.Lookup("scancap"))
	_ = viper.BindPFlag("maxtextlength", pflag.Lookup("maxtextlength"))
	_ = viper.BindPFlag("workers", pflag.Lookup("workers"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Form Filler - field discovery and safe batch filling for PDF templates\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/templates                # stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/path/to/templates  # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_FILLER_MODE            Server mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_FILLER_HOST            Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_FILLER_PORT            Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_FILLER_DIR             Template directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_FILLER_LOGLEVEL        Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_FILLER_MAXFILESIZE     Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_FILLER_SUFFICIENCY     Discovery sufficiency threshold\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_FILLER_PRIORITYSUBSET  Complex-document fill bound\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_FILLER_WORKERS         Batch worker count\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.TemplateDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.SufficiencyThreshold = viper.GetInt("sufficiency")
	cfg.PrioritySubsetSize = viper.GetInt("prioritysubset")
	cfg.ClassifyScanCap = viper.GetInt("scancap")
	cfg.MaxTextLength = viper.GetInt("maxtextlength")
	cfg.WorkerCount = viper.GetInt("workers")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate template directory
	if c.TemplateDirectory == "" {
		return errors.New("template directory cannot be empty")
	}

	// Check if template directory exists, create if it doesn't
	if _, err := os.Stat(c.TemplateDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.TemplateDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create template directory %s: %w", c.TemplateDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access template directory %s: %w", c.TemplateDirectory, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate engine tuning
	if c.SufficiencyThreshold < 1 {
		return errors.New("sufficiency threshold must be at least 1")
	}
	if c.PrioritySubsetSize < 1 {
		return errors.New("priority subset size must be at least 1")
	}
	if c.ClassifyScanCap < 1024 {
		return errors.New("classifier scan cap must be at least 1024 bytes")
	}
	if c.MaxTextLength < 1 {
		return errors.New("maximum text length must be positive")
	}
	if c.WorkerCount < 1 {
		return errors.New("worker count must be at least 1")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, TemplateDirectory: %s, LogLevel: %s, MaxFileSize: %d, Workers: %d}",
		c.Mode, c.Host, c.Port, c.TemplateDirectory, c.LogLevel, c.MaxFileSize, c.WorkerCount)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
