package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/TenderScope/internal/analysis"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Backend BackendConfig `yaml:"backend" json:"backend"`
	Handoff HandoffConfig `yaml:"handoff" json:"handoff"`
	Results ResultsConfig `yaml:"results" json:"results"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Mock    MockConfig    `yaml:"mock" json:"mock"`
}

// BackendConfig configures the analysis backend connection
type BackendConfig struct {
	BaseURL    string        `yaml:"base_url" json:"base_url"`
	RunPath    string        `yaml:"run_path" json:"run_path"`       // analysis trigger endpoint
	HealthPath string        `yaml:"health_path" json:"health_path"` // reachability check
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`         // bound on a single call
	UserAgent  string        `yaml:"user_agent" json:"user_agent"`
}

// HandoffConfig configures the side channel between trigger and results
type HandoffConfig struct {
	Driver string `yaml:"driver" json:"driver"` // file|sqlite|memory
	Dir    string `yaml:"dir" json:"dir"`       // directory for file and sqlite drivers
}

// ResultsConfig configures how the results view gets and lays out data
type ResultsConfig struct {
	Source         string `yaml:"source" json:"source"`                     // refetch|handoff|auto
	Columns        string `yaml:"columns" json:"columns"`                   // first|union
	MaxColumnWidth int    `yaml:"max_column_width" json:"max_column_width"` // 0 disables wrapping
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|text|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Theme         string `yaml:"theme" json:"theme"`                   // default|high-contrast|minimal
	Emoji         bool   `yaml:"emoji" json:"emoji"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug|info|warn|error
	Format string `yaml:"format" json:"format"` // console|json
	File   string `yaml:"file" json:"file"`     // empty means stderr
}

// MockConfig configures the local mock backend
type MockConfig struct {
	Addr       string        `yaml:"addr" json:"addr"`
	Fixture    string        `yaml:"fixture" json:"fixture"`   // JSON or YAML body file
	Scenario   string        `yaml:"scenario" json:"scenario"` // used when no fixture is set
	Delay      time.Duration `yaml:"delay" json:"delay"`
	FailStatus int           `yaml:"fail_status" json:"fail_status"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Backend: BackendConfig{
			BaseURL:    analysis.DefaultBaseURL,
			RunPath:    analysis.DefaultRunPath,
			HealthPath: analysis.DefaultHealthPath,
			Timeout:    analysis.DefaultTimeout,
			UserAgent:  analysis.DefaultUserAgent,
		},
		Handoff: HandoffConfig{
			Driver: "file",
			Dir:    "~/.cache/tenderscope",
		},
		Results: ResultsConfig{
			Source:         "refetch",
			Columns:        "first",
			MaxColumnWidth: 48,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Theme:         "default",
			Emoji:         true,
			Verbose:       false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Mock: MockConfig{
			Addr:     ":8000",
			Scenario: "completed",
		},
	}
}

// ClientConfig derives the HTTP client settings
func (c *Config) ClientConfig() *analysis.ClientConfig {
	return &analysis.ClientConfig{
		BaseURL:    c.Backend.BaseURL,
		RunPath:    c.Backend.RunPath,
		HealthPath: c.Backend.HealthPath,
		Timeout:    c.Backend.Timeout,
		UserAgent:  c.Backend.UserAgent,
	}
}

// HandoffDir returns the handoff directory with ~ expanded
func (c *Config) HandoffDir() string {
	return expandPath(c.Handoff.Dir)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateBackendConfig,
		c.validateHandoffConfig,
		c.validateResultsConfig,
		c.validateOutputConfig,
		c.validateLogConfig,
		c.validateMockConfig,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateBackendConfig validates backend connection settings
func (c *Config) validateBackendConfig() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid backend base_url: %q", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend base_url scheme: %s (must be http or https)", u.Scheme)
	}
	if c.Backend.RunPath == "" {
		return fmt.Errorf("backend run_path cannot be empty")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be greater than 0")
	}
	return nil
}

// validateHandoffConfig validates handoff storage settings
func (c *Config) validateHandoffConfig() error {
	if err := oneOf("handoff driver", c.Handoff.Driver, "file", "sqlite", "memory"); err != nil {
		return err
	}
	if c.Handoff.Driver != "memory" && c.Handoff.Dir == "" {
		return fmt.Errorf("handoff dir is required for the %s driver", c.Handoff.Driver)
	}
	return nil
}

// validateResultsConfig validates results view settings
func (c *Config) validateResultsConfig() error {
	if err := oneOf("results source", c.Results.Source, "refetch", "handoff", "auto"); err != nil {
		return err
	}
	if err := oneOf("column strategy", c.Results.Columns, "first", "union"); err != nil {
		return err
	}
	if c.Results.MaxColumnWidth < 0 {
		return fmt.Errorf("max_column_width must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if err := oneOf("output format", c.Output.DefaultFormat, "json", "text", "markdown", "csv"); err != nil {
		return err
	}
	if err := oneOf("color mode", c.Output.ColorMode, "auto", "always", "never"); err != nil {
		return err
	}
	return oneOf("theme", c.Output.Theme, "default", "high-contrast", "minimal")
}

// validateLogConfig validates logger settings
func (c *Config) validateLogConfig() error {
	if err := oneOf("log level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return oneOf("log format", c.Log.Format, "console", "json")
}

// validateMockConfig validates mock backend settings
func (c *Config) validateMockConfig() error {
	if c.Mock.Delay < 0 {
		return fmt.Errorf("mock delay must be non-negative")
	}
	if c.Mock.FailStatus != 0 && (c.Mock.FailStatus < 400 || c.Mock.FailStatus > 599) {
		return fmt.Errorf("mock fail_status must be 0 or between 400 and 599")
	}
	return oneOf("mock scenario", c.Mock.Scenario,
		"completed", "no_tenders_found", "technical_analysis_failed", "pricing_failed")
}

// oneOf accepts an empty value or one of allowed
func oneOf(name, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s: %s (must be one of: %s)", name, value, strings.Join(allowed, ", "))
}

