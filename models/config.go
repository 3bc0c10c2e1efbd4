// Package models defines the data structures shared across the pipeline:
// documents, runtime configuration, and the YAML config file format.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the upstream service limits for the free-tier model.
const (
	DefaultModel       = "google/gemma-2-9b-it:free"
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultTokenBudget = 8000
	DefaultWorkers     = 4
	DefaultTimeoutSec  = 60
	DefaultRate        = 1.0

	// Response caps for the two summary calls.
	DefaultSummaryMaxTokens = 1000
	DefaultMasterMaxTokens  = 2000
)

// DefaultExtensions is the extension set processed when no override is
// configured. Anything else is skipped during folder walks and rejected by
// the registry with an unsupported-format error.
var DefaultExtensions = []string{
	".txt", ".md", ".csv", ".pdf", ".docx", ".doc",
	".rtf", ".xlsx", ".xls", ".html", ".htm",
}

// RunConfig holds everything a pipeline run needs. All values come from CLI
// flags, environment fallbacks, or the optional YAML config file; core
// packages never read configuration themselves.
type RunConfig struct {
	Model   string
	APIKey  string
	BaseURL string

	Workers     int
	TokenBudget int

	SummaryMaxTokens int
	MasterMaxTokens  int

	Timeout time.Duration
	Rate    float64

	Extensions []string

	// Output controls.
	OutputPath string
	NoSave     bool
	Stdout     bool

	// ResultsDir is the root for run directories and the history DB.
	ResultsDir string
}

// FileConfig is the YAML config file surface (--config). Flags win over
// file values; file values win over built-in defaults.
type FileConfig struct {
	Model       string   `yaml:"model,omitempty"`
	APIKey      string   `yaml:"api_key,omitempty"`
	BaseURL     string   `yaml:"base_url,omitempty"`
	Workers     int      `yaml:"workers,omitempty"`
	TokenBudget int      `yaml:"max_tokens,omitempty"`
	TimeoutSec  int      `yaml:"timeout,omitempty"`
	Rate        float64  `yaml:"rate,omitempty"`
	Extensions  []string `yaml:"extensions,omitempty"`
	ResultsDir  string   `yaml:"results_dir,omitempty"`

	DriveAPIKey string `yaml:"drive_api_key,omitempty"`
	DriveFolder string `yaml:"drive_folder,omitempty"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}
