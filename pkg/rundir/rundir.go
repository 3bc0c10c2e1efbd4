// Package rundir manages the on-disk layout of summarization runs: one
// directory per run under the results root, plus an index.yaml listing
// every run for quick scanning.
package rundir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Info represents metadata about a summarization run.
type Info struct {
	RunID       int64     `yaml:"run_id"`
	Created     time.Time `yaml:"created"`
	DocCount    int       `yaml:"doc_count"`
	Success     int       `yaml:"success"`
	Failed      int       `yaml:"failed"`
	Model       string    `yaml:"model,omitempty"`
	Source      string    `yaml:"source,omitempty"`
	RunDir      string    `yaml:"run_dir"`
	DocsPreview []string  `yaml:"docs_preview,omitempty"` // First 3 document names
}

// Index represents the index.yaml file at the results root.
type Index struct {
	Runs []Info `yaml:"runs"`
}

// Dir returns the full path of a run directory. relDir is the
// database-assigned name relative to the results root ("runs/<date>-<id>").
func Dir(baseDir, relDir string) string {
	return filepath.Join(baseDir, relDir)
}

// IndexPath returns the path to the runs index file (at results root).
func IndexPath(baseDir string) string {
	return filepath.Join(baseDir, "index.yaml")
}

// EnsureDir creates the run directory structure if it doesn't exist.
func EnsureDir(baseDir, relDir string) error {
	if err := os.MkdirAll(Dir(baseDir, relDir), 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	return nil
}

// UpdateIndex adds or updates a run entry in index.yaml.
func UpdateIndex(baseDir string, info Info) error {
	indexPath := IndexPath(baseDir)

	// Read existing index
	var index Index
	data, err := os.ReadFile(indexPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read runs index: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &index); err != nil {
			return fmt.Errorf("failed to parse runs index: %w", err)
		}
	}

	// Check if run already exists in index
	found := false
	for i, r := range index.Runs {
		if r.RunID == info.RunID {
			// Update existing entry
			index.Runs[i] = info
			found = true
			break
		}
	}

	if !found {
		// Append new entry
		index.Runs = append(index.Runs, info)
	}

	// Newest first
	sort.Slice(index.Runs, func(i, j int) bool {
		return index.Runs[i].RunID > index.Runs[j].RunID
	})

	// Write updated index
	output, err := yaml.Marshal(&index)
	if err != nil {
		return fmt.Errorf("failed to marshal runs index: %w", err)
	}

	if err := os.WriteFile(indexPath, output, 0644); err != nil {
		return fmt.Errorf("failed to write runs index: %w", err)
	}

	return nil
}

// DocsPreview returns the first N document names from a list for preview
// purposes.
func DocsPreview(names []string, n int) []string {
	if len(names) <= n {
		return names
	}
	return names[:n]
}

// WriteFieldsReference creates the FIELDS.yaml reference file documenting
// the run-details.yaml row format. Existing files are left untouched.
func WriteFieldsReference(baseDir string) error {
	fieldsPath := filepath.Join(baseDir, "FIELDS.yaml")

	// Check if file already exists
	if _, err := os.Stat(fieldsPath); err == nil {
		// File exists, don't overwrite
		return nil
	}

	content := `# Run Details Fields Reference (LLM-Optimized)
# Auto-generated field documentation for docsum run output

fields:
  # Status & Basic Info
  filename: string
  type: string (file extension, e.g. ".pdf")
  status: [success, failed]
  error_type: [unsupported_format, corrupt_input, dependency_missing, empty_content, rate_limited, auth_failed, model_unavailable, timeout, malformed_response, read_error, cancelled]
  error: string (only if failed)

  # Content Metrics
  size_bytes: int
  estimated_tokens: int (chars / 4, after truncation)
  truncated: bool (content was cut to the token budget)
  summary_chars: int (length of the generated summary)

  # Language Detection
  language: string (ISO-639-1 code: en, es, fr, de, etc)
  language_confidence: float (0-1)

  # Keywords
  top_keywords: ["word:count", ...] (stopword-filtered, per document)

query_examples:
  - desc: Failed documents only
    yq: '.[] | select(.status == "failed")'

  - desc: Documents that hit the token budget
    yq: '.[] | select(.truncated)'

  - desc: Large documents worth splitting
    yq: '.[] | select(.size_bytes > 1000000)'

  - desc: Non-English documents
    yq: '.[] | select(.language != "en" and .language_confidence > 0.8)'

  - desc: Extraction failures (bad files, not LLM errors)
    yq: '.[] | select(.error_type == "corrupt_input" or .error_type == "unsupported_format")'

usage:
  summary_report: summary_report.json per run (the report contract)
  run_details: run-details.yaml per run (these fields, all documents)
  failed_docs: failed-docs.yaml per run (only when failures occurred)
  location: docsum-results/runs/{date}-{id}/
  run_index: docsum-results/index.yaml (list all runs)
`

	if err := os.WriteFile(fieldsPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write FIELDS.yaml: %w", err)
	}

	return nil
}
