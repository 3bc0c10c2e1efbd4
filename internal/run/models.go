package run

import (
	"github.com/tovenaar/docsum/models"
	"github.com/tovenaar/docsum/pkg/lang"
)

// Job carries one document into the worker pool. Index is the
// document's position in the listed batch.
type Job struct {
	Index int
	Doc   models.Document
}

// Result holds the outcome of a processed document. Results are slotted
// back by Index so report order matches listing order regardless of
// which worker finished first.
type Result struct {
	Index           int
	Doc             models.Document
	ContentHash     string
	Summary         string
	Truncated       bool
	EstimatedTokens int
	WordCounts      map[string]int
	Language        lang.Result
	LangOK          bool
	Error           error
	ErrorKind       string
}

// DocDetails is one document's row in run-details.yaml. The field set is
// documented in FIELDS.yaml at the results root.
type DocDetails struct {
	Filename  string `yaml:"filename"`
	Type      string `yaml:"type"`
	Status    string `yaml:"status"`
	ErrorType string `yaml:"error_type,omitempty"`
	Error     string `yaml:"error,omitempty"`

	SizeBytes       int64 `yaml:"size_bytes"`
	EstimatedTokens int   `yaml:"estimated_tokens,omitempty"`
	Truncated       bool  `yaml:"truncated,omitempty"`
	SummaryChars    int   `yaml:"summary_chars,omitempty"`

	Language           string  `yaml:"language,omitempty"`
	LanguageConfidence float64 `yaml:"language_confidence,omitempty"`

	TopKeywords []string `yaml:"top_keywords,omitempty"`
}

// FailedDoc represents a document that produced no summary.
type FailedDoc struct {
	Filename     string `yaml:"filename"`
	Type         string `yaml:"type"`
	ErrorType    string `yaml:"error_type"` // extraction kind, llm kind, read_error, cancelled
	ErrorMessage string `yaml:"error_message"`
}

// FailedDocs wraps the list of failed documents for YAML output.
type FailedDocs struct {
	FailedDocs []FailedDoc `yaml:"failed_docs"`
}
