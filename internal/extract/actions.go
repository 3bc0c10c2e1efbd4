package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tovenaar/docsum/internal/common"
	"github.com/tovenaar/docsum/models"
	"github.com/tovenaar/docsum/pkg/analytics"
	"github.com/tovenaar/docsum/pkg/chunk"
	extractpkg "github.com/tovenaar/docsum/pkg/extract"
	"github.com/tovenaar/docsum/pkg/lang"
	"github.com/tovenaar/docsum/pkg/mapreduce"
)

// keywordLimit caps the per-file keyword list in stats output.
const keywordLimit = 10

// FileSummary is the per-file output of extract --stats.
type FileSummary struct {
	File      string `json:"file"`
	Type      string `json:"type"`
	Strategy  string `json:"strategy,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`

	SizeBytes       int64    `json:"size_bytes,omitempty"`
	Chars           int      `json:"chars,omitempty"`
	EstimatedTokens int      `json:"estimated_tokens,omitempty"`
	Language        string   `json:"language,omitempty"`
	TopKeywords     []string `json:"top_keywords,omitempty"`
}

// ExtractAction runs text extraction without the summarization stage:
// useful for checking what the pipeline would feed the model, and for
// shell pipelines that only need the text.
func ExtractAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	patterns := common.SplitRefs(c.String("files"))
	if len(patterns) == 0 {
		return fmt.Errorf("no input files provided with --files flag")
	}

	var filePaths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			logger.Warn("error matching glob pattern, skipping", "pattern", pattern, "error", err)
			continue
		}
		filePaths = append(filePaths, matches...)
	}
	if len(filePaths) == 0 {
		return fmt.Errorf("no files found matching glob patterns")
	}

	registry := extractpkg.Default()
	statsMode := c.Bool("stats") || c.IsSet("fields")

	if !statsMode {
		return printExtractedText(logger, registry, filePaths)
	}

	policy := chunk.DefaultPolicy()
	detector := lang.NewDetector()
	analyzer := &analytics.Analytics{}

	summaries := make([]FileSummary, 0, len(filePaths))
	for _, path := range filePaths {
		doc := models.Document{Name: filepath.Base(path), Path: path}
		if info, err := os.Stat(path); err == nil {
			doc.Size = info.Size()
		}

		summary := FileSummary{File: path, Type: doc.Ext(), SizeBytes: doc.Size}
		text, strategy, err := registry.Extract(doc)
		if err != nil {
			summary.Status = "failed"
			summary.Strategy = strategy
			summary.Error = err.Error()
			summary.ErrorType = string(extractpkg.KindOf(err))
			summaries = append(summaries, summary)
			continue
		}

		summary.Status = "success"
		summary.Strategy = strategy
		summary.Chars = len(text)
		summary.EstimatedTokens = policy.EstimateTokens(text)
		if detected, ok := detector.Detect(text); ok {
			summary.Language = detected.Code
		}
		summary.TopKeywords = mapreduce.TopKeywords(mapreduce.Map(text, analyzer), keywordLimit)
		summaries = append(summaries, summary)
	}

	var outputData []byte
	var err error
	if fieldsStr := c.String("fields"); fieldsStr != "" {
		filtered := make([]map[string]interface{}, 0, len(summaries))
		for _, s := range summaries {
			filtered = append(filtered, common.FilterResultFields(s, fieldsStr))
		}
		outputData, err = json.MarshalIndent(filtered, "", "  ")
	} else {
		outputData, err = json.MarshalIndent(summaries, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(outputData))
	return nil
}

// printExtractedText writes each file's plain text to stdout, with
// tail-style headers when more than one file is named.
func printExtractedText(logger *slog.Logger, registry *extractpkg.Registry, filePaths []string) error {
	failed := 0
	for i, path := range filePaths {
		doc := models.Document{Name: filepath.Base(path), Path: path}
		text, _, err := registry.Extract(doc)
		if err != nil {
			logger.Error("Failed to extract text", "file", path, "error", err)
			failed++
			continue
		}
		if len(filePaths) > 1 {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("==> %s <==\n", path)
		}
		fmt.Println(text)
	}
	if failed == len(filePaths) {
		return fmt.Errorf("no text extracted from %d file(s)", failed)
	}
	return nil
}

// FormatsAction lists the registered extraction strategies and how the
// default extension set dispatches onto them.
func FormatsAction(c *cli.Context) error {
	registry := extractpkg.Default()

	fmt.Println("Strategies (priority order):")
	names := make([]string, 0, len(registry.Strategies()))
	for _, s := range registry.Strategies() {
		names = append(names, s.Name())
	}
	fmt.Printf("  %s\n", strings.Join(names, ", "))

	fmt.Println("\nExtension dispatch:")
	for _, ext := range models.DefaultExtensions {
		s := registry.Resolve(models.Document{Name: "probe" + ext})
		name := "-"
		if s != nil {
			name = s.Name()
		}
		fmt.Printf("  %-6s -> %s\n", ext, name)
	}

	fmt.Println("\nDocuments without a matching extension are sniffed from",
		"their leading bytes (PDF, ZIP containers, RTF, HTML, plain text).")
	return nil
}
