package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/tovenaar/docsum/pkg/mapreduce"
	"github.com/tovenaar/docsum/pkg/report"
)

// topKeywordLimit caps the keyword lists in run-details.yaml, the
// database rows, and the console summary.
const topKeywordLimit = 10

// buildUnits maps worker results onto report units in batch order.
func buildUnits(results []Result) []report.Unit {
	units := make([]report.Unit, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			units = append(units, report.Failure(r.Doc.Name, r.Doc.Ext(), r.Doc.Size, r.Error.Error()))
			continue
		}
		units = append(units, report.Success(r.Doc.Name, r.Doc.Ext(), r.Doc.Size, r.Summary))
	}
	return units
}

// BuildDetails shapes one result into its run-details.yaml row.
func BuildDetails(r Result) DocDetails {
	details := DocDetails{
		Filename:  r.Doc.Name,
		Type:      r.Doc.Ext(),
		SizeBytes: r.Doc.Size,
	}

	if r.Error != nil {
		details.Status = report.StatusFailed
		details.ErrorType = r.ErrorKind
		details.Error = r.Error.Error()
		return details
	}

	details.Status = report.StatusSuccess
	details.EstimatedTokens = r.EstimatedTokens
	details.Truncated = r.Truncated
	details.SummaryChars = len(r.Summary)
	if r.LangOK {
		details.Language = r.Language.Code
		details.LanguageConfidence = r.Language.Confidence
	}
	details.TopKeywords = mapreduce.TopKeywords(r.WordCounts, topKeywordLimit)

	return details
}

// WriteDetailsToRun writes run-details.yaml with one row per document,
// in batch order.
func WriteDetailsToRun(results []Result, runDir string) error {
	details := make([]DocDetails, 0, len(results))
	for _, r := range results {
		details = append(details, BuildDetails(r))
	}

	yamlBytes, err := yaml.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal details to YAML: %w", err)
	}

	outputPath := filepath.Join(runDir, "run-details.yaml")
	if err := os.WriteFile(outputPath, yamlBytes, 0600); err != nil {
		return fmt.Errorf("failed to write details file: %w", err)
	}

	return nil
}

// collectFailedDocs extracts the failures from results for failed-docs.yaml.
func collectFailedDocs(results []Result) []FailedDoc {
	var failed []FailedDoc

	for _, r := range results {
		if r.Error == nil {
			continue
		}
		failedDoc := FailedDoc{
			Filename:     r.Doc.Name,
			Type:         r.Doc.Ext(),
			ErrorType:    r.ErrorKind,
			ErrorMessage: r.Error.Error(),
		}

		// Classify from the message when no typed kind survived.
		if failedDoc.ErrorType == "" {
			errMsg := strings.ToLower(r.Error.Error())
			switch {
			case strings.Contains(errMsg, "timeout"):
				failedDoc.ErrorType = "timeout"
			case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network"):
				failedDoc.ErrorType = "model_unavailable"
			case strings.Contains(errMsg, "extract") || strings.Contains(errMsg, "parse"):
				failedDoc.ErrorType = "corrupt_input"
			default:
				failedDoc.ErrorType = "unknown_error"
			}
		}

		failed = append(failed, failedDoc)
	}

	return failed
}

// WriteFailedDocsToRun writes failed-docs.yaml in the run directory.
// Nothing is written when every document succeeded.
func WriteFailedDocsToRun(failed []FailedDoc, runDir string) error {
	if len(failed) == 0 {
		return nil
	}

	failedDocs := FailedDocs{FailedDocs: failed}

	yamlBytes, err := yaml.Marshal(&failedDocs)
	if err != nil {
		return fmt.Errorf("failed to marshal failed docs to YAML: %w", err)
	}

	outputPath := filepath.Join(runDir, "failed-docs.yaml")
	if err := os.WriteFile(outputPath, yamlBytes, 0600); err != nil {
		return fmt.Errorf("failed to write failed docs file: %w", err)
	}

	return nil
}

// formatKeywordsAsJSON formats word counts as a JSON array for database
// storage, e.g. ["budget:4","revenue:3"].
func formatKeywordsAsJSON(counts map[string]int, limit int) string {
	keywords := mapreduce.TopKeywords(counts, limit)
	if len(keywords) == 0 {
		return ""
	}
	jsonBytes, err := json.Marshal(keywords)
	if err != nil {
		return ""
	}
	return string(jsonBytes)
}

// printReport renders the console summary: the statistics block, the
// file type histogram, corpus keywords, then the master summary.
func printReport(rep *report.Report, totalWordCounts map[string]int) {
	banner := strings.Repeat("=", 60)

	fmt.Printf("\n%s\n", banner)
	fmt.Println("SUMMARY REPORT")
	fmt.Printf("%s\n\n", banner)

	stats := rep.Statistics
	fmt.Printf("Total Documents: %d\n", stats.TotalDocuments)
	fmt.Printf("Successful Summaries: %d\n", stats.SuccessfulSummaries)
	fmt.Printf("Failed Summaries: %d\n", stats.FailedSummaries)
	fmt.Printf("Total Size: %s bytes\n", humanize.Comma(stats.TotalSizeBytes))

	if len(stats.FileTypes) > 0 {
		fmt.Println("\nFile Types:")
		for _, fileType := range sortedTypes(stats.FileTypes) {
			fmt.Printf("  %s: %d\n", fileType, stats.FileTypes[fileType])
		}
	}

	if len(totalWordCounts) > 0 {
		fmt.Println("\nTop Keywords:")
		mapreduce.PrintTopKeywords(totalWordCounts, topKeywordLimit)
	}

	fmt.Printf("\n%s\n", banner)
	fmt.Println("MASTER SUMMARY")
	fmt.Printf("%s\n\n", banner)
	fmt.Println(rep.MasterSummary)
	fmt.Printf("\n%s\n\n", banner)
}

// sortedTypes returns histogram keys in stable alphabetical order.
func sortedTypes(histogram map[string]int) []string {
	types := make([]string, 0, len(histogram))
	for fileType := range histogram {
		types = append(types, fileType)
	}
	sort.Strings(types)
	return types
}
