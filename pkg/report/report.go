// Package report assembles the structured summary report: one unit per
// document, statistics derived from the units, and the master summary
// on top.
package report

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Unit is one document's outcome. For failed documents the Summary
// field carries the failure message in place of a summary.
type Unit struct {
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	Summary  string `json:"summary"`
	Status   string `json:"summary_status"`
}

// normalizeType keeps unit types aligned with the histogram keys:
// extension-less documents are reported as "unknown" in both places.
func normalizeType(fileType string) string {
	if fileType == "" {
		return "unknown"
	}
	return fileType
}

// Success builds a unit for a summarized document.
func Success(filename, fileType string, size int64, summary string) Unit {
	return Unit{Filename: filename, Type: normalizeType(fileType), Size: size, Summary: summary, Status: StatusSuccess}
}

// Failure builds a unit for a document that produced no summary.
func Failure(filename, fileType string, size int64, reason string) Unit {
	return Unit{
		Filename: filename,
		Type:     normalizeType(fileType),
		Size:     size,
		Summary:  "Error generating summary: " + reason,
		Status:   StatusFailed,
	}
}

// Statistics summarizes a unit slice. Derive it with Compute and
// replace the whole value; never adjust individual counters in place.
type Statistics struct {
	TotalDocuments      int            `json:"total_documents"`
	SuccessfulSummaries int            `json:"successful_summaries"`
	FailedSummaries     int            `json:"failed_summaries"`
	TotalSizeBytes      int64          `json:"total_size_bytes"`
	FileTypes           map[string]int `json:"file_types"`
}

// Compute derives statistics from scratch over the full unit slice.
func Compute(units []Unit) Statistics {
	stats := Statistics{FileTypes: make(map[string]int)}
	for _, u := range units {
		stats.TotalDocuments++
		if u.Status == StatusSuccess {
			stats.SuccessfulSummaries++
		} else {
			stats.FailedSummaries++
		}
		stats.TotalSizeBytes += u.Size
		stats.FileTypes[normalizeType(u.Type)]++
	}
	return stats
}

// Metadata records when and with which model a report was generated.
type Metadata struct {
	GeneratedAt string `json:"generated_at"`
	ModelUsed   string `json:"model_used"`
}

// Report is the full structured output of a run.
type Report struct {
	MasterSummary       string     `json:"master_summary"`
	Statistics          Statistics `json:"statistics"`
	IndividualSummaries []Unit     `json:"individual_summaries"`
	Metadata            Metadata   `json:"metadata"`
}

// Build assembles a report from the unit slice. It copies units and
// leaves the input untouched.
func Build(units []Unit, master, model string, now time.Time) *Report {
	list := make([]Unit, len(units))
	copy(list, units)
	return &Report{
		MasterSummary:       master,
		Statistics:          Compute(units),
		IndividualSummaries: list,
		Metadata: Metadata{
			GeneratedAt: now.Format(time.RFC3339),
			ModelUsed:   model,
		},
	}
}

// CombinedSummaries renders the successful summaries as one markdown
// block for master synthesis. Numbering follows each document's
// position in the full unit slice, so failed documents leave gaps.
func CombinedSummaries(units []Unit) string {
	var b strings.Builder
	b.WriteString("# Document Summaries\n\n")
	for i, u := range units {
		if u.Status != StatusSuccess {
			continue
		}
		fmt.Fprintf(&b, "## Document %d: %s\n%s\n\n", i+1, u.Filename, u.Summary)
	}
	return b.String()
}
