package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleUnits() []Unit {
	return []Unit{
		Success("a.txt", ".txt", 100, "Summary of a."),
		Failure("b.pdf", ".pdf", 2000, "extraction failed"),
		Success("c.txt", ".txt", 300, "Summary of c."),
		Success("noext", "", 50, "Summary of noext."),
	}
}

func TestComputeStatistics(t *testing.T) {
	stats := Compute(sampleUnits())

	if stats.TotalDocuments != 4 {
		t.Errorf("TotalDocuments = %d, want 4", stats.TotalDocuments)
	}
	if stats.SuccessfulSummaries != 3 {
		t.Errorf("SuccessfulSummaries = %d, want 3", stats.SuccessfulSummaries)
	}
	if stats.FailedSummaries != 1 {
		t.Errorf("FailedSummaries = %d, want 1", stats.FailedSummaries)
	}
	if stats.TotalSizeBytes != 2450 {
		t.Errorf("TotalSizeBytes = %d, want 2450", stats.TotalSizeBytes)
	}
	if stats.FileTypes[".txt"] != 2 || stats.FileTypes[".pdf"] != 1 || stats.FileTypes["unknown"] != 1 {
		t.Errorf("FileTypes = %v", stats.FileTypes)
	}
}

func TestUnitTypeMatchesHistogramKey(t *testing.T) {
	units := []Unit{
		Success("noext", "", 50, "Summary of noext."),
		Failure("alsonone", "", 20, "extraction failed"),
	}
	stats := Compute(units)

	for _, u := range units {
		if u.Type == "" {
			t.Errorf("%s: unit type should be normalized, got empty", u.Filename)
		}
		if _, ok := stats.FileTypes[u.Type]; !ok {
			t.Errorf("%s: type %q missing from histogram %v", u.Filename, u.Type, stats.FileTypes)
		}
	}
	if stats.FileTypes["unknown"] != 2 {
		t.Errorf(`FileTypes["unknown"] = %d, want 2`, stats.FileTypes["unknown"])
	}
}

func TestFailureUnit(t *testing.T) {
	u := Failure("b.pdf", ".pdf", 10, "model_unavailable")
	if u.Status != StatusFailed {
		t.Errorf("Status = %q, want %q", u.Status, StatusFailed)
	}
	if u.Summary != "Error generating summary: model_unavailable" {
		t.Errorf("Summary = %q", u.Summary)
	}
}

func TestBuildReportJSON(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	r := Build(sampleUnits(), "Overall synthesis.", "test/model-a", now)

	data, err := Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got struct {
		MasterSummary string `json:"master_summary"`
		Statistics    struct {
			TotalDocuments      int            `json:"total_documents"`
			SuccessfulSummaries int            `json:"successful_summaries"`
			FailedSummaries     int            `json:"failed_summaries"`
			TotalSizeBytes      int64          `json:"total_size_bytes"`
			FileTypes           map[string]int `json:"file_types"`
		} `json:"statistics"`
		IndividualSummaries []struct {
			Filename string `json:"filename"`
			Type     string `json:"type"`
			Size     int64  `json:"size"`
			Summary  string `json:"summary"`
			Status   string `json:"summary_status"`
		} `json:"individual_summaries"`
		Metadata struct {
			GeneratedAt string `json:"generated_at"`
			ModelUsed   string `json:"model_used"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("report does not round-trip: %v", err)
	}

	if got.MasterSummary != "Overall synthesis." {
		t.Errorf("master_summary = %q", got.MasterSummary)
	}
	if got.Statistics.TotalDocuments != 4 || got.Statistics.FailedSummaries != 1 {
		t.Errorf("statistics = %+v", got.Statistics)
	}
	if len(got.IndividualSummaries) != 4 {
		t.Fatalf("individual_summaries has %d entries, want 4", len(got.IndividualSummaries))
	}
	if got.IndividualSummaries[1].Status != StatusFailed {
		t.Errorf("entry 1 status = %q", got.IndividualSummaries[1].Status)
	}
	if got.Metadata.GeneratedAt != "2025-03-14T09:30:00Z" {
		t.Errorf("generated_at = %q", got.Metadata.GeneratedAt)
	}
	if got.Metadata.ModelUsed != "test/model-a" {
		t.Errorf("model_used = %q", got.Metadata.ModelUsed)
	}
}

func TestBuildEmptyUnits(t *testing.T) {
	r := Build(nil, "No documents to summarize", "m", time.Now())
	data, err := Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"individual_summaries": []`) {
		t.Errorf("empty unit list should marshal as [], got:\n%s", data)
	}
}

func TestCombinedSummariesNumbering(t *testing.T) {
	units := []Unit{
		Success("a.txt", ".txt", 1, "First."),
		Failure("b.txt", ".txt", 1, "boom"),
		Success("c.txt", ".txt", 1, "Third."),
	}
	combined := CombinedSummaries(units)

	if !strings.HasPrefix(combined, "# Document Summaries\n\n") {
		t.Errorf("missing header:\n%s", combined)
	}
	if !strings.Contains(combined, "## Document 1: a.txt\nFirst.\n") {
		t.Errorf("missing first block:\n%s", combined)
	}
	if !strings.Contains(combined, "## Document 3: c.txt\nThird.\n") {
		t.Errorf("numbering should follow list position:\n%s", combined)
	}
	if strings.Contains(combined, "Document 2") {
		t.Errorf("failed document should be skipped:\n%s", combined)
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "summary_report.json")
	r := Build(sampleUnits(), "Overall.", "m", time.Now())

	if err := (FileSink{Path: path}).Write(r); err != nil {
		t.Fatalf("FileSink.Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	var round Report
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("written report is not valid JSON: %v", err)
	}
	if round.MasterSummary != "Overall." {
		t.Errorf("master_summary = %q", round.MasterSummary)
	}
}

func TestStdoutSink(t *testing.T) {
	var buf bytes.Buffer
	r := Build(nil, "Nothing.", "m", time.Now())

	if err := (StdoutSink{Out: &buf}).Write(r); err != nil {
		t.Fatalf("StdoutSink.Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"master_summary": "Nothing."`) {
		t.Errorf("stdout output missing report:\n%s", buf.String())
	}
}
