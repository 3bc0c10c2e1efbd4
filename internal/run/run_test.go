package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tovenaar/docsum/models"
	"github.com/tovenaar/docsum/pkg/analytics"
	"github.com/tovenaar/docsum/pkg/chunk"
	"github.com/tovenaar/docsum/pkg/extract"
	"github.com/tovenaar/docsum/pkg/lang"
	"github.com/tovenaar/docsum/pkg/llm"
	"github.com/tovenaar/docsum/pkg/report"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestPipeline(t *testing.T, baseURL string) *pipeline {
	t.Helper()
	client, err := llm.New(llm.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		Rate:    1000,
	})
	if err != nil {
		t.Fatalf("llm.New() error = %v", err)
	}
	return &pipeline{
		registry:  extract.Default(),
		detector:  lang.NewDetector(),
		analyzer:  &analytics.Analytics{},
		policy:    chunk.DefaultPolicy(),
		client:    client,
		maxTokens: 100,
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "flaky.txt") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"a concise summary"}}]}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	body := strings.Repeat("The quarterly budget review covers revenue and spending. ", 4)
	goodPath := filepath.Join(dir, "good.txt")
	if err := os.WriteFile(goodPath, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	docs := []models.Document{
		{Name: "good.txt", Path: goodPath},
		{Name: "binary.xyz", Content: []byte{0x00, 0x01, 0x02}, Size: 3},
		{Name: "flaky.txt", Content: []byte(body), Size: int64(len(body))},
	}

	p := newTestPipeline(t, srv.URL)
	results, wordCounts := run(context.Background(), testLogger(), p, docs, 2)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d, batch order lost", i, r.Index)
		}
	}

	if results[0].Error != nil {
		t.Fatalf("good.txt error = %v", results[0].Error)
	}
	if results[0].Summary != "a concise summary" {
		t.Errorf("good.txt summary = %q", results[0].Summary)
	}
	if results[0].ContentHash == "" {
		t.Error("good.txt has no content hash")
	}
	if results[0].EstimatedTokens == 0 {
		t.Error("good.txt has no token estimate")
	}

	if results[1].Error == nil {
		t.Fatal("binary.xyz should fail extraction")
	}
	if results[1].ErrorKind != "unsupported_format" {
		t.Errorf("binary.xyz error kind = %q, want unsupported_format", results[1].ErrorKind)
	}

	if results[2].Error == nil {
		t.Fatal("flaky.txt should fail summarization")
	}
	if results[2].ErrorKind != "auth_failed" {
		t.Errorf("flaky.txt error kind = %q, want auth_failed", results[2].ErrorKind)
	}

	if wordCounts["budget"] == 0 {
		t.Errorf("reduced word counts missing budget: %v", wordCounts)
	}
}

func TestProcessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &pipeline{}
	result := p.process(ctx, 1, testLogger(), Job{Index: 0, Doc: models.Document{Name: "a.txt"}})

	if result.ErrorKind != "cancelled" {
		t.Errorf("error kind = %q, want cancelled", result.ErrorKind)
	}
	if result.Error == nil || result.Error.Error() != "cancelled" {
		t.Errorf("error = %v, want cancelled", result.Error)
	}
}

func TestProcessReadError(t *testing.T) {
	doc := models.Document{Name: "missing.txt", Path: filepath.Join(t.TempDir(), "missing.txt")}

	p := &pipeline{}
	result := p.process(context.Background(), 1, testLogger(), Job{Doc: doc})

	if result.Error == nil {
		t.Fatal("process() with a missing file should fail")
	}
	if result.ErrorKind != "read_error" {
		t.Errorf("error kind = %q, want read_error", result.ErrorKind)
	}
}

func TestBuildUnits(t *testing.T) {
	results := []Result{
		{Doc: models.Document{Name: "a.txt", Size: 10}, Summary: "fine"},
		{Doc: models.Document{Name: "b.pdf", Size: 20}, Error: errors.New("boom"), ErrorKind: "corrupt_input"},
	}

	units := buildUnits(results)
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	if units[0].Status != report.StatusSuccess || units[0].Summary != "fine" {
		t.Errorf("units[0] = %+v", units[0])
	}
	if units[0].Type != ".txt" {
		t.Errorf("units[0].Type = %q, want .txt", units[0].Type)
	}
	if units[1].Status != report.StatusFailed {
		t.Errorf("units[1].Status = %q", units[1].Status)
	}
	if units[1].Summary != "Error generating summary: boom" {
		t.Errorf("units[1].Summary = %q", units[1].Summary)
	}
}

func TestBuildDetails(t *testing.T) {
	success := Result{
		Doc:             models.Document{Name: "a.txt", Size: 100},
		Summary:         strings.Repeat("s", 40),
		Truncated:       true,
		EstimatedTokens: 25,
		WordCounts:      map[string]int{"budget": 3},
		Language:        lang.Result{Code: "en", Name: "English", Confidence: 0.97},
		LangOK:          true,
	}

	details := BuildDetails(success)
	if details.Status != "success" {
		t.Errorf("Status = %q", details.Status)
	}
	if details.SummaryChars != 40 {
		t.Errorf("SummaryChars = %d, want 40", details.SummaryChars)
	}
	if !details.Truncated {
		t.Error("Truncated not carried over")
	}
	if details.Language != "en" || details.LanguageConfidence != 0.97 {
		t.Errorf("language = %q (%v)", details.Language, details.LanguageConfidence)
	}
	if len(details.TopKeywords) != 1 || details.TopKeywords[0] != "budget:3" {
		t.Errorf("TopKeywords = %v", details.TopKeywords)
	}

	failed := Result{
		Doc:       models.Document{Name: "b.pdf", Size: 5},
		Error:     errors.New("parser panic"),
		ErrorKind: "corrupt_input",
	}

	fd := BuildDetails(failed)
	if fd.Status != "failed" || fd.ErrorType != "corrupt_input" || fd.Error != "parser panic" {
		t.Errorf("failed details = %+v", fd)
	}
	if fd.SummaryChars != 0 || len(fd.TopKeywords) != 0 {
		t.Errorf("failed details carry success fields: %+v", fd)
	}
}

func TestCollectFailedDocsClassifies(t *testing.T) {
	results := []Result{
		{Doc: models.Document{Name: "ok.txt"}},
		{Doc: models.Document{Name: "bad.pdf"}, Error: errors.New("parser panic"), ErrorKind: "corrupt_input"},
		{Doc: models.Document{Name: "slow.txt"}, Error: errors.New("request timeout exceeded")},
	}

	failed := collectFailedDocs(results)
	if len(failed) != 2 {
		t.Fatalf("got %d failed docs, want 2", len(failed))
	}
	if failed[0].Filename != "bad.pdf" || failed[0].ErrorType != "corrupt_input" {
		t.Errorf("failed[0] = %+v", failed[0])
	}
	if failed[1].ErrorType != "timeout" {
		t.Errorf("failed[1].ErrorType = %q, want timeout from the message", failed[1].ErrorType)
	}
}

func TestWriteDetailsToRun(t *testing.T) {
	dir := t.TempDir()
	results := []Result{
		{Doc: models.Document{Name: "a.txt", Size: 10}, Summary: "ok", EstimatedTokens: 2},
		{Doc: models.Document{Name: "b.xyz"}, Error: errors.New("no strategy"), ErrorKind: "unsupported_format"},
	}

	if err := WriteDetailsToRun(results, dir); err != nil {
		t.Fatalf("WriteDetailsToRun() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "run-details.yaml"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var rows []DocDetails
	if err := yaml.Unmarshal(data, &rows); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Filename != "a.txt" || rows[0].Status != "success" {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].Status != "failed" || rows[1].ErrorType != "unsupported_format" {
		t.Errorf("rows[1] = %+v", rows[1])
	}
}

func TestWriteFailedDocsToRun(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFailedDocsToRun(nil, dir); err != nil {
		t.Fatalf("WriteFailedDocsToRun(nil) error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "failed-docs.yaml")); !os.IsNotExist(err) {
		t.Fatal("failed-docs.yaml should not exist for a clean run")
	}

	failed := []FailedDoc{{Filename: "b.pdf", Type: ".pdf", ErrorType: "corrupt_input", ErrorMessage: "bad xref"}}
	if err := WriteFailedDocsToRun(failed, dir); err != nil {
		t.Fatalf("WriteFailedDocsToRun() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "failed-docs.yaml"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var wrapper FailedDocs
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(wrapper.FailedDocs) != 1 || wrapper.FailedDocs[0].Filename != "b.pdf" {
		t.Errorf("failed docs = %+v", wrapper.FailedDocs)
	}
}

func TestFormatKeywordsAsJSON(t *testing.T) {
	counts := map[string]int{"budget": 4, "revenue": 2}
	if got := formatKeywordsAsJSON(counts, 5); got != `["budget:4","revenue:2"]` {
		t.Errorf("formatKeywordsAsJSON() = %q", got)
	}
	if got := formatKeywordsAsJSON(nil, 5); got != "" {
		t.Errorf("formatKeywordsAsJSON(nil) = %q, want empty", got)
	}
}

func TestRunDocumentInput(t *testing.T) {
	success := Result{
		Doc:             models.Document{Name: "a.txt", Size: 10},
		Summary:         "four",
		EstimatedTokens: 3,
		WordCounts:      map[string]int{"budget": 2},
		Language:        lang.Result{Code: "en", Confidence: 0.9},
		LangOK:          true,
	}

	in := runDocumentInput(success)
	if in.Status != "success" || in.SummaryChars != 4 || in.EstimatedTokens != 3 {
		t.Errorf("success input = %+v", in)
	}
	if in.Language != "en" || in.TopKeywords != `["budget:2"]` {
		t.Errorf("success enrichment = %+v", in)
	}

	failed := Result{
		Doc:       models.Document{Name: "b.pdf", Size: 7},
		Error:     errors.New("boom"),
		ErrorKind: "timeout",
	}

	in = runDocumentInput(failed)
	if in.Status != "failed" || in.ErrorKind != "timeout" || in.ErrorMessage != "boom" {
		t.Errorf("failed input = %+v", in)
	}
	if in.SizeBytes != 7 || in.Language != "" || in.TopKeywords != "" {
		t.Errorf("failed input carries success fields: %+v", in)
	}
}
