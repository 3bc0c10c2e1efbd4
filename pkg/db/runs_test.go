package db

import (
	"strings"
	"testing"
)

func TestCreateRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, runDir, err := db.CreateRun(3, "test/model-a", "/docs/folder")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if runID == 0 {
		t.Fatal("CreateRun() returned 0 ID")
	}
	if !strings.HasPrefix(runDir, "runs/") || !strings.HasSuffix(runDir, "-1") {
		t.Errorf("runDir = %q, want runs/<date>-1", runDir)
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.DocCount != 3 {
		t.Errorf("DocCount = %d, want 3", run.DocCount)
	}
	if run.Model != "test/model-a" {
		t.Errorf("Model = %q", run.Model)
	}
	if run.RunDir != runDir {
		t.Errorf("RunDir = %q, want %q", run.RunDir, runDir)
	}
}

func TestRunDocumentsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, _, err := db.CreateRun(2, "m", "src")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	docA, err := db.UpsertDocument("a.txt", ".txt", "local", "", "hash-a", 100)
	if err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}
	docB, err := db.UpsertDocument("b.pdf", ".pdf", "local", "", "hash-b", 200)
	if err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}

	err = db.InsertRunDocument(runID, docA, RunDocumentInput{
		Status:          "success",
		SizeBytes:       100,
		EstimatedTokens: 25,
		SummaryChars:    340,
		Language:        "en",
		TopKeywords:     `["budget:4","revenue:3"]`,
	})
	if err != nil {
		t.Fatalf("InsertRunDocument() error = %v", err)
	}
	err = db.InsertRunDocument(runID, docB, RunDocumentInput{
		Status:       "failed",
		ErrorKind:    "corrupt_input",
		ErrorMessage: "parser panic: bad xref",
		SizeBytes:    200,
	})
	if err != nil {
		t.Fatalf("InsertRunDocument() error = %v", err)
	}
	if err := db.UpdateRunStats(runID, 1, 1); err != nil {
		t.Fatalf("UpdateRunStats() error = %v", err)
	}

	docs, err := db.GetRunDocuments(runID)
	if err != nil {
		t.Fatalf("GetRunDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("GetRunDocuments() returned %d rows, want 2", len(docs))
	}
	if docs[0].Name != "a.txt" || docs[0].Status != "success" || docs[0].SummaryChars != 340 {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	if docs[0].Language != "en" || !strings.Contains(docs[0].TopKeywords, "budget:4") {
		t.Errorf("docs[0] language/keywords = %q, %q", docs[0].Language, docs[0].TopKeywords)
	}
	if docs[1].ErrorKind != "corrupt_input" || !strings.Contains(docs[1].ErrorMessage, "panic") {
		t.Errorf("docs[1] = %+v", docs[1])
	}
	if docs[1].Language != "" {
		t.Errorf("failed doc Language = %q, want empty", docs[1].Language)
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.SuccessCount != 1 || run.FailedCount != 1 {
		t.Errorf("stats = %d/%d, want 1/1", run.SuccessCount, run.FailedCount)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for i := 0; i < 3; i++ {
		if _, _, err := db.CreateRun(1, "m", "src"); err != nil {
			t.Fatalf("CreateRun() error = %v", err)
		}
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(runs))
	}
	if runs[0].RunID != 3 || runs[2].RunID != 1 {
		t.Errorf("runs not newest first: %d, %d, %d", runs[0].RunID, runs[1].RunID, runs[2].RunID)
	}

	limited, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListRuns(2) returned %d runs", len(limited))
	}
}

func TestQueryRunsFailedOnly(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanID, _, err := db.CreateRun(1, "m", "src")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if err := db.UpdateRunStats(cleanID, 1, 0); err != nil {
		t.Fatalf("UpdateRunStats() error = %v", err)
	}

	failedID, _, err := db.CreateRun(1, "m", "src")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if err := db.UpdateRunStats(failedID, 0, 1); err != nil {
		t.Fatalf("UpdateRunStats() error = %v", err)
	}

	runs, err := db.QueryRuns(false, true, "")
	if err != nil {
		t.Fatalf("QueryRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != failedID {
		t.Errorf("failed-only query = %+v", runs)
	}
}

func TestQueryRunsByDocumentName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, _, err := db.CreateRun(1, "m", "src")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	docID, err := db.UpsertDocument("quarterly-report.pdf", ".pdf", "local", "", "hash-q", 1)
	if err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}
	if err := db.InsertRunDocument(runID, docID, RunDocumentInput{Status: "success", SizeBytes: 1}); err != nil {
		t.Fatalf("InsertRunDocument() error = %v", err)
	}

	otherID, _, err := db.CreateRun(1, "m", "src")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	_ = otherID

	runs, err := db.QueryRuns(false, false, "quarterly")
	if err != nil {
		t.Fatalf("QueryRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != runID {
		t.Errorf("name query = %+v", runs)
	}
}

func TestQueryRunsToday(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, _, err := db.CreateRun(1, "m", "src"); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	runs, err := db.QueryRuns(true, false, "")
	if err != nil {
		t.Fatalf("QueryRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("today query returned %d runs, want 1", len(runs))
	}
}
