package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Run represents one pipeline invocation
type Run struct {
	RunID        int64
	CreatedAt    time.Time
	DocCount     int
	SuccessCount int
	FailedCount  int
	Model        string
	Source       string
	RunDir       string
}

// CreateRun creates a new run record and returns its ID together with
// the run directory name (relative to the results base directory).
func (db *DB) CreateRun(docCount int, model, source string) (int64, string, error) {
	dateStr := time.Now().Format("2006-01-02")

	// Insert with placeholder run_dir, update after we get the ID
	result, err := db.Exec(`
		INSERT INTO runs (doc_count, model, source, run_dir)
		VALUES (?, ?, ?, ?)
	`, docCount, model, source, "temp")
	if err != nil {
		return 0, "", fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, "", fmt.Errorf("failed to get run ID: %w", err)
	}

	runDir := fmt.Sprintf("runs/%s-%d", dateStr, runID)
	if _, err := db.Exec("UPDATE runs SET run_dir = ? WHERE run_id = ?", runDir, runID); err != nil {
		return 0, "", fmt.Errorf("failed to update run_dir: %w", err)
	}

	return runID, runDir, nil
}

// RunDocumentInput carries one document's outcome for insertion.
type RunDocumentInput struct {
	Status          string
	ErrorKind       string
	ErrorMessage    string
	SizeBytes       int64
	EstimatedTokens int
	SummaryChars    int
	Language        string
	TopKeywords     string // JSON array: ["word:count", ...]
}

// InsertRunDocument records one document's outcome within a run.
func (db *DB) InsertRunDocument(runID, docID int64, in RunDocumentInput) error {
	_, err := db.Exec(`
		INSERT INTO run_documents (run_id, doc_id, status, error_kind, error_message,
		                           size_bytes, estimated_tokens, summary_chars, language, top_keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, docID, in.Status, NewNullString(in.ErrorKind), NewNullString(in.ErrorMessage),
		in.SizeBytes, in.EstimatedTokens, in.SummaryChars, NewNullString(in.Language), NewNullString(in.TopKeywords))
	if err != nil {
		return fmt.Errorf("failed to insert run document: %w", err)
	}
	return nil
}

// UpdateRunStats updates the success and failed counts for a run
func (db *DB) UpdateRunStats(runID int64, successCount, failedCount int) error {
	_, err := db.Exec(`
		UPDATE runs
		SET success_count = ?, failed_count = ?
		WHERE run_id = ?
	`, successCount, failedCount, runID)
	if err != nil {
		return fmt.Errorf("failed to update run stats: %w", err)
	}
	return nil
}

// GetRunByID retrieves a run by its ID
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	var run Run
	err := db.QueryRow(`
		SELECT run_id, created_at, doc_count, success_count, failed_count, model, source, run_dir
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(
		&run.RunID,
		&run.CreatedAt,
		&run.DocCount,
		&run.SuccessCount,
		&run.FailedCount,
		&run.Model,
		&run.Source,
		&run.RunDir,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// RunDocument represents one document's outcome inside a run
type RunDocument struct {
	DocID           int64
	Name            string
	FileType        string
	Status          string
	ErrorKind       string
	ErrorMessage    string
	SizeBytes       int64
	EstimatedTokens int
	SummaryChars    int
	Language        string
	TopKeywords     string
}

// GetRunDocuments retrieves all document outcomes for a run
func (db *DB) GetRunDocuments(runID int64) ([]RunDocument, error) {
	rows, err := db.Query(`
		SELECT d.doc_id, d.name, d.file_type, rd.status, rd.error_kind, rd.error_message,
		       rd.size_bytes, rd.estimated_tokens, rd.summary_chars, rd.language, rd.top_keywords
		FROM run_documents rd
		JOIN documents d ON rd.doc_id = d.doc_id
		WHERE rd.run_id = ?
		ORDER BY rd.id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run documents: %w", err)
	}
	defer rows.Close()

	var docs []RunDocument
	for rows.Next() {
		var rd RunDocument
		var fileType, errorKind, errorMessage, language, keywords sql.NullString
		if err := rows.Scan(&rd.DocID, &rd.Name, &fileType, &rd.Status, &errorKind, &errorMessage,
			&rd.SizeBytes, &rd.EstimatedTokens, &rd.SummaryChars, &language, &keywords); err != nil {
			return nil, fmt.Errorf("failed to scan run document: %w", err)
		}
		rd.FileType = fileType.String
		rd.ErrorKind = errorKind.String
		rd.ErrorMessage = errorMessage.String
		rd.Language = language.String
		rd.TopKeywords = keywords.String
		docs = append(docs, rd)
	}

	return docs, nil
}

// ListRuns retrieves all runs ordered by most recent first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, created_at, doc_count, success_count, failed_count, model, source, run_dir
		FROM runs
		ORDER BY created_at DESC, run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// QueryRuns filters runs based on criteria
func (db *DB) QueryRuns(todayOnly, failedOnly bool, namePattern string) ([]Run, error) {
	query := `
		SELECT DISTINCT r.run_id, r.created_at, r.doc_count, r.success_count,
		       r.failed_count, r.model, r.source, r.run_dir
		FROM runs r
	`

	var conditions []string
	var args []interface{}

	if todayOnly {
		conditions = append(conditions, "DATE(r.created_at) = DATE('now')")
	}

	if failedOnly {
		conditions = append(conditions, "r.failed_count > 0")
	}

	if namePattern != "" {
		query += `
		JOIN run_documents rd ON r.run_id = rd.run_id
		JOIN documents d ON rd.doc_id = d.doc_id
		`
		conditions = append(conditions, "d.name LIKE ?")
		args = append(args, "%"+namePattern+"%")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY r.created_at DESC, r.run_id DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var r Run
		var model, source sql.NullString
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.DocCount, &r.SuccessCount,
			&r.FailedCount, &model, &source, &r.RunDir); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Model = model.String
		r.Source = source.String
		runs = append(runs, r)
	}
	return runs, nil
}
