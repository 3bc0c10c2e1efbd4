package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DocumentRecord represents one distinct document, identified by its
// content hash. The same bytes seen under a new name or origin stay one
// row; sightings bump last_seen and times_seen.
type DocumentRecord struct {
	DocID       int64
	Name        string
	FileType    string
	Origin      string
	SourcePath  string
	ContentHash string
	SizeBytes   int64
	FirstSeen   time.Time
	LastSeen    time.Time
	TimesSeen   int
}

// UpsertDocument inserts a document or refreshes the existing row with
// the same content hash, returning the doc_id either way.
func (db *DB) UpsertDocument(name, fileType, origin, sourcePath, contentHash string, sizeBytes int64) (int64, error) {
	var existingID int64
	err := db.QueryRow("SELECT doc_id FROM documents WHERE content_hash = ?", contentHash).Scan(&existingID)
	if err == nil {
		_, err = db.Exec(`
			UPDATE documents
			SET name = ?, file_type = ?, origin = ?, source_path = ?, size_bytes = ?,
			    last_seen = CURRENT_TIMESTAMP, times_seen = times_seen + 1
			WHERE doc_id = ?
		`, name, fileType, origin, sourcePath, sizeBytes, existingID)
		if err != nil {
			return 0, fmt.Errorf("failed to update document: %w", err)
		}
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to check existing document: %w", err)
	}

	result, err := db.Exec(`
		INSERT INTO documents (name, file_type, origin, source_path, content_hash, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, name, fileType, origin, sourcePath, contentHash, sizeBytes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	docID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get document ID: %w", err)
	}
	return docID, nil
}

// GetDocumentByHash retrieves a document by its content hash.
func (db *DB) GetDocumentByHash(contentHash string) (*DocumentRecord, error) {
	return db.getDocument("content_hash = ?", contentHash)
}

// GetDocumentByID retrieves a document by its ID.
func (db *DB) GetDocumentByID(docID int64) (*DocumentRecord, error) {
	return db.getDocument("doc_id = ?", docID)
}

func (db *DB) getDocument(where string, arg interface{}) (*DocumentRecord, error) {
	var rec DocumentRecord
	var fileType, sourcePath sql.NullString
	err := db.QueryRow(`
		SELECT doc_id, name, file_type, origin, source_path, content_hash, size_bytes,
		       first_seen, last_seen, times_seen
		FROM documents
		WHERE `+where, arg).Scan(
		&rec.DocID,
		&rec.Name,
		&fileType,
		&rec.Origin,
		&sourcePath,
		&rec.ContentHash,
		&rec.SizeBytes,
		&rec.FirstSeen,
		&rec.LastSeen,
		&rec.TimesSeen,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	rec.FileType = fileType.String
	rec.SourcePath = sourcePath.String
	return &rec, nil
}

// NewNullString creates a sql.NullString from a string value.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
