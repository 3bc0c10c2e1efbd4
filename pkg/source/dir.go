package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tovenaar/docsum/models"
)

// DirSource lists the files of one local folder, ordered by name.
// Hidden files, subdirectories, and extensions outside the configured
// set are skipped. Content is not read here; documents load lazily.
type DirSource struct {
	Dir        string
	Extensions []string // allowed extensions with leading dot; empty allows all
}

func (s DirSource) List(ctx context.Context) ([]models.Document, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder: %w", err)
	}

	allowed := make(map[string]bool, len(s.Extensions))
	for _, ext := range s.Extensions {
		allowed[strings.ToLower(ext)] = true
	}

	var docs []models.Document
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if len(allowed) > 0 && !allowed[ext] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			slog.Warn("skipping unreadable file", "file", entry.Name(), "error", err)
			continue
		}
		docs = append(docs, models.Document{
			Name:   entry.Name(),
			Path:   filepath.Join(s.Dir, entry.Name()),
			Size:   info.Size(),
			Origin: models.OriginLocal,
		})
	}
	return docs, nil
}
