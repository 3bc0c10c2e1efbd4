package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tovenaar/docsum/models"
)

// FileSource lists explicitly named local files, order preserved.
type FileSource struct {
	Paths []string
}

func (s FileSource) List(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	for _, path := range s.Paths {
		info, err := os.Stat(path)
		if err != nil {
			return docs, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			return docs, fmt.Errorf("%s is a directory, expected a file", path)
		}
		docs = append(docs, models.Document{
			Name:   filepath.Base(path),
			Path:   path,
			Size:   info.Size(),
			Origin: models.OriginLocal,
		})
	}
	return docs, nil
}
