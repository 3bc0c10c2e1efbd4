// Package artifacts caches downloaded document bytes between runs so a
// re-run against the same Drive folder does not re-fetch every file.
package artifacts

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultBaseDir = "docsum-results"
	DownloadsDir   = "downloads"
)

// Manager handles storage and retrieval of downloaded documents.
type Manager struct {
	baseDir string
	maxAge  time.Duration // Max age for a cached download before it's considered stale
}

// NewManager creates a new Manager and ensures the downloads directory
// exists. A negative maxAge means cached files never expire.
func NewManager(baseDir string, maxAge time.Duration) (*Manager, error) {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if err := os.MkdirAll(filepath.Join(baseDir, DownloadsDir), 0750); err != nil {
		return nil, fmt.Errorf("failed to create downloads directory: %w", err)
	}
	return &Manager{baseDir: baseDir, maxAge: maxAge}, nil
}

// MaxAge returns the configured max age for cached downloads.
func (m *Manager) MaxAge() time.Duration {
	return m.maxAge
}

// getShortHash generates a short, stable hash from a file's source ID.
func getShortHash(fileID string) string {
	hash := sha256.Sum256([]byte(fileID))
	return fmt.Sprintf("%x", hash[:6]) // First 6 bytes for a 12-char hex string
}

// sanitizeSlug creates a filesystem-safe slug from a filename.
var invalidFilenameChar = regexp.MustCompile(`[^a-zA-Z0-9\-_]+`)

func sanitizeSlug(filename string) string {
	safe := invalidFilenameChar.ReplaceAllString(filename, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return "file"
	}
	return safe
}

// DownloadPath constructs the cache path for a file. The slug keeps the
// name human readable; the hash of the source ID keeps it unique.
func (m *Manager) DownloadPath(fileID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	slug := sanitizeSlug(strings.TrimSuffix(filename, filepath.Ext(filename)))
	name := fmt.Sprintf("%s-%s%s", slug, getShortHash(fileID), ext)
	return filepath.Join(m.baseDir, DownloadsDir, name)
}

// GetDownload retrieves a cached download if usable. When the remote
// md5 checksum is known a match wins over any age limit, and a mismatch
// forces a re-download.
func (m *Manager) GetDownload(fileID, filename, md5sum string) ([]byte, bool, error) {
	filePath := m.DownloadPath(fileID, filename)

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, false, nil // Not found
	}
	if err != nil {
		return nil, false, fmt.Errorf("error statting cached download: %w", err)
	}

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, false, fmt.Errorf("error reading cached download: %w", err)
	}

	if md5sum != "" {
		if fmt.Sprintf("%x", md5.Sum(data)) == strings.ToLower(md5sum) {
			return data, true, nil
		}
		return nil, false, nil // Remote content changed
	}

	if m.maxAge > 0 && time.Since(info.ModTime()) > m.maxAge {
		return nil, false, nil // Stale
	}
	return data, true, nil
}

// FindDownload locates a cached download by its source ID alone, for
// callers that did not record the original filename. The returned name
// is the cached entry's name with the ID hash stripped, so the slug
// and extension survive a cache hit.
func (m *Manager) FindDownload(fileID string) (string, []byte, bool, error) {
	hash := getShortHash(fileID)
	matches, err := filepath.Glob(filepath.Join(m.baseDir, DownloadsDir, "*-"+hash+"*"))
	if err != nil || len(matches) == 0 {
		return "", nil, false, err
	}
	filePath := matches[0]

	info, err := os.Stat(filePath)
	if err != nil {
		return "", nil, false, fmt.Errorf("error statting cached download: %w", err)
	}
	if m.maxAge > 0 && time.Since(info.ModTime()) > m.maxAge {
		return "", nil, false, nil // Stale
	}

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return "", nil, false, fmt.Errorf("error reading cached download: %w", err)
	}
	name := strings.Replace(filepath.Base(filePath), "-"+hash, "", 1)
	return name, data, true, nil
}

// SetDownload stores downloaded bytes in the cache.
func (m *Manager) SetDownload(fileID, filename string, data []byte) error {
	filePath := m.DownloadPath(fileID, filename)
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write cached download: %w", err)
	}
	return nil
}
