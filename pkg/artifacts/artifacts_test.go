package artifacts

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T, maxAge time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), maxAge)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestDownloadPathIsSlugSafe(t *testing.T) {
	m := newTestManager(t, 0)
	path := m.DownloadPath("abc123", "Q3 Report (final).PDF")

	base := filepath.Base(path)
	if strings.ContainsAny(base, " ()") {
		t.Errorf("path not sanitized: %s", base)
	}
	if !strings.HasSuffix(base, ".pdf") {
		t.Errorf("extension should be kept lowercase: %s", base)
	}
	if !strings.Contains(base, "Q3_Report") {
		t.Errorf("slug should stay readable: %s", base)
	}
	if path == m.DownloadPath("other-id", "Q3 Report (final).PDF") {
		t.Error("different source IDs should map to different paths")
	}
}

func TestDownloadRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)
	content := []byte("cached document bytes")

	if err := m.SetDownload("f1", "doc.txt", content); err != nil {
		t.Fatalf("SetDownload() error = %v", err)
	}
	got, found, err := m.GetDownload("f1", "doc.txt", "")
	if err != nil {
		t.Fatalf("GetDownload() error = %v", err)
	}
	if !found {
		t.Fatal("GetDownload() found = false, want true")
	}
	if string(got) != string(content) {
		t.Errorf("GetDownload() = %q", got)
	}
}

func TestDownloadMissing(t *testing.T) {
	m := newTestManager(t, time.Hour)
	_, found, err := m.GetDownload("nope", "doc.txt", "")
	if err != nil {
		t.Fatalf("GetDownload() error = %v", err)
	}
	if found {
		t.Error("GetDownload() found = true for missing file")
	}
}

func TestFindDownloadRecoversFilename(t *testing.T) {
	m := newTestManager(t, time.Hour)
	content := []byte("%PDF-1.4 bytes")
	if err := m.SetDownload("f1", "shared.pdf", content); err != nil {
		t.Fatalf("SetDownload() error = %v", err)
	}

	name, got, found, err := m.FindDownload("f1")
	if err != nil {
		t.Fatalf("FindDownload() error = %v", err)
	}
	if !found {
		t.Fatal("FindDownload() found = false, want true")
	}
	if name != "shared.pdf" {
		t.Errorf("FindDownload() name = %q, want shared.pdf", name)
	}
	if string(got) != string(content) {
		t.Errorf("FindDownload() = %q", got)
	}

	if _, _, found, err := m.FindDownload("unknown"); err != nil || found {
		t.Errorf("FindDownload(unknown) = found %v, err %v", found, err)
	}
}

func TestDownloadStaleByAge(t *testing.T) {
	m := newTestManager(t, time.Minute)
	if err := m.SetDownload("f1", "doc.txt", []byte("old")); err != nil {
		t.Fatalf("SetDownload() error = %v", err)
	}

	old := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(m.DownloadPath("f1", "doc.txt"), old, old); err != nil {
		t.Fatalf("failed to age cached file: %v", err)
	}

	_, found, err := m.GetDownload("f1", "doc.txt", "")
	if err != nil {
		t.Fatalf("GetDownload() error = %v", err)
	}
	if found {
		t.Error("aged-out download should not be served")
	}
}

func TestChecksumMatchBeatsAge(t *testing.T) {
	m := newTestManager(t, time.Minute)
	content := []byte("stable content")
	if err := m.SetDownload("f1", "doc.txt", content); err != nil {
		t.Fatalf("SetDownload() error = %v", err)
	}

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(m.DownloadPath("f1", "doc.txt"), old, old); err != nil {
		t.Fatalf("failed to age cached file: %v", err)
	}

	sum := fmt.Sprintf("%x", md5.Sum(content))
	got, found, err := m.GetDownload("f1", "doc.txt", sum)
	if err != nil {
		t.Fatalf("GetDownload() error = %v", err)
	}
	if !found {
		t.Fatal("matching checksum should serve the cached file regardless of age")
	}
	if string(got) != string(content) {
		t.Errorf("GetDownload() = %q", got)
	}
}

func TestChecksumMismatchForcesRefetch(t *testing.T) {
	m := newTestManager(t, time.Hour)
	if err := m.SetDownload("f1", "doc.txt", []byte("local copy")); err != nil {
		t.Fatalf("SetDownload() error = %v", err)
	}

	remote := fmt.Sprintf("%x", md5.Sum([]byte("remote copy")))
	_, found, err := m.GetDownload("f1", "doc.txt", remote)
	if err != nil {
		t.Fatalf("GetDownload() error = %v", err)
	}
	if found {
		t.Error("checksum mismatch should invalidate the cache entry")
	}
}
