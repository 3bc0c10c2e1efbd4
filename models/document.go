package models

import (
	"os"
	"path/filepath"
	"strings"
)

// Origin identifies where a document came from.
const (
	OriginLocal = "local"
	OriginDrive = "drive"
)

// Document is a single input flowing through the pipeline. Sources produce
// them, the extractor registry turns them into plain text, and the
// summarization workers turn that text into report units.
type Document struct {
	// Name is the filename used for display and for extension-based
	// strategy selection, e.g. "q3-report.pdf".
	Name string `json:"name" yaml:"name"`

	// Type is an optional declared type override (a lowercase extension
	// including the dot, e.g. ".pdf"). When set it takes precedence over
	// the extension of Name. Drive exports use it because the exported
	// bytes differ from the original file's extension.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Path is where the bytes live on disk. Local sources point at the
	// original file; remote sources point at their download cache entry.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Content holds the raw bytes once loaded. Sources may leave it nil
	// and let the worker load from Path.
	Content []byte `json:"-" yaml:"-"`

	Size   int64  `json:"size" yaml:"size"`
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty"`

	// DriveID is set for documents listed from Google Drive.
	DriveID string `json:"drive_id,omitempty" yaml:"drive_id,omitempty"`
}

// Ext returns the effective extension for strategy selection: the declared
// Type when present, otherwise the lowercased extension of Name.
func (d *Document) Ext() string {
	if d.Type != "" {
		return d.Type
	}
	return strings.ToLower(filepath.Ext(d.Name))
}

// Load reads the document bytes from Path unless Content is already set.
func (d *Document) Load() error {
	if d.Content != nil {
		return nil
	}
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return err
	}
	d.Content = data
	if d.Size == 0 {
		d.Size = int64(len(data))
	}
	return nil
}
