package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tovenaar/docsum/pkg/storage"
)

// Sink receives a finished report. A sink failure never invalidates the
// in-memory report; callers log it and move on.
type Sink interface {
	Write(r *Report) error
}

// FileSink writes the report as indented JSON to one path.
type FileSink struct {
	Path    string
	Storage *storage.Storage
}

func (s FileSink) Write(r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	st := s.Storage
	if st == nil {
		st = &storage.Storage{}
	}
	if err := st.SaveFile(s.Path, data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// StdoutSink prints the report as indented JSON, by default to stdout.
type StdoutSink struct {
	Out io.Writer
}

func (s StdoutSink) Write(r *Report) error {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "%s\n", data); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}
	return nil
}

// Marshal renders the report with the stable two-space indentation the
// report file uses.
func Marshal(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}
