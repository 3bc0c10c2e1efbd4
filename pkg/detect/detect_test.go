package detect

import (
	"archive/zip"
	"bytes"
	"testing"
)

func zipWith(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte("x")); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"pdf", []byte("%PDF-1.7\nbinary junk follows"), ".pdf"},
		{"rtf", []byte(`{\rtf1\ansi hello}`), ".rtf"},
		{"html", []byte("<html><body>hi</body></html>"), ".html"},
		{"html uppercase", []byte("<HTML><BODY>hi</BODY></HTML>"), ".html"},
		{"doctype", []byte("  \n<!DOCTYPE html>\n<html></html>"), ".html"},
		{"html with bom", []byte("\xef\xbb\xbf<html></html>"), ".html"},
		{"plain text", []byte("just ordinary prose, nothing special"), ".txt"},
		{"utf8 text", []byte("naïve café über résumé 日本語"), ".txt"},
		{"binary", []byte{0x00, 0x01, 0x02, 0xff, 0xfe}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSniffZipContainers(t *testing.T) {
	tests := []struct {
		name  string
		inner []string
		want  string
	}{
		{"docx", []string{"[Content_Types].xml", "word/document.xml"}, ".docx"},
		{"xlsx", []string{"[Content_Types].xml", "xl/workbook.xml", "xl/worksheets/sheet1.xml"}, ".xlsx"},
		{"plain zip", []string{"readme.txt", "data/blob.bin"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := zipWith(t, tt.inner...)
			if got := Sniff(data); got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSniffTruncatedZip(t *testing.T) {
	data := zipWith(t, "word/document.xml")
	// Keep the magic but corrupt the central directory.
	if got := Sniff(data[:8]); got != "" {
		t.Errorf("Sniff(truncated zip) = %q, want empty", got)
	}
}
