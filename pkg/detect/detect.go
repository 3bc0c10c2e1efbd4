// Package detect sniffs document formats from leading content bytes.
// It is the last resort of strategy selection, used when a document has no
// declared type and no recognizable filename extension.
package detect

import (
	"archive/zip"
	"bytes"
	"strings"
	"unicode/utf8"
)

// sniffLimit bounds how much of the document the text heuristics look at.
const sniffLimit = 512

// Sniff returns the extension implied by the content ("" when unknown).
// Container formats are opened to discriminate their inner layout, so a
// bare ZIP archive is distinguishable from a DOCX or XLSX file.
func Sniff(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return ".pdf"
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return sniffZip(data)
	case bytes.HasPrefix(data, []byte("{\\rtf")):
		return ".rtf"
	}

	if looksLikeHTML(data) {
		return ".html"
	}
	if looksLikeText(data) {
		return ".txt"
	}
	return ""
}

// sniffZip discriminates Office container formats by their inner paths.
func sniffZip(data []byte) string {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range r.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return ".docx"
		case strings.HasPrefix(f.Name, "xl/"):
			return ".xlsx"
		}
	}
	return ""
}

// looksLikeHTML checks for an HTML or doctype tag near the start, skipping
// a UTF-8 BOM and leading whitespace.
func looksLikeHTML(data []byte) bool {
	head := bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	head = bytes.TrimLeft(head, " \t\r\n")
	if len(head) > sniffLimit {
		head = head[:sniffLimit]
	}
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<html")) ||
		bytes.HasPrefix(lower, []byte("<!doctype html"))
}

// looksLikeText accepts content that is valid UTF-8 and almost entirely
// printable. Control characters other than common whitespace disqualify it.
func looksLikeText(data []byte) bool {
	head := data
	if len(head) > sniffLimit {
		head = head[:sniffLimit]
		// A multi-byte rune may straddle the cut; trim at most a partial
		// rune from the tail before judging validity.
		for i := 0; i < utf8.UTFMax-1 && len(head) > 0 && !utf8.Valid(head); i++ {
			head = head[:len(head)-1]
		}
	}
	if len(head) == 0 || !utf8.Valid(head) {
		return false
	}

	control := 0
	for _, r := range string(head) {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if r < 0x20 || r == 0x7f {
			control++
		}
	}
	return control == 0
}
