package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tovenaar/docsum/models"
)

// XLSX extracts spreadsheet content sheet by sheet, one tab-joined line
// per row.
type XLSX struct{}

func (XLSX) Name() string { return "xlsx" }

func (XLSX) Match(doc models.Document) bool { return doc.Ext() == ".xlsx" }

func (XLSX) Extract(doc models.Document) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(doc.Content))
	if err != nil {
		return "", failf(KindCorruptInput, "xlsx", "failed to open workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", failf(KindCorruptInput, "xlsx", "failed to read sheet %q: %w", sheet, err)
		}
		fmt.Fprintf(&b, "=== Sheet: %s ===\n", sheet)
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	// A workbook with only blank sheets yields just the headers; treat
	// that as no content.
	out := b.String()
	if !hasDataLine(out) {
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

func hasDataLine(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "=== Sheet:") {
			continue
		}
		return true
	}
	return false
}
