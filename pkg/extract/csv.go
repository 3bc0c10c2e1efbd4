package extract

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/tovenaar/docsum/models"
)

// CSV extracts delimited files, one tab-joined line per record. Quoting is
// relaxed and ragged rows are tolerated; spreadsheet exports are messy.
type CSV struct{}

func (CSV) Name() string { return "csv" }

func (CSV) Match(doc models.Document) bool { return doc.Ext() == ".csv" }

func (CSV) Extract(doc models.Document) (string, error) {
	r := csv.NewReader(bytes.NewReader(doc.Content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var b strings.Builder
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", failf(KindCorruptInput, "csv", "failed to parse csv: %w", err)
		}
		line := strings.TrimSpace(strings.Join(record, "\t"))
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return strings.TrimSpace(b.String()), nil
}
