package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tovenaar/docsum/models"
)

// PDF extracts text from PDF documents page by page.
type PDF struct{}

func (PDF) Name() string { return "pdf" }

func (PDF) Match(doc models.Document) bool { return doc.Ext() == ".pdf" }

func (PDF) Extract(doc models.Document) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return "", failf(KindCorruptInput, "pdf", "failed to open pdf: %w", err)
	}

	var pages []string
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", failf(KindCorruptInput, "pdf", "failed to extract page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, fmt.Sprintf("--- Page %d ---\n%s", i, text))
	}

	return strings.Join(pages, "\n\n"), nil
}
