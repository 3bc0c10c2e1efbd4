package extract

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/tovenaar/docsum/models"
)

// docxMainPart is the default path of the document body inside the zip.
const docxMainPart = "word/document.xml"

// docxMainContentType identifies the body part in [Content_Types].xml.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// wtTag matches a text run, with or without attributes
// (<w:t>x</w:t>, <w:t xml:space="preserve">x</w:t>).
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// paraEnd splits the body into paragraphs.
var paraEnd = regexp.MustCompile(`</w:p>`)

// Both attribute orders occur in the wild.
var (
	docxPartByName = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	docxPartByType = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

var xmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

// DOCX extracts text from Word documents by pulling <w:t> runs out of the
// main document part. Run and paragraph attributes are ignored so content
// survives regardless of styling.
type DOCX struct{}

func (DOCX) Name() string { return "docx" }

func (DOCX) Match(doc models.Document) bool { return doc.Ext() == ".docx" }

func (DOCX) Extract(doc models.Document) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return "", failf(KindCorruptInput, "docx", "not a zip archive: %w", err)
	}

	docPath := findDocxMainPart(zr)
	if docPath == "" {
		docPath = docxMainPart
	}

	docXML, err := readZipFile(zr, docPath)
	if err != nil {
		return "", failf(KindCorruptInput, "docx", "failed to read %s: %w", docPath, err)
	}
	if docXML == nil {
		return "", failf(KindCorruptInput, "docx", "%s not found in archive", docPath)
	}

	var b strings.Builder
	for _, para := range paraEnd.Split(string(docXML), -1) {
		runs := wtTag.FindAllStringSubmatch(para, -1)
		if len(runs) == 0 {
			continue
		}
		var line strings.Builder
		for _, run := range runs {
			line.WriteString(xmlEntities.Replace(run[1]))
		}
		text := strings.TrimSpace(line.String())
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}

	return b.String(), nil
}

// findDocxMainPart locates the document body via [Content_Types].xml.
// Returns "" when the override is absent; the caller falls back to the
// conventional path.
func findDocxMainPart(zr *zip.Reader) string {
	data, err := readZipFile(zr, "[Content_Types].xml")
	if err != nil || data == nil {
		return ""
	}
	content := string(data)
	if m := docxPartByName.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	if m := docxPartByType.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	return ""
}

// readZipFile returns the named entry's bytes, or nil when absent.
func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, nil
}
