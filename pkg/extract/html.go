package extract

import (
	"bufio"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/tovenaar/docsum/models"
)

var htmlExts = map[string]bool{
	".html": true,
	".htm":  true,
}

// HTML extracts readable text from saved web pages. Readability isolates
// the main article and goquery walks its block elements; pages readability
// cannot distill fall back to a whole-document text walk with script and
// style stripped.
type HTML struct{}

func (HTML) Name() string { return "html" }

func (HTML) Match(doc models.Document) bool { return htmlExts[doc.Ext()] }

func (HTML) Extract(doc models.Document) (string, error) {
	html := string(doc.Content)
	pageURL := &url.URL{Scheme: "file", Path: "/" + doc.Name}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		text, aerr := articleText(article)
		if aerr == nil && text != "" {
			return text, nil
		}
	}
	return fullText(html)
}

// articleText walks the distilled article content block by block.
func articleText(article readability.Article) (string, error) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return "", failf(KindCorruptInput, "html", "failed to parse article content: %w", err)
	}

	var blocks []string
	if title := normalizeText(article.Title); title != "" {
		blocks = append(blocks, title)
	}

	gq.Find("h1,h2,h3,h4,p,li,table,pre").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "table":
			blocks = append(blocks, tableLines(s)...)
		case "pre":
			if code := strings.TrimSpace(s.Text()); code != "" {
				blocks = append(blocks, code)
			}
		default:
			if text := normalizeText(s.Text()); text != "" {
				blocks = append(blocks, text)
			}
		}
	})

	return strings.Join(blocks, "\n"), nil
}

// fullText strips script and style elements and collapses the remaining
// document text, for pages that are not article-shaped.
func fullText(html string) (string, error) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", failf(KindCorruptInput, "html", "failed to parse html: %w", err)
	}
	gq.Find("script,style,noscript").Remove()

	text := gq.Text()
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// tableLines flattens a table into tab-joined rows, headers first.
func tableLines(s *goquery.Selection) []string {
	var lines []string

	appendRow := func(cells []string) {
		line := strings.TrimSpace(strings.Join(cells, "\t"))
		if line != "" {
			lines = append(lines, line)
		}
	}

	header := s.Find("thead tr th")
	if header.Length() == 0 {
		header = s.Find("tr").First().Find("th")
	}
	var headerCells []string
	header.Each(func(_ int, th *goquery.Selection) {
		headerCells = append(headerCells, normalizeText(th.Text()))
	})
	appendRow(headerCells)

	s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, normalizeText(td.Text()))
		})
		appendRow(cells)
	})

	return lines
}

// normalizeText trims each line and joins non-empty lines with single
// spaces.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
