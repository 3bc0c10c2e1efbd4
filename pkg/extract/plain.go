package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/tovenaar/docsum/models"
)

var plainExts = map[string]bool{
	".txt":  true,
	".md":   true,
	".log":  true,
	".text": true,
}

// Plain passes text files through, repairing invalid UTF-8 sequences with
// the replacement character.
type Plain struct{}

func (Plain) Name() string { return "plain" }

func (Plain) Match(doc models.Document) bool { return plainExts[doc.Ext()] }

func (Plain) Extract(doc models.Document) (string, error) {
	content := doc.Content
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}
