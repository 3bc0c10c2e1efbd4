package extract

import "github.com/tovenaar/docsum/models"

var legacyExts = map[string]string{
	".doc": "antiword or LibreOffice",
	".xls": "LibreOffice or a converted .xlsx export",
}

// Legacy claims the pre-OOXML binary Office formats so they fail with a
// clear dependency_missing error instead of an unsupported-format one.
// Parsing OLE compound files is out of scope for this build.
type Legacy struct{}

func (Legacy) Name() string { return "legacy" }

func (Legacy) Match(doc models.Document) bool {
	_, ok := legacyExts[doc.Ext()]
	return ok
}

func (Legacy) Extract(doc models.Document) (string, error) {
	hint, ok := legacyExts[doc.Ext()]
	if !ok {
		hint = "a converting tool"
	}
	return "", failf(KindDependencyMissing, "legacy",
		"legacy %s files require additional libraries (e.g. %s)", doc.Ext(), hint)
}
