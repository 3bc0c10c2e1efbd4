// Package source enumerates the documents a run operates on. A Source
// produces a finite, ordered batch; streaming inputs are out of scope.
package source

import (
	"context"
	"fmt"
	"regexp"

	"github.com/tovenaar/docsum/models"
)

// Source lists the documents to process. Implementations return what
// they could enumerate together with the first error they hit, so a
// partial listing is still usable to the caller.
type Source interface {
	List(ctx context.Context) ([]models.Document, error)
}

var driveIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`folders/([a-zA-Z0-9-_]+)`),
	regexp.MustCompile(`/file/d/([a-zA-Z0-9-_]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9-_]+)`),
}

var bareDriveID = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// ExtractDriveID pulls a folder or file ID out of any drive.google.com
// URL form. A bare ID passes through unchanged.
func ExtractDriveID(raw string) (string, error) {
	for _, pattern := range driveIDPatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}
	if bareDriveID.MatchString(raw) {
		return raw, nil
	}
	return "", fmt.Errorf("could not extract a Drive ID from %q", raw)
}
