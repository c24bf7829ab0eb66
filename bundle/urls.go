package bundle

import (
	"fmt"

	"github.com/signstack/creative-server/assets"
)

// MinSuffix returns the file-name fragment selecting production output.
func MinSuffix(debug bool) string {
	if debug {
		return ""
	}
	return ".min"
}

// URL returns the site-rooted URL one bundle is served under, honoring the
// debug/min suffix convention.
func URL(creativeID string, kind Kind, assetType assets.Type, debug bool) string {
	return fmt.Sprintf("/%s.%s.bundle%s.%s", creativeID, kind, MinSuffix(debug), assetType)
}
