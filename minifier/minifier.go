package minifier

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"

	"github.com/signstack/creative-server/assets"
	"github.com/signstack/creative-server/errortypes"
)

// Output is the result of one minification pass. When HasErrors is set, Code
// is unreliable and callers are expected to fall back to their original text.
type Output struct {
	Code      string
	HasErrors bool
	Errors    []error
}

// Minifier shrinks JS or CSS text. Implementations must be safe for concurrent
// use; one instance is shared across all bundle requests.
type Minifier interface {
	Minify(assetType assets.Type, source string) Output
}

const (
	mediaTypeJS  = "application/javascript"
	mediaTypeCSS = "text/css"
)

// New builds the production minifier.
func New() Minifier {
	m := minify.New()
	m.AddFunc(mediaTypeJS, js.Minify)
	m.AddFunc(mediaTypeCSS, css.Minify)
	return &tdewolffMinifier{m: m}
}

type tdewolffMinifier struct {
	m *minify.M
}

func (t *tdewolffMinifier) Minify(assetType assets.Type, source string) Output {
	mediaType := mediaTypeJS
	if assetType == assets.TypeCSS {
		mediaType = mediaTypeCSS
	}

	code, err := t.m.String(mediaType, source)
	if err != nil {
		return Output{
			Code:      source,
			HasErrors: true,
			Errors:    []error{&errortypes.Minification{Message: err.Error()}},
		}
	}
	return Output{Code: code}
}
