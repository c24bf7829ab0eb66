package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/signstack/creative-server/assets"
	"github.com/signstack/creative-server/errortypes"
	"github.com/signstack/creative-server/minifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMinifier struct {
	fail bool
}

func (f fakeMinifier) Minify(assetType assets.Type, source string) minifier.Output {
	if f.fail {
		return minifier.Output{Code: source, HasErrors: true, Errors: []error{errors.New("minifier exploded")}}
	}
	return minifier.Output{Code: "MIN:" + source}
}

func writeAsset(t *testing.T, root string, parts ...string) {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content of "+filepath.Base(path)), 0o644))
}

func TestResolveWidgetAsset(t *testing.T) {
	components := t.TempDir()
	writeAsset(t, components, "CardWidget", "Default.js")

	r := New(components, t.TempDir(), fakeMinifier{}, 0, 0)
	content, err := r.Resolve(context.Background(), "CardWidget", assets.LocationWidgets, assets.TypeJS, false)
	require.NoError(t, err)
	assert.Equal(t, "content of Default.js", content)
}

func TestResolveNestedLibraryAsset(t *testing.T) {
	libraries := t.TempDir()
	writeAsset(t, libraries, "Tickers", "News.js")

	r := New(t.TempDir(), libraries, fakeMinifier{}, 0, 0)
	content, err := r.Resolve(context.Background(), "Tickers/News", assets.LocationLibraries, assets.TypeJS, false)
	require.NoError(t, err)
	assert.Equal(t, "content of News.js", content)
}

func TestResolveMissingAsset(t *testing.T) {
	r := New(t.TempDir(), t.TempDir(), fakeMinifier{}, 0, 0)
	_, err := r.Resolve(context.Background(), "NoSuchWidget", assets.LocationWidgets, assets.TypeJS, false)

	var resolution *errortypes.AssetResolution
	require.ErrorAs(t, err, &resolution)
}

func TestResolveInvalidLocation(t *testing.T) {
	r := New(t.TempDir(), t.TempDir(), fakeMinifier{}, 0, 0)
	_, err := r.Resolve(context.Background(), "Whatever", assets.Location("Plugins"), assets.TypeJS, false)

	var resolution *errortypes.AssetResolution
	require.ErrorAs(t, err, &resolution)
}

func TestResolveRejectsTraversal(t *testing.T) {
	r := New(t.TempDir(), t.TempDir(), fakeMinifier{}, 0, 0)
	_, err := r.Resolve(context.Background(), "../secrets", assets.LocationLibraries, assets.TypeJS, false)
	assert.Error(t, err)
}

func TestResolveMinified(t *testing.T) {
	components := t.TempDir()
	writeAsset(t, components, "CardWidget", "Default.css")

	r := New(components, t.TempDir(), fakeMinifier{}, 0, 0)
	content, err := r.Resolve(context.Background(), "CardWidget", assets.LocationWidgets, assets.TypeCSS, true)
	require.NoError(t, err)
	assert.Equal(t, "MIN:content of Default.css", content)
}

func TestResolveMinifyFailureFallsBackToRaw(t *testing.T) {
	components := t.TempDir()
	writeAsset(t, components, "CardWidget", "Default.js")

	r := New(components, t.TempDir(), fakeMinifier{fail: true}, 0, 0)
	content, err := r.Resolve(context.Background(), "CardWidget", assets.LocationWidgets, assets.TypeJS, true)
	require.NoError(t, err, "minification failure must never fail resolution")
	assert.Equal(t, "content of Default.js", content)
}

func TestResolveCachesContent(t *testing.T) {
	components := t.TempDir()
	writeAsset(t, components, "CardWidget", "Default.js")

	r := New(components, t.TempDir(), fakeMinifier{}, 1024*1024, 60)
	first, err := r.Resolve(context.Background(), "CardWidget", assets.LocationWidgets, assets.TypeJS, false)
	require.NoError(t, err)

	// Overwrite the backing file; the cached content should still be served.
	require.NoError(t, os.WriteFile(filepath.Join(components, "CardWidget", "Default.js"), []byte("changed"), 0o644))

	second, err := r.Resolve(context.Background(), "CardWidget", assets.LocationWidgets, assets.TypeJS, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
