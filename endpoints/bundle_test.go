package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signstack/creative-server/assets"
	"github.com/signstack/creative-server/assets/resolver"
	"github.com/signstack/creative-server/bundle"
	"github.com/signstack/creative-server/creative"
	"github.com/signstack/creative-server/creative/merge"
	"github.com/signstack/creative-server/creativecache"
	"github.com/signstack/creative-server/metrics"
	"github.com/signstack/creative-server/minifier"
	"github.com/signstack/creative-server/serviceworker"
	"github.com/signstack/creative-server/util/timeutil"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBundleFilename(t *testing.T) {
	tests := []struct {
		name string
		want *bundleRequest
	}{
		{
			name: "abc.components.bundle.js",
			want: &bundleRequest{creativeID: "abc", kind: "components", assetType: assets.TypeJS, debug: true},
		},
		{
			name: "abc.libraries.bundle.min.css",
			want: &bundleRequest{creativeID: "abc", kind: "libraries", assetType: assets.TypeCSS, debug: false},
		},
		{
			name: "spring.sale.2026.components.bundle.min.js",
			want: &bundleRequest{creativeID: "spring.sale.2026", kind: "components", assetType: assets.TypeJS, debug: false},
		},
		{
			name: "abc.caching.bundle.js",
			want: &bundleRequest{creativeID: "abc", kind: "caching", assetType: assets.TypeJS, debug: true},
		},
		{
			name: "abc.manager.bundle.min.js",
			want: &bundleRequest{creativeID: "abc", kind: "manager", assetType: assets.TypeJS, debug: false},
		},
		{name: "abc.caching.bundle.css"},
		{name: "abc.manager.bundle.min.css"},
		{name: "abc.widgets.bundle.js"},
		{name: "abc.components.bundle.html"},
		{name: "abc.components.js"},
		{name: ".components.bundle.js"},
		{name: "bundle.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBundleFilename(tt.name)
			if tt.want == nil {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type mapFetcher map[string]string

func (f mapFetcher) FetchCreative(_ context.Context, id string) (json.RawMessage, error) {
	if raw, ok := f[id]; ok {
		return json.RawMessage(raw), nil
	}
	return nil, creative.NotFoundError{ID: id}
}

type noDefaults struct{}

func (noDefaults) Defaults(string) creative.Component {
	return nil
}

// newTestStack builds a bundle endpoint over real components backed by temp
// directories, with one known creative "abc".
func newTestStack(t *testing.T) (*BundleEndpoint, *creativecache.Cache) {
	t.Helper()

	componentsRoot := t.TempDir()
	librariesRoot := t.TempDir()
	templatesDir := t.TempDir()

	write := func(relative, content string) {
		path := filepath.Join(componentsRoot, filepath.FromSlash(relative))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("Ticker/Default.js", "ticker();")
	write("Initializer/Default.js", "init();")
	write("SlideLayout/Default.js", "slide();")
	write("CardWidget/Default.js", "card();")
	require.NoError(t, os.WriteFile(filepath.Join(templatesDir, "cache-manifest.js"),
		[]byte("cache('{{creativeId}}', {{filesToCache}}, {{excludedUrls}});"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(templatesDir, "manager.js"),
		[]byte("manage('{{viewType}}', '{{creativeId}}', '{{minSuffix}}');"), 0o644))

	fetcher := mapFetcher{
		"abc": `{"id": "abc", "pieces": [{"slideLayout": {"contents": [{"cardWidget": {"heading": "Hi"}}]}}]}`,
	}
	cache := creativecache.New(fetcher, merge.New(noDefaults{}, nil), 30*time.Minute, timeutil.RealTime{})

	min := minifier.New()
	res := resolver.New(componentsRoot, librariesRoot, min, 0, 0)
	assembler := bundle.New(cache, res, min, timeutil.RealTime{})
	generator := serviceworker.New(cache, min, templatesDir, "player")

	return NewBundleEndpoint(assembler, generator, metrics.New(), time.Second), cache
}

func doRequest(e *BundleEndpoint, filename string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/"+filename, nil)
	recorder := httptest.NewRecorder()
	e.Handle(recorder, req, httprouter.Params{{Key: "filename", Value: "/" + filename}})
	return recorder
}

func TestHandleComponentsBundle(t *testing.T) {
	e, _ := newTestStack(t)

	recorder := doRequest(e, "abc.components.bundle.js")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, bundle.ContentTypeJS, recorder.Header().Get("Content-Type"))

	body := recorder.Body.String()
	assert.Contains(t, body, "ticker();")
	assert.Contains(t, body, "init();")
	assert.Contains(t, body, "card();")
}

func TestHandleCachingManifest(t *testing.T) {
	e, _ := newTestStack(t)

	recorder := doRequest(e, "abc.caching.bundle.js")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, bundle.ContentTypeJS, recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Body.String(), "/abc.components.bundle.js")
}

func TestHandleManager(t *testing.T) {
	e, _ := newTestStack(t)

	recorder := doRequest(e, "abc.manager.bundle.js")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "manage('player', 'abc', '');")
}

func TestHandleUnknownCreative(t *testing.T) {
	e, _ := newTestStack(t)

	recorder := doRequest(e, "missing.components.bundle.js")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `Creative with ID="missing" not found.`)
}

func TestHandleBadFilename(t *testing.T) {
	e, _ := newTestStack(t)

	recorder := doRequest(e, "abc.widgets.bundle.js")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCreativeEndpoint(t *testing.T) {
	_, cache := newTestStack(t)
	e := NewCreativeEndpoint(cache, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/abc.creative.json", nil)
	recorder := httptest.NewRecorder()
	e.Handle(recorder, req, httprouter.Params{{Key: "filename", Value: "/abc.creative.json"}})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Body.String(), `"id":"abc"`)
	assert.Contains(t, recorder.Body.String(), `"heading":"Hi"`)
}

func TestCreativeEndpointUnknown(t *testing.T) {
	_, cache := newTestStack(t)
	e := NewCreativeEndpoint(cache, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/nope.creative.json", nil)
	recorder := httptest.NewRecorder()
	e.Handle(recorder, req, httprouter.Params{{Key: "filename", Value: "/nope.creative.json"}})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
