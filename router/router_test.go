package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/signstack/creative-server/creative"
	"github.com/signstack/creative-server/creative/merge"
	"github.com/signstack/creative-server/creativecache"
	"github.com/signstack/creative-server/metrics"
	"github.com/signstack/creative-server/util/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoCacheHeaders(t *testing.T) {
	handler := NoCache{Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, "no-cache, no-store, must-revalidate", recorder.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", recorder.Header().Get("Pragma"))
	assert.Equal(t, "0", recorder.Header().Get("Expires"))
}

type stubFetcher struct{}

func (stubFetcher) FetchCreative(_ context.Context, id string) (json.RawMessage, error) {
	if id == "abc" {
		return json.RawMessage(`{"id": "abc"}`), nil
	}
	return nil, creative.NotFoundError{ID: id}
}

type noDefaults struct{}

func (noDefaults) Defaults(string) creative.Component {
	return nil
}

func newAdminHandler(t *testing.T) (http.Handler, *creativecache.Cache) {
	t.Helper()
	cache := creativecache.New(stubFetcher{}, merge.New(noDefaults{}, nil), 30*time.Minute, timeutil.RealTime{})
	return Admin("abcdef", cache, metrics.New()), cache
}

func TestAdminStatus(t *testing.T) {
	admin, _ := newAdminHandler(t)

	recorder := httptest.NewRecorder()
	admin.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestAdminVersion(t *testing.T) {
	admin, _ := newAdminHandler(t)

	recorder := httptest.NewRecorder()
	admin.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"revision": "abcdef"}`, recorder.Body.String())
}

func TestAdminMetrics(t *testing.T) {
	admin, _ := newAdminHandler(t)

	recorder := httptest.NewRecorder()
	admin.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "go_goroutines")
}

func TestAdminCacheInvalidate(t *testing.T) {
	admin, cache := newAdminHandler(t)

	_, err := cache.Get(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	recorder := httptest.NewRecorder()
	admin.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/cache/invalidate?creative=abc", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, 0, cache.Len())
}

func TestAdminCacheInvalidateRequiresPost(t *testing.T) {
	admin, _ := newAdminHandler(t)

	recorder := httptest.NewRecorder()
	admin.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/cache/invalidate?creative=abc", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestAdminCacheInvalidateRequiresID(t *testing.T) {
	admin, _ := newAdminHandler(t)

	recorder := httptest.NewRecorder()
	admin.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/cache/invalidate", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
