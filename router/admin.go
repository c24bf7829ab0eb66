package router

import (
	"encoding/json"
	"net/http"

	"github.com/signstack/creative-server/creativecache"
	"github.com/signstack/creative-server/metrics"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Admin builds the handler for the admin port: liveness, version, prometheus
// scrape, and creative cache invalidation.
func Admin(revision string, cache *creativecache.Cache, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		if revision == "" {
			revision = "not-set"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Revision string `json:"revision"`
		}{Revision: revision})
	})

	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/cache/invalidate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Query().Get("creative")
		if id == "" {
			http.Error(w, "creative query parameter required", http.StatusBadRequest)
			return
		}
		cache.Invalidate(id)
		glog.Infof("Invalidated creative cache entry %q via admin", id)
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}
