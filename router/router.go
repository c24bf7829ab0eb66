package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/signstack/creative-server/assets/resolver"
	"github.com/signstack/creative-server/bundle"
	"github.com/signstack/creative-server/config"
	"github.com/signstack/creative-server/creative"
	"github.com/signstack/creative-server/creative/backends/file_fetcher"
	"github.com/signstack/creative-server/creative/backends/http_fetcher"
	"github.com/signstack/creative-server/creative/defaults"
	"github.com/signstack/creative-server/creative/merge"
	"github.com/signstack/creative-server/creativecache"
	"github.com/signstack/creative-server/endpoints"
	"github.com/signstack/creative-server/metrics"
	"github.com/signstack/creative-server/minifier"
	"github.com/signstack/creative-server/serviceworker"
	"github.com/signstack/creative-server/util/task"
	"github.com/signstack/creative-server/util/timeutil"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

type Router struct {
	*httprouter.Router
	Metrics       *metrics.Metrics
	CreativeCache *creativecache.Cache

	sweeper *task.TickerTask
}

// New wires the bundling pipeline and registers the delivery routes. Every
// deliverable shares one URL shape, {id}.{kind}.bundle[.min].{js|css} plus
// {id}.creative.json, so the main router carries a single catch-all route.
func New(cfg *config.Configuration) (*Router, error) {
	fetcher := newFetcher(&cfg.Creatives)
	loader := defaults.NewFileLoader(cfg.Paths.ComponentsDir)
	prober := merge.NewFileProber(cfg.Paths.LibrariesDir)
	merger := merge.New(loader, prober)

	m := metrics.New()

	clock := timeutil.RealTime{}
	cache := creativecache.New(fetcher, merger, time.Duration(cfg.CreativeCache.TTLMinutes)*time.Minute, clock).WithMetrics(m)
	sweeper := task.NewTickerTaskFromFunc(time.Duration(cfg.CreativeCache.SweepIntervalSeconds)*time.Second, cache.SweepExpired)
	sweeper.Start()

	min := minifier.New()
	res := resolver.New(cfg.Paths.ComponentsDir, cfg.Paths.LibrariesDir, min, cfg.AssetCache.SizeBytes, cfg.AssetCache.TTLSeconds)
	assembler := bundle.New(cache, res, min, clock)
	generator := serviceworker.New(cache, min, cfg.Paths.TemplatesDir, cfg.ServiceWorker.ViewType)

	m.RegisterCacheSizeGauge(cache.Len)

	timeout := time.Duration(cfg.Bundles.AssemblyTimeoutMS) * time.Millisecond
	bundleEndpoint := endpoints.NewBundleEndpoint(assembler, generator, m, timeout)
	creativeEndpoint := endpoints.NewCreativeEndpoint(cache, timeout)

	r := &Router{
		Router:        httprouter.New(),
		Metrics:       m,
		CreativeCache: cache,
		sweeper:       sweeper,
	}
	r.GET("/:filename", dispatch(bundleEndpoint, creativeEndpoint))
	return r, nil
}

func newFetcher(cfg *config.Creatives) creative.Fetcher {
	if cfg.Backend == config.BackendHTTP {
		client := &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond}
		return http_fetcher.NewFetcher(client, cfg.Endpoint)
	}
	return file_fetcher.NewFileFetcher(cfg.Directory)
}

func dispatch(bundles *endpoints.BundleEndpoint, creatives *endpoints.CreativeEndpoint) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if strings.HasSuffix(ps.ByName("filename"), endpoints.CreativeDocSuffix) {
			creatives.Handle(w, r, ps)
			return
		}
		bundles.Handle(w, r, ps)
	}
}

// Shutdown stops the cache sweeper.
func (r *Router) Shutdown() {
	r.sweeper.Stop()
}

// NoCache is a Handler preventing proxies and browsers from caching responses.
// The admin surface is wrapped in it so status and metrics reads are always
// live.
type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

// SupportCORS wraps the handler for cross-origin bundle loads; creatives are
// commonly embedded on arbitrary origins.
func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowCredentials: true,
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"}})
	return c.Handler(handler)
}
