package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/signstack/creative-server/creativecache"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
)

// CreativeDocSuffix addresses the merged creative document itself:
// GET /{id}.creative.json. The player app fetches this to render.
const CreativeDocSuffix = ".creative.json"

type CreativeEndpoint struct {
	cache   *creativecache.Cache
	timeout time.Duration
}

func NewCreativeEndpoint(cache *creativecache.Cache, timeout time.Duration) *CreativeEndpoint {
	return &CreativeEndpoint{
		cache:   cache,
		timeout: timeout,
	}
}

func (e *CreativeEndpoint) Handle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := strings.TrimPrefix(ps.ByName("filename"), "/")
	id := strings.TrimSuffix(name, CreativeDocSuffix)
	if id == "" {
		http.Error(w, "missing creative id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	entry, err := e.cache.Get(ctx, id)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entry.Creative); err != nil {
		glog.Errorf("Error encoding creative %q: %v", id, err)
	}
}
