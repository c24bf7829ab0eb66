package endpoints

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/signstack/creative-server/assets"
	"github.com/signstack/creative-server/bundle"
	"github.com/signstack/creative-server/creative"
	"github.com/signstack/creative-server/errortypes"
	"github.com/signstack/creative-server/metrics"
	"github.com/signstack/creative-server/serviceworker"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
)

// Bundle kinds addressable from a URL. components/libraries are assembled
// bundles; caching/manager are generated service-worker scripts and accept
// .js only.
const (
	kindComponents = "components"
	kindLibraries  = "libraries"
	kindCaching    = "caching"
	kindManager    = "manager"
)

type bundleRequest struct {
	creativeID string
	kind       string
	assetType  assets.Type
	debug      bool
}

// parseBundleFilename decodes "{id}.{kind}.bundle[.min].{js|css}". The id may
// itself contain dots, so the name is consumed from the right.
func parseBundleFilename(name string) (*bundleRequest, error) {
	parts := strings.Split(name, ".")
	if len(parts) < 4 {
		return nil, &errortypes.BadInput{Message: fmt.Sprintf("unrecognized bundle file name %q", name)}
	}

	ext := parts[len(parts)-1]
	if ext != string(assets.TypeJS) && ext != string(assets.TypeCSS) {
		return nil, &errortypes.BadInput{Message: fmt.Sprintf("unsupported bundle extension %q", ext)}
	}
	rest := parts[:len(parts)-1]

	debug := true
	if rest[len(rest)-1] == "min" {
		debug = false
		rest = rest[:len(rest)-1]
	}

	if len(rest) < 3 || rest[len(rest)-1] != "bundle" {
		return nil, &errortypes.BadInput{Message: fmt.Sprintf("unrecognized bundle file name %q", name)}
	}
	rest = rest[:len(rest)-1]

	kind := rest[len(rest)-1]
	id := strings.Join(rest[:len(rest)-1], ".")
	if id == "" {
		return nil, &errortypes.BadInput{Message: fmt.Sprintf("missing creative id in bundle file name %q", name)}
	}

	switch kind {
	case kindComponents, kindLibraries:
	case kindCaching, kindManager:
		if ext != string(assets.TypeJS) {
			return nil, &errortypes.BadInput{Message: fmt.Sprintf("%s bundles are served as .js only, got %q", kind, ext)}
		}
	default:
		return nil, &errortypes.BadInput{Message: fmt.Sprintf("unknown bundle kind %q", kind)}
	}

	return &bundleRequest{
		creativeID: id,
		kind:       kind,
		assetType:  assets.Type(ext),
		debug:      debug,
	}, nil
}

type BundleEndpoint struct {
	assembler *bundle.Assembler
	generator *serviceworker.Generator
	metrics   *metrics.Metrics
	timeout   time.Duration
}

func NewBundleEndpoint(assembler *bundle.Assembler, generator *serviceworker.Generator, m *metrics.Metrics, timeout time.Duration) *BundleEndpoint {
	return &BundleEndpoint{
		assembler: assembler,
		generator: generator,
		metrics:   m,
		timeout:   timeout,
	}
}

// Handle serves GET /{filename} for every bundle kind.
func (e *BundleEndpoint) Handle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start := time.Now()
	name := strings.TrimPrefix(ps.ByName("filename"), "/")

	req, err := parseBundleFilename(name)
	if err != nil {
		e.metrics.RecordBundleRequest("unknown", "unknown", metrics.StatusBadInput)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var content, contentType string
	switch req.kind {
	case kindComponents:
		content, contentType, err = e.assembler.Assemble(ctx, req.creativeID, req.assetType, bundle.KindComponents, req.debug)
	case kindLibraries:
		content, contentType, err = e.assembler.Assemble(ctx, req.creativeID, req.assetType, bundle.KindLibraries, req.debug)
	case kindCaching:
		content, err = e.generator.Manifest(ctx, req.creativeID, req.debug)
		contentType = bundle.ContentTypeJS
	case kindManager:
		content, err = e.generator.Manager(ctx, req.creativeID, req.debug)
		contentType = bundle.ContentTypeJS
	}
	if err != nil {
		status := errorStatus(err)
		e.metrics.RecordBundleRequest(req.kind, string(req.assetType), statusLabel(status))
		if status == http.StatusInternalServerError {
			glog.Errorf("Error serving %s: %v", name, err)
		}
		http.Error(w, err.Error(), status)
		return
	}

	e.metrics.RecordBundleRequest(req.kind, string(req.assetType), metrics.StatusOK)
	e.metrics.ObserveBundleAssembly(time.Since(start))

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

func errorStatus(err error) int {
	var notFound creative.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	var badInput *errortypes.BadInput
	if errors.As(err, &badInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func statusLabel(httpStatus int) string {
	switch httpStatus {
	case http.StatusNotFound:
		return metrics.StatusNotFound
	case http.StatusBadRequest:
		return metrics.StatusBadInput
	}
	return metrics.StatusServerError
}
