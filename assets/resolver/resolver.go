// Package resolver loads raw asset source text. Widget and layout assets
// resolve under the components root with a fixed file name; library assets
// resolve under the libraries root and may carry nested sub-paths.
package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/signstack/creative-server/assets"
	"github.com/signstack/creative-server/errortypes"
	"github.com/signstack/creative-server/minifier"

	"github.com/coocood/freecache"
	"github.com/golang/glog"
)

// Resolver loads one asset's source text.
//
// Failure to resolve is reported as an *errortypes.AssetResolution error; the
// bundle assembler renders it as an inline comment in debug output and
// excludes the asset in production output. Minification failures are never
// fatal: the raw text is returned and the error logged.
type Resolver interface {
	Resolve(ctx context.Context, name string, location assets.Location, assetType assets.Type, minify bool) (string, error)
}

// New builds the file-backed resolver. Resolved content is kept in a
// freecache-backed byte cache so hot assets skip disk on repeat bundles; a
// zero cacheSize disables caching.
func New(componentsRoot, librariesRoot string, min minifier.Minifier, cacheSize int, cacheTTLSeconds int) Resolver {
	r := &fileResolver{
		componentsRoot:  componentsRoot,
		librariesRoot:   librariesRoot,
		min:             min,
		cacheTTLSeconds: cacheTTLSeconds,
	}
	if cacheSize > 0 {
		r.cache = freecache.NewCache(cacheSize)
	}
	return r
}

type fileResolver struct {
	componentsRoot  string
	librariesRoot   string
	min             minifier.Minifier
	cache           *freecache.Cache
	cacheTTLSeconds int
}

func (r *fileResolver) Resolve(ctx context.Context, name string, location assets.Location, assetType assets.Type, minify bool) (string, error) {
	path, err := r.sourcePath(name, location, assetType)
	if err != nil {
		return "", err
	}

	key := cacheKey(name, location, assetType, minify)
	if r.cache != nil {
		if cached, err := r.cache.Get(key); err == nil {
			return string(cached), nil
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", &errortypes.AssetResolution{
			Message: fmt.Sprintf("asset source %s/%s.%s not found", location, name, assetType),
		}
	}
	if err != nil {
		return "", &errortypes.AssetResolution{
			Message: fmt.Sprintf("asset source %s/%s.%s unreadable: %v", location, name, assetType, err),
		}
	}

	content := string(data)
	if minify {
		out := r.min.Minify(assetType, content)
		if out.HasErrors {
			glog.Errorf("Minification of %s/%s.%s failed, serving raw source: %v",
				location, name, assetType, errortypes.NewAggregateErrors("minify", out.Errors))
		} else {
			content = out.Code
		}
	}

	if r.cache != nil {
		if err := r.cache.Set(key, []byte(content), r.cacheTTLSeconds); err != nil && glog.V(2) {
			glog.Infof("Asset cache set failed for %s: %v", key, err)
		}
	}
	return content, nil
}

// sourcePath maps a descriptor to its backing file. Widget and layout sources
// use the fixed name "Default.{js,css}" inside the component's directory;
// library names may nest, e.g. "Tickers/News" -> Libraries/Tickers/News.js.
func (r *fileResolver) sourcePath(name string, location assets.Location, assetType assets.Type) (string, error) {
	if strings.Contains(name, "..") {
		return "", &errortypes.AssetResolution{
			Message: fmt.Sprintf("invalid asset name %q", name),
		}
	}

	switch location {
	case assets.LocationWidgets, assets.LocationLayouts:
		return filepath.Join(r.componentsRoot, name, "Default."+string(assetType)), nil
	case assets.LocationLibraries:
		return filepath.Join(r.librariesRoot, filepath.FromSlash(name)+"."+string(assetType)), nil
	}
	return "", &errortypes.AssetResolution{
		Message: fmt.Sprintf("invalid asset location %q for %s.%s", location, name, assetType),
	}
}

func cacheKey(name string, location assets.Location, assetType assets.Type, minify bool) []byte {
	suffix := ""
	if minify {
		suffix = ".min"
	}
	return []byte(string(location) + "/" + name + "." + string(assetType) + suffix)
}
