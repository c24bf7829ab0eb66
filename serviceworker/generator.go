// Package serviceworker generates the per-creative offline-caching scripts:
// the service-worker cache manifest and its companion registration manager.
// Generation is literal placeholder substitution over template files, not a
// templating engine; template text must not contain the placeholder tokens
// outside their intended substitution points.
package serviceworker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/signstack/creative-server/assets"
	"github.com/signstack/creative-server/bundle"
	"github.com/signstack/creative-server/errortypes"
	"github.com/signstack/creative-server/minifier"

	"github.com/golang/glog"
)

const (
	manifestTemplate = "cache-manifest.js"
	managerTemplate  = "manager.js"
)

type Generator struct {
	cache        bundle.EntrySource
	min          minifier.Minifier
	templatesDir string
	viewType     string
}

func New(cache bundle.EntrySource, min minifier.Minifier, templatesDir, viewType string) *Generator {
	return &Generator{
		cache:        cache,
		min:          min,
		templatesDir: templatesDir,
		viewType:     viewType,
	}
}

// Manifest builds the service-worker script precaching the creative's four
// bundle URLs plus its discovered media URLs. A missing template is terminal:
// there is no safe fallback content.
func (g *Generator) Manifest(ctx context.Context, creativeID string, debug bool) (string, error) {
	entry, err := g.cache.Get(ctx, creativeID)
	if err != nil {
		return "", err
	}

	tmpl, err := g.loadTemplate(manifestTemplate)
	if err != nil {
		return "", err
	}

	files := []string{
		bundle.URL(creativeID, bundle.KindComponents, assets.TypeJS, debug),
		bundle.URL(creativeID, bundle.KindLibraries, assets.TypeJS, debug),
		bundle.URL(creativeID, bundle.KindLibraries, assets.TypeCSS, debug),
		bundle.URL(creativeID, bundle.KindComponents, assets.TypeCSS, debug),
	}
	files = append(files, entry.MediaURLs...)

	script := tmpl
	script = strings.ReplaceAll(script, "{{creativeId}}", jsEscape(creativeID))
	script = strings.ReplaceAll(script, "{{filesToCache}}", jsonArray(files))
	script = strings.ReplaceAll(script, "{{excludedUrls}}", jsonArray(entry.ExcludedURLs))

	return g.finish(script, creativeID, manifestTemplate, debug), nil
}

// Manager builds the client-side control script providing the
// register/unregister/clearCache/skipCache functions, plus an always-on
// listener that registers the worker once the creative-ready signal fires.
func (g *Generator) Manager(ctx context.Context, creativeID string, debug bool) (string, error) {
	if _, err := g.cache.Get(ctx, creativeID); err != nil {
		return "", err
	}

	tmpl, err := g.loadTemplate(managerTemplate)
	if err != nil {
		return "", err
	}

	script := tmpl
	script = strings.ReplaceAll(script, "{{viewType}}", jsEscape(g.viewType))
	script = strings.ReplaceAll(script, "{{creativeId}}", jsEscape(creativeID))
	script = strings.ReplaceAll(script, "{{minSuffix}}", bundle.MinSuffix(debug))

	script += "\ndocument.addEventListener('creative-ready', function () { register(); });\n"

	return g.finish(script, creativeID, managerTemplate, debug), nil
}

func (g *Generator) loadTemplate(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(g.templatesDir, name))
	if os.IsNotExist(err) {
		return "", &errortypes.TemplateMissing{
			Message: fmt.Sprintf("service-worker template %s not found", name),
		}
	}
	if err != nil {
		return "", &errortypes.TemplateMissing{
			Message: fmt.Sprintf("service-worker template %s unreadable: %v", name, err),
		}
	}
	return string(data), nil
}

func (g *Generator) finish(script, creativeID, templateName string, debug bool) string {
	if debug {
		return script
	}
	out := g.min.Minify(assets.TypeJS, script)
	if out.HasErrors {
		glog.Errorf("Minification of %s for creative %q failed, serving unminified: %v",
			templateName, creativeID, errortypes.NewAggregateErrors("minify", out.Errors))
		return script
	}
	return out.Code
}

// jsEscape makes a string safe for embedding inside a quoted JavaScript
// literal, in case creative ids are ever externally influenced.
func jsEscape(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted[1 : len(quoted)-1])
}

// jsonArray renders a JSON array literal, never "null".
func jsonArray(values []string) string {
	if values == nil {
		values = []string{}
	}
	out, _ := json.Marshal(values)
	return string(out)
}
