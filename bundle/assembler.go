// Package bundle assembles per-creative JS/CSS bundles from discovered asset
// lists: filter, order, concatenate, augment, minify.
package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/signstack/creative-server/assets"
	"github.com/signstack/creative-server/assets/resolver"
	"github.com/signstack/creative-server/creativecache"
	"github.com/signstack/creative-server/errortypes"
	"github.com/signstack/creative-server/minifier"
	"github.com/signstack/creative-server/util/timeutil"

	"github.com/golang/glog"
)

// Kind selects which logical group a bundle serves.
type Kind string

const (
	KindComponents Kind = "components"
	KindLibraries  Kind = "libraries"
)

const (
	ContentTypeJS  = "application/javascript"
	ContentTypeCSS = "text/css"
)

// Widget families recognized by the production auto-initialization block, in
// emission order.
var widgetFamilies = []string{
	"CardWidget",
	"TextWidget",
	"ImageWidget",
	"VideoWidget",
	"CountdownWidget",
}

// EntrySource yields a creative's cached build output, building it on a miss.
// *creativecache.Cache is the production implementation.
type EntrySource interface {
	Get(ctx context.Context, id string) (*creativecache.Entry, error)
}

type Assembler struct {
	cache    EntrySource
	resolver resolver.Resolver
	min      minifier.Minifier
	clock    timeutil.Time
}

func New(cache EntrySource, res resolver.Resolver, min minifier.Minifier, clock timeutil.Time) *Assembler {
	return &Assembler{
		cache:    cache,
		resolver: res,
		min:      min,
		clock:    clock,
	}
}

// Assemble builds one bundle and returns its content and MIME type.
//
// An unknown creative id is terminal. Per-asset resolution failures are not:
// in debug mode the failed asset becomes an inline error comment, in
// production it is excluded, and in both cases the rest of the bundle is
// delivered. Minification failures fall back to the unminified concatenation.
func (a *Assembler) Assemble(ctx context.Context, creativeID string, assetType assets.Type, kind Kind, debug bool) (string, string, error) {
	entry, err := a.cache.Get(ctx, creativeID)
	if err != nil {
		return "", "", err
	}

	list := entry.ComponentAssets
	if kind == KindLibraries {
		list = entry.LibraryAssets
	}
	ordered := orderedOfType(list, assetType)

	var b strings.Builder
	if debug {
		fmt.Fprintf(&b, "/* Bundle %s.%s.bundle.%s generated %s with %d assets */\n",
			creativeID, kind, assetType, a.clock.Now().UTC().Format("2006-01-02T15:04:05Z"), len(ordered))
	}

	for _, d := range ordered {
		// Always resolve unminified; the concatenated blob is minified once at
		// the end so the minifier never sees broken fragment boundaries.
		content, err := a.resolver.Resolve(ctx, d.Name, d.Location, d.Type, false)
		if err != nil {
			glog.Warningf("Excluding asset %s from bundle %s.%s.bundle.%s: %v", d.Path(), creativeID, kind, assetType, err)
			if debug {
				fmt.Fprintf(&b, "/* ERROR %s: %v */\n", d.Path(), err)
			}
			continue
		}

		if debug {
			fmt.Fprintf(&b, "/* BEGIN %s */\n", d.Path())
			b.WriteString(content)
			if !strings.HasSuffix(content, "\n") {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "/* END %s */\n", d.Path())
		} else {
			b.WriteString(content)
			if !strings.HasSuffix(content, "\n") {
				b.WriteString("\n")
			}
		}
	}

	content := b.String()

	if kind == KindComponents && assetType == assets.TypeJS && !debug && !containsLibraries(ordered) {
		content += initializationBlock(creativeID, ordered)
	}

	if !debug {
		out := a.min.Minify(assetType, content)
		if out.HasErrors {
			glog.Errorf("Minification of bundle %s.%s.bundle.%s failed, serving unminified: %v",
				creativeID, kind, assetType, errortypes.NewAggregateErrors("minify", out.Errors))
		} else {
			content = out.Code
		}
	}

	contentType := ContentTypeJS
	if assetType == assets.TypeCSS {
		contentType = ContentTypeCSS
	}
	return content, contentType, nil
}

// orderedOfType filters to the requested asset type and sorts ascending by
// priority. The sort is stable: ties keep discovery order, which is
// load-order-significant.
func orderedOfType(list []assets.Descriptor, assetType assets.Type) []assets.Descriptor {
	ordered := make([]assets.Descriptor, 0, len(list))
	for _, d := range list {
		if d.Type == assetType {
			ordered = append(ordered, d)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})
	return ordered
}

func containsLibraries(list []assets.Descriptor) bool {
	for _, d := range list {
		if d.Location == assets.LocationLibraries {
			return true
		}
	}
	return false
}

// initializationBlock emits one render call per widget family present in the
// bundle, then dispatches the creative-ready signal that downstream code uses
// to trigger service-worker registration.
func initializationBlock(creativeID string, list []assets.Descriptor) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, family := range widgetFamilies {
		for _, d := range list {
			if strings.Contains(d.Name, family) {
				fmt.Fprintf(&b, "render%ss();\n", family)
				break
			}
		}
	}

	// The id is embedded in generated JavaScript, so escape it.
	id, _ := json.Marshal(creativeID)
	fmt.Fprintf(&b, "document.dispatchEvent(new CustomEvent('creative-ready', { detail: { creativeId: %s } }));\n", id)
	return b.String()
}
