// Package merge implements the creative defaults merge and asset discovery
// walk. One call to Merger.MergeDefaults processes one creative document in
// place: every component in the tree has its per-type default definition
// merged into it without clobbering explicit values, and every referenced
// component/library asset is registered into the request-scoped registry.
package merge

import (
	"encoding/json"
	"fmt"

	"github.com/signstack/creative-server/assets"
	"github.com/signstack/creative-server/creative"
	"github.com/signstack/creative-server/creative/defaults"
	"github.com/signstack/creative-server/errortypes"

	"github.com/buger/jsonparser"
	"github.com/golang/glog"
	jsonpatch "gopkg.in/evanphx/json-patch.v5"
)

// Always-present base runtime assets. The ticker must load before any widget
// that depends on it, so both sit below every component priority.
const (
	tickerAsset      = "Ticker"
	initializerAsset = "Initializer"
)

type Merger struct {
	loader defaults.Loader
	prober Prober
}

func New(loader defaults.Loader, prober Prober) *Merger {
	return &Merger{
		loader: loader,
		prober: prober,
	}
}

// MergeDefaults mutates and returns the creative. Merge failures never abort
// the walk: missing defaults and shape mismatches are logged and skipped, so a
// broken definition degrades the creative's defaults rather than failing the
// whole render.
func (m *Merger) MergeDefaults(doc *creative.Document, reg *assets.Registry) *creative.Document {
	reg.Add(assets.Descriptor{
		Name:     tickerAsset,
		Location: assets.LocationWidgets,
		Type:     assets.TypeJS,
		Priority: assets.PriorityTicker,
	})
	reg.Add(assets.Descriptor{
		Name:     initializerAsset,
		Location: assets.LocationWidgets,
		Type:     assets.TypeJS,
		Priority: assets.PriorityInitializer,
	})

	for i := range doc.Pieces {
		if component := doc.Pieces[i].Component(); component != nil {
			m.walk(component, reg)
		}
	}
	return doc
}

// walk applies the component's own type defaults, registers its assets, then
// descends into child containers so every node in the tree is processed.
func (m *Merger) walk(instance creative.Component, reg *assets.Registry) {
	if def := m.loader.Defaults(string(instance.Kind())); def != nil {
		m.mergeComponent(instance, def)
	}
	m.registerAssets(instance.Kind(), reg)

	for _, container := range instance.Contents() {
		if child := container.Component(); child != nil {
			m.walk(child, reg)
		}
	}
}

// mergeComponent merges one default definition into one instance node.
//
// Scalar and style fields go through a JSON merge patch with the instance as
// the patch: present instance values always win, absent ones are filled from
// the default. Child content lists are zipped positionally up to the shorter
// length; trailing default-only entries never add new slots.
func (m *Merger) mergeComponent(instance, def creative.Component) {
	if instance.Kind() != def.Kind() {
		glog.Warning(&errortypes.MergeTypeMismatch{
			Message: fmt.Sprintf("skipping defaults merge: instance type %s does not match default type %s", instance.Kind(), def.Kind()),
		})
		return
	}

	instanceJSON, err := json.Marshal(instance)
	if err != nil {
		glog.Errorf("Error serializing %s instance for defaults merge: %v", instance.Kind(), err)
		return
	}
	defJSON, err := json.Marshal(def)
	if err != nil {
		glog.Errorf("Error serializing %s defaults for merge: %v", def.Kind(), err)
		return
	}

	// Contents are merged positionally below, never through the patch.
	instanceJSON = jsonparser.Delete(instanceJSON, "contents")
	defJSON = jsonparser.Delete(defJSON, "contents")

	merged, err := jsonpatch.MergePatch(defJSON, instanceJSON)
	if err != nil {
		glog.Errorf("Error merging defaults into %s: %v", instance.Kind(), err)
		return
	}
	if err := json.Unmarshal(merged, instance); err != nil {
		glog.Errorf("Error applying merged defaults to %s: %v", instance.Kind(), err)
		return
	}

	m.mergeContents(instance, def)
}

func (m *Merger) mergeContents(instance, def creative.Component) {
	instanceContents := instance.Contents()
	defContents := def.Contents()

	n := len(instanceContents)
	if len(defContents) < n {
		n = len(defContents)
	}
	for i := 0; i < n; i++ {
		instanceChild := instanceContents[i].Component()
		defChild := defContents[i].Component()
		if instanceChild == nil || defChild == nil {
			continue
		}
		if instanceChild.Kind() != defChild.Kind() {
			glog.Warning(&errortypes.MergeTypeMismatch{
				Message: fmt.Sprintf("skipping defaults merge at content index %d: instance type %s does not match default type %s",
					i, instanceChild.Kind(), defChild.Kind()),
			})
			continue
		}
		m.mergeComponent(instanceChild, defChild)
	}
}

// registerAssets records the component's own js/css assets plus any animation
// library variants shipped for its type.
func (m *Merger) registerAssets(kind creative.Kind, reg *assets.Registry) {
	location := assets.LocationWidgets
	if kind.IsLayout() {
		location = assets.LocationLayouts
	}

	reg.Add(assets.Descriptor{
		Name:     string(kind),
		Location: location,
		Type:     assets.TypeJS,
		Priority: assets.PriorityDefault,
	})
	reg.Add(assets.Descriptor{
		Name:     string(kind),
		Location: location,
		Type:     assets.TypeCSS,
		Priority: assets.PriorityDefault,
	})

	if m.prober != nil {
		for _, d := range m.prober.AnimationAssets(kind) {
			reg.Add(d)
		}
	}
}
