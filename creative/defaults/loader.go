// Package defaults loads per-component-type default definitions. Each
// component type may ship a "{Type}/Default.json" resource under the
// components root whose shape mirrors the live component's serializable
// fields; field matching is case-insensitive.
package defaults

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/signstack/creative-server/creative"

	"github.com/golang/glog"
)

// Loader resolves a component type name to its default definition.
//
// Implementations return nil, not an error, when no definition exists; the
// merger treats that as "no defaults to merge."
type Loader interface {
	Defaults(typeName string) creative.Component
}

// NewFileLoader eagerly loads every known component type's Default.json from
// the components root. These are kept in memory for low-latency reads.
//
// A missing file means the type has no defaults. A file that fails to
// deserialize is logged and likewise degrades to no defaults, since a broken
// definition should degrade the creative rather than fail the render.
func NewFileLoader(componentsRoot string) Loader {
	definitions := make(map[string]creative.Component)
	for _, kind := range creative.Kinds() {
		path := filepath.Join(componentsRoot, string(kind), "Default.json")
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			glog.Errorf("Error reading default definition %s: %v", path, err)
			continue
		}

		component := creative.NewOfKind(kind)
		if err := json.Unmarshal(data, component); err != nil {
			glog.Errorf("Error parsing default definition %s: %v", path, err)
			continue
		}
		definitions[string(kind)] = component
	}
	return &fileLoader{definitions: definitions}
}

type fileLoader struct {
	definitions map[string]creative.Component
}

func (l *fileLoader) Defaults(typeName string) creative.Component {
	return l.definitions[normalizeTypeName(typeName)]
}

// normalizeTypeName strips implementation suffixes left over from the content
// API's serializer, e.g. "TextWidgetComponent" -> "TextWidget".
func normalizeTypeName(typeName string) string {
	return strings.TrimSuffix(typeName, "Component")
}
