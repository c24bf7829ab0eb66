package merge

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/signstack/creative-server/assets"
	"github.com/signstack/creative-server/creative"

	"github.com/golang/glog"
)

// Prober discovers the animation-library variants shipped for a component
// type, e.g. Libraries/Animations/CountdownWidget/Flip.js. Variants are
// optional per-type extras (flip, roll) that must load after the base
// libraries, hence the animation priority band.
type Prober interface {
	// AnimationAssets returns library descriptors for the given kind in a
	// deterministic order.
	AnimationAssets(kind creative.Kind) []assets.Descriptor
}

// NewFileProber scans "{librariesRoot}/Animations/{Type}" for every known
// component type once at startup. Directory listings are sorted by file name,
// so the priority sequence is stable across restarts.
func NewFileProber(librariesRoot string) Prober {
	discovered := make(map[creative.Kind][]assets.Descriptor)
	for _, kind := range creative.Kinds() {
		dir := filepath.Join(librariesRoot, "Animations", string(kind))
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			glog.Errorf("Error probing animation variants in %s: %v", dir, err)
			continue
		}

		priority := assets.PriorityAnimation
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			ext := strings.TrimPrefix(filepath.Ext(name), ".")
			if ext != string(assets.TypeJS) && ext != string(assets.TypeCSS) {
				continue
			}
			discovered[kind] = append(discovered[kind], assets.Descriptor{
				Name:     "Animations/" + string(kind) + "/" + strings.TrimSuffix(name, filepath.Ext(name)),
				Location: assets.LocationLibraries,
				Type:     assets.Type(ext),
				Priority: priority,
			})
			priority++
		}
	}
	return &fileProber{discovered: discovered}
}

type fileProber struct {
	discovered map[creative.Kind][]assets.Descriptor
}

func (p *fileProber) AnimationAssets(kind creative.Kind) []assets.Descriptor {
	return p.discovered[kind]
}
