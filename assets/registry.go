package assets

// Registry accumulates the assets referenced by one creative's tree during one
// discovery pass. It is a plain local value threaded through the walk; it is
// not safe for concurrent use and is never shared between requests.
type Registry struct {
	seen    map[identity]struct{}
	ordered []Descriptor
}

type identity struct {
	name      string
	location  Location
	assetType Type
}

func NewRegistry() *Registry {
	return &Registry{
		seen: make(map[identity]struct{}),
	}
}

// Add registers a descriptor, preserving discovery order. Duplicates under the
// (name, type, location) identity are dropped; the first registration's
// priority wins, which keeps ordering deterministic.
func (r *Registry) Add(d Descriptor) bool {
	id := identity{name: d.Name, location: d.Location, assetType: d.Type}
	if _, ok := r.seen[id]; ok {
		return false
	}
	r.seen[id] = struct{}{}
	r.ordered = append(r.ordered, d)
	return true
}

// All returns every registered descriptor in discovery order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Components returns the descriptors outside the Libraries namespace.
func (r *Registry) Components() []Descriptor {
	return r.filter(func(d Descriptor) bool { return d.Location != LocationLibraries })
}

// Libraries returns the descriptors under the Libraries namespace.
func (r *Registry) Libraries() []Descriptor {
	return r.filter(func(d Descriptor) bool { return d.Location == LocationLibraries })
}

func (r *Registry) filter(keep func(Descriptor) bool) []Descriptor {
	out := make([]Descriptor, 0, len(r.ordered))
	for _, d := range r.ordered {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Len reports the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.ordered)
}
