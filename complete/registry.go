package complete

import "fmt"

type entry struct {
	name     string
	provider Provider
}

// Registry is an insertion-ordered collection of named providers.
// Registering an existing name replaces the provider in place, keeping
// its position. A Registry is not safe for concurrent mutation.
type Registry struct {
	order []entry
	index map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

// Add registers provider under name, at the end of the order, or in
// place when the name already exists.
func (r *Registry) Add(name string, provider Provider) {
	if i, ok := r.index[name]; ok {
		r.order[i].provider = provider
		return
	}
	r.index[name] = len(r.order)
	r.order = append(r.order, entry{name: name, provider: provider})
}

// AddBefore registers provider immediately before an existing name.
func (r *Registry) AddBefore(name string, provider Provider, before string) error {
	if _, ok := r.index[before]; !ok {
		return fmt.Errorf("complete: no provider %q", before)
	}
	if _, ok := r.index[name]; ok {
		r.Remove(name)
	}
	pos := r.index[before]
	r.order = append(r.order, entry{})
	copy(r.order[pos+1:], r.order[pos:])
	r.order[pos] = entry{name: name, provider: provider}
	r.reindex()
	return nil
}

// Remove unregisters name. Removing an unknown name is a no-op.
func (r *Registry) Remove(name string) {
	i, ok := r.index[name]
	if !ok {
		return
	}
	r.order = append(r.order[:i], r.order[i+1:]...)
	r.reindex()
}

// Names returns the provider names in consultation order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	for i, e := range r.order {
		out[i] = e.name
	}
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) entries() []entry {
	return r.order
}

func (r *Registry) reindex() {
	r.index = make(map[string]int, len(r.order))
	for i, e := range r.order {
		r.index[e.name] = i
	}
}
