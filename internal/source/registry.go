package source

import "github.com/rotisserie/eris"

// Registry maps source names to their implementations, preserving
// registration order so a full run always executes map before clean before
// enrich.
type Registry struct {
	sources map[string]Source
	order   []string
}

// NewRegistry creates a registry populated with the full pipeline.
func NewRegistry() *Registry {
	r := &Registry{sources: make(map[string]Source)}

	// Stage map
	r.Register(&RegionalMap{})

	// Stage clean
	r.Register(&Disque100{})
	r.Register(&Seguranca{})
	r.Register(&SerieMensal{})

	// Stage enrich
	r.Register(&Enriquecimento{})

	return r
}

// Register adds a source to the registry.
func (r *Registry) Register(s Source) {
	r.sources[s.Name()] = s
	r.order = append(r.order, s.Name())
}

// Get returns a source by name.
func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, eris.Errorf("source: unknown source %q", name)
	}
	return s, nil
}

// Select returns sources matching the criteria, in registration order.
// If stage is non-nil, only sources in that stage are returned. If names
// is non-empty, only those sources are returned (still stage-filtered).
func (r *Registry) Select(stage *Stage, names []string) ([]Source, error) {
	if len(names) > 0 {
		var out []Source
		for _, name := range names {
			s, err := r.Get(name)
			if err != nil {
				return nil, err
			}
			if stage != nil && s.Stage() != *stage {
				continue
			}
			out = append(out, s)
		}
		return out, nil
	}

	var out []Source
	for _, name := range r.order {
		s := r.sources[name]
		if stage != nil && s.Stage() != *stage {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// AllNames returns every registered source name in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
