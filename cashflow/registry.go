package cashflow

// Registry collects every Model reachable from a Deal before the
// orchestrator topologically sorts them into passes.
type Registry struct {
	models map[string]Model
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Model)}
}

// Register adds m to the registry, keyed by its own ID. Registering two
// models under the same ID replaces the first — callers are responsible
// for using collision-free IDs (the reference models use one fixed ID per
// model type, so a registry holds at most one of each).
func (r *Registry) Register(m Model) {
	r.models[m.ID()] = m
}

// Get looks up a model by ID.
func (r *Registry) Get(id string) (Model, bool) {
	m, ok := r.models[id]
	return m, ok
}

// All returns every registered model in no particular order; the
// orchestrator is responsible for ordering.
func (r *Registry) All() []Model {
	out := make([]Model, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	return out
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	return len(r.models)
}
