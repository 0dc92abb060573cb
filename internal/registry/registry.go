package registry

import (
	"sync"

	"github.com/vk/pipedef/internal/pipeline"
)

// Registry stores build definitions and VCS roots by id.
type Registry struct {
	mu sync.RWMutex

	definitions map[string]*pipeline.BuildDefinition
	order       []string

	vcsRoots     map[string]*pipeline.VcsRoot
	vcsRootOrder []string
}

// New creates and initializes a new, empty Registry.
func New() *Registry {
	return &Registry{
		definitions: make(map[string]*pipeline.BuildDefinition),
		vcsRoots:    make(map[string]*pipeline.VcsRoot),
	}
}

// Register adds a build definition keyed by its id. If the id is already
// taken the registry is left unchanged and a *pipeline.DuplicateIDError is
// returned.
func (r *Registry) Register(def *pipeline.BuildDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[def.ID()]; exists {
		return &pipeline.DuplicateIDError{Kind: "build type", ID: def.ID()}
	}
	r.definitions[def.ID()] = def
	r.order = append(r.order, def.ID())
	return nil
}

// Get returns the build definition registered under id, or a
// *pipeline.NotFoundError.
func (r *Registry) Get(id string) (*pipeline.BuildDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[id]
	if !ok {
		return nil, &pipeline.NotFoundError{Kind: "build type", ID: id}
	}
	return def, nil
}

// Has reports whether a build definition with id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.definitions[id]
	return ok
}

// Definitions returns all build definitions in insertion order.
func (r *Registry) Definitions() []*pipeline.BuildDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*pipeline.BuildDefinition, 0, len(r.order))
	for _, id := range r.order {
		defs = append(defs, r.definitions[id])
	}
	return defs
}

// Len returns the number of registered build definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// RegisterVcsRoot adds a VCS root keyed by its id.
func (r *Registry) RegisterVcsRoot(root *pipeline.VcsRoot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.vcsRoots[root.ID()]; exists {
		return &pipeline.DuplicateIDError{Kind: "vcs root", ID: root.ID()}
	}
	r.vcsRoots[root.ID()] = root
	r.vcsRootOrder = append(r.vcsRootOrder, root.ID())
	return nil
}

// VcsRoot returns the VCS root registered under id.
func (r *Registry) VcsRoot(id string) (*pipeline.VcsRoot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	root, ok := r.vcsRoots[id]
	if !ok {
		return nil, &pipeline.NotFoundError{Kind: "vcs root", ID: id}
	}
	return root, nil
}

// VcsRoots returns all VCS roots in insertion order.
func (r *Registry) VcsRoots() []*pipeline.VcsRoot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roots := make([]*pipeline.VcsRoot, 0, len(r.vcsRootOrder))
	for _, id := range r.vcsRootOrder {
		roots = append(roots, r.vcsRoots[id])
	}
	return roots
}
