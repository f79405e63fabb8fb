package genome

import "sync"

// Registry memoizes loaded genomes by build name.  It replaces the weak
// reference caches of other toolkits with an explicit dictionary plus
// explicit invalidation; entries live until Invalidate is called.
type Registry struct {
	mu      sync.Mutex
	genomes map[string]*Genome
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{genomes: make(map[string]*Genome)}
}

// Get returns the cached genome for build, calling load on a miss.  A
// failed load caches nothing, so the next Get retries.
func (r *Registry) Get(build string, load func() (*Genome, error)) (*Genome, error) {
	r.mu.Lock()
	g, ok := r.genomes[build]
	r.mu.Unlock()
	if ok {
		return g, nil
	}
	// Loads can hit the filesystem; run them outside the lock.  Two
	// concurrent misses for the same build both load, last writer wins;
	// genomes are immutable so either copy is fine to hand out.
	g, err := load()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.genomes[build] = g
	r.mu.Unlock()
	return g, nil
}

// Invalidate drops the cached genome for build, if any.
func (r *Registry) Invalidate(build string) {
	r.mu.Lock()
	delete(r.genomes, build)
	r.mu.Unlock()
}
