package votes

import (
	"sync"
	"time"

	"timecoin/core/events"
)

// Registry owns one Collector per active subject and reclaims memory for
// subjects whose decision has aged past the retention window. It is the
// piece that makes the Collector usable at scale: tx finality, block
// rounds, and treasury proposals each run their own Registry instance.
type Registry[K comparable] struct {
	mu        sync.Mutex
	retention time.Duration
	emitter   events.Emitter
	subjects  map[K]*Collector[K]
}

// NewRegistry creates a registry that garbage-collects decided subjects
// after retention has elapsed.
func NewRegistry[K comparable](retention time.Duration, emitter events.Emitter) *Registry[K] {
	return &Registry[K]{
		retention: retention,
		emitter:   emitter,
		subjects:  make(map[K]*Collector[K]),
	}
}

// Collector returns the collector for subject, creating one if absent.
func (r *Registry[K]) Collector(subject K) *Collector[K] {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.subjects[subject]
	if !ok {
		c = NewCollector[K](subject, r.emitter)
		r.subjects[subject] = c
	}
	return c
}

// Get returns the collector for subject if it exists, without creating one.
func (r *Registry[K]) Get(subject K) (*Collector[K], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.subjects[subject]
	return c, ok
}

// Len reports how many subjects are currently tracked.
func (r *Registry[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subjects)
}

// GC drops every collector whose decision is older than the retention
// window. It returns the number of subjects reclaimed.
func (r *Registry[K]) GC(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	reclaimed := 0
	for k, c := range r.subjects {
		if c.Expired(now, r.retention) {
			delete(r.subjects, k)
			reclaimed++
		}
	}
	return reclaimed
}
