package nav

import "sync"

// ProgramCache stores compiled guard programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryProgramCache is a ProgramCache backed by a map.
type MemoryProgramCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryProgramCache returns an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{programs: make(map[string]any)}
}

// Get implements ProgramCache.
func (c *MemoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

// Set implements ProgramCache.
func (c *MemoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.programs == nil {
		c.programs = make(map[string]any)
	}
	c.programs[key] = value
}

// Len returns the number of cached programs.
func (c *MemoryProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// WithProgramCache registers a program cache used by the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.programCache = cache
	}
}
