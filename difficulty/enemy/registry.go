package enemy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

//go:embed archetypes.json
var defaultArchetypes []byte

// Registry holds all archetype definitions.
type Registry struct {
	mu         sync.RWMutex
	archetypes map[string]*Archetype
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		archetypes: make(map[string]*Archetype),
	}
}

// DefaultRegistry returns a registry loaded with the built-in archetypes.
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadFromJSON(defaultArchetypes); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadFromFile loads archetypes from a JSON file.
func (r *Registry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read archetypes file: %w", err)
	}
	return r.LoadFromJSON(data)
}

// LoadFromJSON merges archetypes from raw JSON bytes. Entries without an ID
// are skipped.
func (r *Registry) LoadFromJSON(data []byte) error {
	var list []*Archetype
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse archetypes JSON: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range list {
		if a == nil || a.ID == "" {
			continue
		}
		r.archetypes[a.ID] = a
	}
	return nil
}

func (r *Registry) Get(id string) *Archetype {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.archetypes[id]
}

// All returns every archetype ordered by ID.
func (r *Registry) All() []*Archetype {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Archetype, 0, len(r.archetypes))
	for _, a := range r.archetypes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByTier returns the archetypes of a tier ordered by ID.
func (r *Registry) ByTier(tier int) []*Archetype {
	var out []*Archetype
	for _, a := range r.All() {
		if a.Tier == tier {
			out = append(out, a)
		}
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.archetypes)
}
