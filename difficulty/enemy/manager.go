package enemy

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"

	"frontline-lite/difficulty"
)

var ErrUnknownArchetype = errors.New("unknown enemy archetype")

// Instance represents a spawned enemy.
type Instance struct {
	ID        uint64     `json:"id"`
	Archetype *Archetype `json:"archetype"`
	Stats     TunedStats `json:"stats"`
}

// Manager tracks live enemies and keeps them tuned to the current settings.
type Manager struct {
	registry  *Registry
	tuner     *Tuner
	instances map[uint64]*Instance
	mu        sync.RWMutex
	rng       *rand.Rand
	nextID    uint64
}

// NewManager creates an enemy manager. The seed drives both archetype picks
// and per-spawn noise.
func NewManager(registry *Registry, seed int64) *Manager {
	rng := rand.New(rand.NewSource(seed))
	return &Manager{
		registry:  registry,
		tuner:     NewTuner(rng.Int63()),
		instances: make(map[uint64]*Instance),
		rng:       rng,
	}
}

func (m *Manager) Registry() *Registry { return m.registry }

// Spawn creates one enemy of the archetype tuned to s.
func (m *Manager) Spawn(archetypeID string, s difficulty.DifficultySettings) (*Instance, error) {
	a := m.registry.Get(archetypeID)
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArchetype, archetypeID)
	}

	m.mu.Lock()
	m.nextID++
	inst := &Instance{
		ID:        m.nextID,
		Archetype: a,
		Stats:     m.tuner.Tune(a, s),
	}
	m.instances[inst.ID] = inst
	m.mu.Unlock()

	log.Printf("[Enemy] Spawned %s (ID=%d) hp=%.0f dmg=%.1f acc=%.2f",
		a.Name, inst.ID, inst.Stats.Health, inst.Stats.Damage, inst.Stats.Accuracy)
	return inst, nil
}

// SpawnWave spawns WaveSize(base, s) enemies drawn from a tier.
func (m *Manager) SpawnWave(tier, base int, s difficulty.DifficultySettings) ([]*Instance, error) {
	pool := m.registry.ByTier(tier)
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no archetypes in tier %d", ErrUnknownArchetype, tier)
	}
	n := WaveSize(base, s)
	out := make([]*Instance, 0, n)
	for i := 0; i < n; i++ {
		m.mu.Lock()
		pick := pool[m.rng.Intn(len(pool))]
		m.mu.Unlock()
		inst, err := m.Spawn(pick.ID, s)
		if err != nil {
			return out, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// Retune re-applies new settings to every live enemy.
func (m *Manager) Retune(s difficulty.DifficultySettings) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.sortedIDsLocked() {
		inst := m.instances[id]
		inst.Stats = m.tuner.Tune(inst.Archetype, s)
	}
	return len(m.instances)
}

func (m *Manager) Get(id uint64) *Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[id]
}

// Active returns live enemies ordered by ID.
func (m *Manager) Active() []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Instance, 0, len(m.instances))
	for _, id := range m.sortedIDsLocked() {
		out = append(out, m.instances[id])
	}
	return out
}

// Despawn removes an enemy from tracking.
func (m *Manager) Despawn(id uint64) {
	m.mu.Lock()
	inst := m.instances[id]
	delete(m.instances, id)
	m.mu.Unlock()

	if inst != nil {
		log.Printf("[Enemy] Despawned %s (ID=%d)", inst.Archetype.Name, id)
	}
}

// sortedIDsLocked keeps tuning order, and therefore noise, deterministic.
func (m *Manager) sortedIDsLocked() []uint64 {
	ids := make([]uint64, 0, len(m.instances))
	for id := range m.instances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
