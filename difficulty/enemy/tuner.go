package enemy

import (
	"math"
	"math/rand"

	"frontline-lite/difficulty"
)

// TunedStats are the effective numbers a spawned enemy fights with.
type TunedStats struct {
	Health     float64 `json:"health"`
	Damage     float64 `json:"damage"`
	Speed      float64 `json:"speed"`
	Accuracy   float64 `json:"accuracy"`
	ReactionMs float64 `json:"reactionMs"`
	Aggression float64 `json:"aggression"`
	Flanking   float64 `json:"flanking"`
	CoverUse   float64 `json:"coverUse"`
}

// Tuner applies difficulty multipliers to archetype base stats.
type Tuner struct {
	rng *rand.Rand
}

// NewTuner creates a Tuner with its own noise source.
func NewTuner(seed int64) *Tuner {
	return &Tuner{rng: rand.New(rand.NewSource(seed))}
}

// Tune scales an archetype by the settings. Randomness adds per-spawn noise
// so two enemies of the same type do not fight identically.
func (t *Tuner) Tune(a *Archetype, s difficulty.DifficultySettings) TunedStats {
	b := a.Behavior
	noise := func(scale float64) float64 {
		return 1 + (t.rng.Float64()-0.5)*b.Randomness*scale
	}

	// Smarter AI pushes and flanks more and hides less.
	smarts := s.AIIntelligence
	return TunedStats{
		Health:     a.Stats.Health * s.EnemyHealth * noise(0.2),
		Damage:     a.Stats.Damage * s.EnemyDamage * noise(0.2),
		Speed:      a.Stats.Speed * s.EnemySpeed,
		Accuracy:   clamp(a.Stats.Accuracy*s.EnemyAccuracy*noise(0.1), 0.05, 0.98),
		ReactionMs: math.Max(100, a.Stats.ReactionMs*s.AIReactionTime),
		Aggression: clamp01(b.Aggression * (0.5 + 0.5*smarts)),
		Flanking:   clamp01(b.Flanking * smarts),
		CoverUse:   clamp01(b.CoverUse * (0.5 + 0.5*smarts)),
	}
}

// WaveSize scales a designer's base head count; never below one.
func WaveSize(base int, s difficulty.DifficultySettings) int {
	n := int(math.Round(float64(base) * s.EnemyCount))
	if n < 1 {
		return 1
	}
	return n
}

// SpawnIntervalMs shortens the spawn cadence as SpawnRate rises.
func SpawnIntervalMs(baseMs int64, s difficulty.DifficultySettings) int64 {
	if s.SpawnRate <= 0 {
		return baseMs
	}
	return int64(math.Round(float64(baseMs) / s.SpawnRate))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
