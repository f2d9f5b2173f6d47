package enemy

// BaseStats are the unscaled combat numbers of an archetype at difficulty 1.0.
type BaseStats struct {
	Health     float64 `json:"health"`
	Damage     float64 `json:"damage"`
	Speed      float64 `json:"speed"`
	Accuracy   float64 `json:"accuracy"`   // 0.0–1.0 hit chance
	ReactionMs float64 `json:"reactionMs"` // time to acquire a target
}

// BehaviorProfile defines the tunable tactical parameters of an archetype.
type BehaviorProfile struct {
	Aggression float64 `json:"aggression"` // 0.0–1.0: push vs hold
	Flanking   float64 `json:"flanking"`   // 0.0–1.0: flank attempt frequency
	CoverUse   float64 `json:"coverUse"`   // 0.0–1.0: time spent in cover
	Randomness float64 `json:"randomness"` // 0.0–1.0: per-spawn stat noise
}

// Archetype defines a named enemy type.
type Archetype struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Role     string          `json:"role"`
	Tier     int             `json:"tier"` // 1=elite, 2=regular, 3=fodder
	Stats    BaseStats       `json:"stats"`
	Behavior BehaviorProfile `json:"behavior"`
}
