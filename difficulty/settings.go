package difficulty

// DifficultySettings are multipliers the game applies to enemies and the
// environment. Every field is 1.0 at difficulty 1.0.
type DifficultySettings struct {
	CurrentDifficulty    float64 `json:"currentDifficulty"`
	EnemyHealth          float64 `json:"enemyHealth"`
	EnemyDamage          float64 `json:"enemyDamage"`
	EnemySpeed           float64 `json:"enemySpeed"`
	EnemyAccuracy        float64 `json:"enemyAccuracy"`
	EnemyCount           float64 `json:"enemyCount"`
	SpawnRate            float64 `json:"spawnRate"`
	ResourceAvailability float64 `json:"resourceAvailability"`
	ObjectiveDifficulty  float64 `json:"objectiveDifficulty"`
	EnvironmentalHazards float64 `json:"environmentalHazards"`
	AIIntelligence       float64 `json:"aiIntelligence"`
	AIReactionTime       float64 `json:"aiReactionTime"`
}

// DeriveSettings is a pure function of the difficulty scalar.
func DeriveSettings(d float64) DifficultySettings {
	return DifficultySettings{
		CurrentDifficulty:    d,
		EnemyHealth:          0.5 + 0.5*d,
		EnemyDamage:          0.6 + 0.4*d,
		EnemySpeed:           0.8 + 0.2*d,
		EnemyAccuracy:        0.85 + 0.15*d,
		EnemyCount:           0.5 + 0.5*d,
		SpawnRate:            0.7 + 0.3*d,
		ResourceAvailability: 1.2 - 0.2*d,
		ObjectiveDifficulty:  0.6 + 0.4*d,
		EnvironmentalHazards: 0.7 + 0.3*d,
		AIIntelligence:       0.5 + 0.5*d,
		AIReactionTime:       1.2 - 0.2*d,
	}
}

// changedFields counts the multipliers that differ between two settings.
func changedFields(a, b DifficultySettings) int {
	pairs := [][2]float64{
		{a.EnemyHealth, b.EnemyHealth},
		{a.EnemyDamage, b.EnemyDamage},
		{a.EnemySpeed, b.EnemySpeed},
		{a.EnemyAccuracy, b.EnemyAccuracy},
		{a.EnemyCount, b.EnemyCount},
		{a.SpawnRate, b.SpawnRate},
		{a.ResourceAvailability, b.ResourceAvailability},
		{a.ObjectiveDifficulty, b.ObjectiveDifficulty},
		{a.EnvironmentalHazards, b.EnvironmentalHazards},
		{a.AIIntelligence, b.AIIntelligence},
		{a.AIReactionTime, b.AIReactionTime},
	}
	n := 0
	for _, p := range pairs {
		if p[0] != p[1] {
			n++
		}
	}
	return n
}
