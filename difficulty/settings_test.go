package difficulty

import (
	"math"
	"testing"
)

func TestDeriveSettingsIsNeutralAtOne(t *testing.T) {
	s := DeriveSettings(1.0)
	for name, v := range map[string]float64{
		"enemyHealth":          s.EnemyHealth,
		"enemyDamage":          s.EnemyDamage,
		"enemySpeed":           s.EnemySpeed,
		"enemyAccuracy":        s.EnemyAccuracy,
		"enemyCount":           s.EnemyCount,
		"spawnRate":            s.SpawnRate,
		"resourceAvailability": s.ResourceAvailability,
		"objectiveDifficulty":  s.ObjectiveDifficulty,
		"environmentalHazards": s.EnvironmentalHazards,
		"aiIntelligence":       s.AIIntelligence,
		"aiReactionTime":       s.AIReactionTime,
	} {
		if math.Abs(v-1.0) > 1e-12 {
			t.Fatalf("%s at difficulty 1.0: got %v want 1.0", name, v)
		}
	}
}

func TestDeriveSettingsFollowsDifficulty(t *testing.T) {
	s := DeriveSettings(3.0)
	if s.EnemyHealth != 2.0 || s.EnemyCount != 2.0 || s.AIIntelligence != 2.0 {
		t.Fatalf("health/count/intelligence at 3.0: %+v", s)
	}
	if math.Abs(s.ResourceAvailability-0.6) > 1e-9 || math.Abs(s.AIReactionTime-0.6) > 1e-9 {
		t.Fatalf("resources and ai reaction time should shrink: %+v", s)
	}
	if changedFields(DeriveSettings(1.0), s) != 11 {
		t.Fatalf("every multiplier should move with difficulty")
	}
	if changedFields(s, DeriveSettings(3.0)) != 0 {
		t.Fatalf("settings must be a pure function of difficulty")
	}
}
