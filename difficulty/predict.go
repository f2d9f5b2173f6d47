package difficulty

const (
	optimalMin = 0.1
	optimalMax = 5.0
)

// PredictiveModel estimates the difficulty a profile is best matched to.
type PredictiveModel struct {
	min, max float64
	// psychological adds the risk and stress tolerance multipliers.
	psychological bool
}

func newPredictiveModel(min, max float64, psychological bool) PredictiveModel {
	return PredictiveModel{min: min, max: max, psychological: psychological}
}

// Predict is monotone non-decreasing in SkillLevel: every other factor is a
// positive multiplier independent of skill.
func (m PredictiveModel) Predict(p PlayerProfile) float64 {
	style, ok := playStyleModifier[p.PlayStyle]
	if !ok {
		style = 1.0
	}
	psy := p.Psychological
	v := p.SkillLevel *
		style *
		(0.8 + 0.4*clamp01(psy.Competitiveness)) *
		(0.9 + 0.2*clamp01(psy.Persistence)) *
		(0.8 + 0.4*clamp01(p.EngagementLevel)) *
		(1 - 0.5*clamp01(p.FrustrationLevel))
	if m.psychological {
		v *= (0.9 + 0.2*clamp01(psy.RiskTolerance)) * (0.9 + 0.2*clamp01(psy.StressTolerance))
	}
	return clamp(v, m.min, m.max)
}
