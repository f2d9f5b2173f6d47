package difficulty

import (
	"math"
	"time"
)

const (
	frustrationThreshold = 0.7
	engagementThreshold  = 0.4
	varianceThreshold    = 0.3
	adaptabilityBoostAt  = 0.7
	adaptabilityBoost    = 1.2
	dynamicDeadband      = 0.05
)

type ExpectedOutcome struct {
	Frustration float64 `json:"frustration"`
	Engagement  float64 `json:"engagement"`
	Performance float64 `json:"performance"`
}

type PlayerImpact struct {
	FrustrationReduction float64 `json:"frustrationReduction"`
	EngagementGain       float64 `json:"engagementGain"`
	LearningGain         float64 `json:"learningGain"`
}

type SystemImpact struct {
	DifficultyDelta float64 `json:"difficultyDelta"`
	Stability       float64 `json:"stability"`
	SettingsChanged int     `json:"settingsChanged"`
}

// DifficultyAdaptation is immutable once recorded.
type DifficultyAdaptation struct {
	ID                string          `json:"id"`
	Seq               uint64          `json:"seq"`
	Type              AdaptationType  `json:"type"`
	Magnitude         float64         `json:"magnitude"`
	Reason            string          `json:"reason"`
	Confidence        float64         `json:"confidence"`
	ExpectedOutcome   ExpectedOutcome `json:"expectedOutcome"`
	Risk              float64         `json:"risk"`
	PlayerImpact      PlayerImpact    `json:"playerImpact"`
	SystemImpact      SystemImpact    `json:"systemImpact"`
	Action            Action          `json:"action"`
	Reward            float64         `json:"reward"`
	FromDifficulty    float64         `json:"fromDifficulty"`
	ToDifficulty      float64         `json:"toDifficulty"`
	OptimalDifficulty float64         `json:"optimalDifficulty"`
	Timestamp         time.Time       `json:"timestamp"`
}

// adaptationTriggers reports which heuristic triggers fire, ignoring the RL action.
func adaptationTriggers(p PlayerProfile, emo EmotionalAnalysis, accuracy []float64) bool {
	return p.FrustrationLevel > frustrationThreshold ||
		p.EngagementLevel < engagementThreshold ||
		emo.SignificantChange ||
		variance(lastN(accuracy, analysisWindow)) > varianceThreshold
}

// classifyAdaptation picks the type in priority order: frustration, engagement,
// then the RL action.
func classifyAdaptation(p PlayerProfile, action Action) (AdaptationType, string) {
	switch {
	case p.FrustrationLevel > frustrationThreshold:
		return AdaptationDecrease, "high frustration"
	case p.EngagementLevel < engagementThreshold:
		return AdaptationDynamic, "low engagement"
	case action > 0:
		return AdaptationIncrease, "learned policy: " + ActionDictionary[action]
	case action < 0:
		return AdaptationDecrease, "learned policy: " + ActionDictionary[action]
	default:
		return AdaptationMaintain, "within target band"
	}
}

func magnitudeFor(t AdaptationType, p PlayerProfile) float64 {
	m := adaptationMagnitude[t]
	if p.Psychological.Adaptability > adaptabilityBoostAt {
		m *= adaptabilityBoost
	}
	return m
}

// applyAdaptation returns the unclamped next difficulty.
func applyAdaptation(current float64, t AdaptationType, magnitude, optimal float64) float64 {
	switch t {
	case AdaptationIncrease:
		return current * (1 + magnitude)
	case AdaptationDecrease:
		return current * (1 - magnitude)
	case AdaptationDynamic:
		if math.Abs(optimal-current) < dynamicDeadband {
			return current
		}
		if optimal > current {
			return math.Min(current*(1+magnitude), optimal)
		}
		return math.Max(current*(1-magnitude), optimal)
	default:
		return current
	}
}

func relativeChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from
}

// estimateImpact projects the player's response to a move from -> to.
func estimateImpact(p PlayerProfile, from, to, optimal, performance float64) (ExpectedOutcome, PlayerImpact) {
	rel := relativeChange(from, to)

	toward := 0.0
	before, after := math.Abs(optimal-from), math.Abs(optimal-to)
	switch {
	case after < before:
		toward = 1
	case after > before:
		toward = -1
	}

	out := ExpectedOutcome{
		Frustration: clamp01(p.FrustrationLevel * (1 + rel)),
		Engagement:  clamp01(p.EngagementLevel + toward*math.Abs(rel)*0.5),
		Performance: clamp01(performance * (1 - rel*0.5)),
	}
	impact := PlayerImpact{
		FrustrationReduction: p.FrustrationLevel - out.Frustration,
		EngagementGain:       out.Engagement - p.EngagementLevel,
		LearningGain:         math.Max(0, rel) * (1 - p.FrustrationLevel),
	}
	return out, impact
}

// estimateConfidence rises with sample count and with how close the current
// difficulty already sits to the optimum.
func estimateConfidence(current, optimal float64, samples int) float64 {
	data := math.Min(1, float64(samples)/float64(analysisWindow))
	match := 1.0
	if hi := math.Max(current, optimal); hi > 0 {
		match = 1 - math.Min(1, math.Abs(optimal-current)/hi)
	}
	return clamp01(0.4 + 0.4*match + 0.2*data)
}

func estimateRisk(p PlayerProfile, rel, confidence float64) float64 {
	risk := math.Abs(rel) * 2
	if p.FrustrationLevel > frustrationThreshold && rel > 0 {
		risk += 0.3
	}
	risk += 0.2 * (1 - confidence)
	return clamp01(risk)
}

// computeReward feeds the RL update.
func computeReward(impact PlayerImpact, risk float64) float64 {
	r := 2.0*impact.FrustrationReduction +
		1.5*impact.EngagementGain +
		1.2*impact.LearningGain -
		0.5*risk
	return clamp(r, -1, 1)
}
