package difficulty

type PsychologicalProfile struct {
	Competitiveness float64 `json:"competitiveness"`
	Persistence     float64 `json:"persistence"`
	RiskTolerance   float64 `json:"riskTolerance"`
	Adaptability    float64 `json:"adaptability"`
	StressTolerance float64 `json:"stressTolerance"`
}

type MotivationalFactors struct {
	Achievement float64 `json:"achievement"`
	Mastery     float64 `json:"mastery"`
	Challenge   float64 `json:"challenge"`
	Exploration float64 `json:"exploration"`
	Social      float64 `json:"social"`
	Immersion   float64 `json:"immersion"`
}

// PlayerProfile 玩家画像
type PlayerProfile struct {
	SkillLevel       float64              `json:"skillLevel"`
	PlayStyle        PlayStyle            `json:"playStyle"`
	Accuracy         float64              `json:"accuracy"`
	ReactionTime     float64              `json:"reactionTime"`
	FrustrationLevel float64              `json:"frustrationLevel"`
	EngagementLevel  float64              `json:"engagementLevel"`
	Psychological    PsychologicalProfile `json:"psychological"`
	Motivation       MotivationalFactors  `json:"motivation"`
}

const (
	skillMin      = 0.1
	skillMax      = 5.0
	skillInertia  = 0.9
	skillScale    = 2.0
	styleWindow   = 20
	reactionFloor = 150.0
	reactionSpan  = 850.0
)

// DefaultPlayerProfile is the profile of a player the engine has not seen yet.
func DefaultPlayerProfile() PlayerProfile {
	return PlayerProfile{
		SkillLevel:       1.0,
		PlayStyle:        PlayStyleBalanced,
		Accuracy:         0.5,
		ReactionTime:     500,
		FrustrationLevel: defaultFrustration,
		EngagementLevel:  defaultEngagement,
		Psychological: PsychologicalProfile{
			Competitiveness: 0.5,
			Persistence:     0.5,
			RiskTolerance:   0.5,
			Adaptability:    0.5,
			StressTolerance: 0.5,
		},
		Motivation: MotivationalFactors{
			Achievement: 0.5,
			Mastery:     0.5,
			Challenge:   0.5,
			Exploration: 0.5,
			Social:      0.5,
			Immersion:   0.5,
		},
	}
}

// reactionScore maps a mean reaction time in ms onto [0,1], faster is higher.
func reactionScore(ms float64) float64 {
	return clamp01(1 - (ms-reactionFloor)/reactionSpan)
}

// updateProfile recomputes the derived profile fields from the buffers.
// Empty buffers keep the previous values.
func updateProfile(p PlayerProfile, m *EnhancedPerformanceMetrics, emo EmotionalAnalysis, eng EngagementAnalysis) PlayerProfile {
	hasAcc := len(m.AccuracySamples) > 0
	hasRT := len(m.ReactionTimes) > 0

	if hasAcc {
		p.Accuracy = clamp01(mean(m.AccuracySamples))
	}
	if hasRT {
		p.ReactionTime = mean(m.ReactionTimes)
	}
	if hasAcc || hasRT {
		combined := 0.6*p.Accuracy + 0.4*reactionScore(p.ReactionTime)
		p.SkillLevel = clamp(skillInertia*p.SkillLevel+(1-skillInertia)*skillScale*combined, skillMin, skillMax)
	}

	p.PlayStyle = classifyPlayStyle(lastN(m.BehavioralPatterns, styleWindow), p.PlayStyle)
	p.FrustrationLevel = emo.Frustration
	p.EngagementLevel = eng.Overall
	return p
}

// classifyPlayStyle thresholds the share of each style in the tag window.
func classifyPlayStyle(tags []string, prev PlayStyle) PlayStyle {
	if len(tags) == 0 {
		return prev
	}
	counts := make(map[PlayStyle]int, 4)
	for _, tag := range tags {
		if style, ok := behaviorStyle[tag]; ok {
			counts[style]++
		}
	}
	total := float64(len(tags))
	switch {
	case float64(counts[PlayStyleAggressive])/total > 0.5:
		return PlayStyleAggressive
	case float64(counts[PlayStyleDefensive])/total > 0.5:
		return PlayStyleDefensive
	case float64(counts[PlayStyleTactical])/total > 0.4:
		return PlayStyleTactical
	case float64(counts[PlayStyleAdaptive])/total > 0.2 && len(counts) >= 3:
		return PlayStyleAdaptive
	default:
		return PlayStyleBalanced
	}
}
