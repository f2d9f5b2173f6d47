package difficulty

const (
	analysisWindow = 10

	defaultFrustration = 0.3
	defaultEngagement  = 0.7
)

// EmotionalAnalysis summarizes the last analysisWindow emotional samples.
type EmotionalAnalysis struct {
	Frustration       float64 `json:"frustration"`
	Excitement        float64 `json:"excitement"`
	Boredom           float64 `json:"boredom"`
	Anxiety           float64 `json:"anxiety"`
	Dominant          string  `json:"dominant"`
	SignificantChange bool    `json:"significantChange"`
	Stability         float64 `json:"stability"`
}

// EngagementAnalysis holds the eight engagement sub-scores and their mean.
type EngagementAnalysis struct {
	Attention             float64 `json:"attention"`
	Immersion             float64 `json:"immersion"`
	Flow                  float64 `json:"flow"`
	Enjoyment             float64 `json:"enjoyment"`
	Activity              float64 `json:"activity"`
	Exploration           float64 `json:"exploration"`
	ChallengeMotivation   float64 `json:"challengeMotivation"`
	AchievementMotivation float64 `json:"achievementMotivation"`
	Overall               float64 `json:"overall"`
}

func defaultEmotionalAnalysis() EmotionalAnalysis {
	return EmotionalAnalysis{
		Frustration: defaultFrustration,
		Excitement:  0.5,
		Boredom:     0.2,
		Anxiety:     0.2,
		Dominant:    EmotionNeutral,
		Stability:   1.0,
	}
}

// AnalyzeEmotions is a pure function of the sample buffer.
func AnalyzeEmotions(samples []EmotionalSample) EmotionalAnalysis {
	window := lastN(samples, analysisWindow)
	if len(window) == 0 {
		return defaultEmotionalAnalysis()
	}

	counts := countEmotions(window)
	n := float64(len(window))
	out := EmotionalAnalysis{
		Frustration: float64(counts[EmotionFrustrated]) / n,
		Excitement:  float64(counts[EmotionExcited]) / n,
		Boredom:     float64(counts[EmotionBored]) / n,
		Anxiety:     float64(counts[EmotionAnxious]) / n,
		Dominant:    dominantEmotion(window),
	}

	transitions := 0
	for i := 1; i < len(window); i++ {
		if window[i].State != window[i-1].State {
			transitions++
		}
	}
	out.Stability = 1.0
	if len(window) > 1 {
		out.Stability = 1 - float64(transitions)/float64(len(window)-1)
	}

	if len(samples) > analysisWindow {
		prior := samples[:len(samples)-analysisWindow]
		prior = lastN(prior, analysisWindow)
		out.SignificantChange = dominantEmotion(prior) != out.Dominant
	}
	return out
}

func countEmotions(window []EmotionalSample) map[string]int {
	counts := make(map[string]int, len(knownEmotions))
	for _, s := range window {
		counts[s.State]++
	}
	return counts
}

// dominantEmotion returns the most frequent tag; ties go to the most recent.
func dominantEmotion(window []EmotionalSample) string {
	if len(window) == 0 {
		return EmotionNeutral
	}
	counts := countEmotions(window)
	best := ""
	bestCount := 0
	for i := len(window) - 1; i >= 0; i-- {
		state := window[i].State
		if counts[state] > bestCount {
			best = state
			bestCount = counts[state]
		}
	}
	return best
}

// AnalyzeEngagement combines the sample buffer with the static motivational
// profile. The overall score is the plain mean of the eight sub-scores.
func AnalyzeEngagement(samples []EngagementSample, motivation MotivationalFactors) EngagementAnalysis {
	window := lastN(samples, analysisWindow)
	if len(window) == 0 {
		return EngagementAnalysis{
			Attention:             defaultEngagement,
			Immersion:             defaultEngagement,
			Flow:                  defaultEngagement,
			Enjoyment:             defaultEngagement,
			Activity:              defaultEngagement,
			Exploration:           defaultEngagement,
			ChallengeMotivation:   defaultEngagement,
			AchievementMotivation: defaultEngagement,
			Overall:               defaultEngagement,
		}
	}

	var attention, immersion, flow, enjoyment, apm, exploration []float64
	for _, s := range window {
		attention = append(attention, s.Attention)
		immersion = append(immersion, s.Immersion)
		flow = append(flow, s.Flow)
		enjoyment = append(enjoyment, s.Enjoyment)
		apm = append(apm, s.ActionsPerMinute)
		exploration = append(exploration, s.Exploration)
	}

	out := EngagementAnalysis{
		Attention:             mean(attention),
		Immersion:             mean(immersion),
		Flow:                  mean(flow),
		Enjoyment:             mean(enjoyment),
		Activity:              clamp01(mean(apm) / 60),
		Exploration:           mean(exploration),
		ChallengeMotivation:   clamp01(motivation.Challenge),
		AchievementMotivation: clamp01((motivation.Achievement + motivation.Mastery) / 2),
	}
	out.Overall = mean([]float64{
		out.Attention, out.Immersion, out.Flow, out.Enjoyment,
		out.Activity, out.Exploration, out.ChallengeMotivation, out.AchievementMotivation,
	})
	return out
}
