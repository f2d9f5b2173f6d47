package difficulty

import "testing"

func TestFreshSystemReportsDefaultFrustrationAndEngagement(t *testing.T) {
	sys := newTestSystem(t, nil)
	p := sys.PlayerProfile()
	if p.FrustrationLevel != 0.3 {
		t.Fatalf("frustration: got %v want 0.3", p.FrustrationLevel)
	}
	if p.EngagementLevel != 0.7 {
		t.Fatalf("engagement: got %v want 0.7", p.EngagementLevel)
	}

	// an update without emotional or engagement samples keeps the defaults
	sys.UpdatePlayerPerformance(MetricsUpdate{Accuracy: []float64{0.5}})
	p = sys.PlayerProfile()
	if p.FrustrationLevel != 0.3 || p.EngagementLevel != 0.7 {
		t.Fatalf("defaults lost after update: %v/%v", p.FrustrationLevel, p.EngagementLevel)
	}
}

func TestAnalyzeEmotions_FrustrationIsTaggedFraction(t *testing.T) {
	samples := append(emotions(EmotionFrustrated, 4), emotions(EmotionFocused, 6)...)
	got := AnalyzeEmotions(samples)
	if !approx(got.Frustration, 0.4) {
		t.Fatalf("frustration: got %v want 0.4", got.Frustration)
	}
	if got.Dominant != EmotionFocused {
		t.Fatalf("dominant: got %s", got.Dominant)
	}
	if got.SignificantChange {
		t.Fatalf("no prior window, expected no significant change")
	}
}

func TestAnalyzeEmotions_UsesLastTenAndDetectsShift(t *testing.T) {
	samples := append(emotions(EmotionFrustrated, 5), emotions(EmotionCalm, 10)...)
	got := AnalyzeEmotions(samples)
	if got.Frustration != 0 {
		t.Fatalf("frustration outside window leaked in: %v", got.Frustration)
	}
	if !got.SignificantChange {
		t.Fatalf("expected a significant change from frustrated to calm")
	}
	if got.Stability != 1 {
		t.Fatalf("stability: got %v want 1", got.Stability)
	}
}

func TestAnalyzeEngagement_OverallIsMeanOfEightScores(t *testing.T) {
	full := []EngagementSample{{Attention: 1, Immersion: 1, Flow: 1, Enjoyment: 1, ActionsPerMinute: 120, Exploration: 1}}
	motivation := MotivationalFactors{Achievement: 1, Mastery: 1, Challenge: 1}
	if got := AnalyzeEngagement(full, motivation).Overall; !approx(got, 1) {
		t.Fatalf("overall: got %v want 1", got)
	}

	idle := []EngagementSample{{}}
	got := AnalyzeEngagement(idle, DefaultPlayerProfile().Motivation)
	// six zero sub-scores plus two motivation scores of 0.5
	if !approx(got.Overall, 1.0/8) {
		t.Fatalf("overall: got %v want %v", got.Overall, 1.0/8)
	}
}

func TestAnalyzeEngagement_EmptyDefaults(t *testing.T) {
	if got := AnalyzeEngagement(nil, MotivationalFactors{}).Overall; got != 0.7 {
		t.Fatalf("got %v want 0.7", got)
	}
}
