package difficulty

import "testing"

func TestFrustratedPlayerTriggersDecrease(t *testing.T) {
	sys := newTestSystem(t, nil)
	sys.Restore(State{Profile: frustratedProfile()})

	if !sys.ShouldAdaptDifficulty() {
		t.Fatalf("expected adaptation for frustration 0.9")
	}
	a := sys.AdaptDifficulty()
	if a.Type != AdaptationDecrease {
		t.Fatalf("type: got %s want decrease", a.Type)
	}
	if !approx(a.ToDifficulty, 0.8) || !approx(sys.CurrentDifficulty(), 0.8) {
		t.Fatalf("difficulty: got %v want 0.8", sys.CurrentDifficulty())
	}
	if a.PlayerImpact.FrustrationReduction <= 0 {
		t.Fatalf("decrease should project a frustration reduction, got %v", a.PlayerImpact.FrustrationReduction)
	}
	if got := sys.Settings(); got != DeriveSettings(sys.CurrentDifficulty()) {
		t.Fatalf("settings not re-derived after adaptation: %+v", got)
	}
	if len(sys.LearningHistory()) != 1 {
		t.Fatalf("expected the adaptation to feed one learning transition")
	}
}

func TestAdaptabilityBoostsMagnitude(t *testing.T) {
	sys := newTestSystem(t, nil)
	p := frustratedProfile()
	p.Psychological.Adaptability = 0.8
	sys.Restore(State{Profile: p})

	a := sys.AdaptDifficulty()
	if !approx(a.Magnitude, 0.24) {
		t.Fatalf("magnitude: got %v want 0.24", a.Magnitude)
	}
	if !approx(a.ToDifficulty, 0.76) {
		t.Fatalf("difficulty: got %v want 0.76", a.ToDifficulty)
	}
}

func TestClassifyAdaptationPriority(t *testing.T) {
	base := DefaultPlayerProfile()
	frustrated := base
	frustrated.FrustrationLevel = 0.9
	frustrated.EngagementLevel = 0.2
	bored := base
	bored.EngagementLevel = 0.2

	cases := []struct {
		name    string
		profile PlayerProfile
		action  Action
		want    AdaptationType
	}{
		{"frustration beats everything", frustrated, ActionIncrease, AdaptationDecrease},
		{"low engagement goes dynamic", bored, ActionIncrease, AdaptationDynamic},
		{"policy increase", base, ActionIncrease, AdaptationIncrease},
		{"policy decrease", base, ActionDecrease, AdaptationDecrease},
		{"policy hold", base, ActionMaintain, AdaptationMaintain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got, _ := classifyAdaptation(tc.profile, tc.action); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}

	if _, reason := classifyAdaptation(base, ActionDecrease); reason != "learned policy: decrease" {
		t.Fatalf("policy reason: got %q", reason)
	}
}

func TestAdaptationTriggers(t *testing.T) {
	calm := DefaultPlayerProfile()
	frustrated := calm
	frustrated.FrustrationLevel = 0.8
	bored := calm
	bored.EngagementLevel = 0.3
	steady := defaultEmotionalAnalysis()
	shifted := steady
	shifted.SignificantChange = true

	cases := []struct {
		name     string
		profile  PlayerProfile
		emo      EmotionalAnalysis
		accuracy []float64
		want     bool
	}{
		{"quiet player", calm, steady, []float64{0.5, 0.6, 0.55}, false},
		{"no accuracy samples", calm, steady, nil, false},
		{"frustration", frustrated, steady, nil, true},
		{"low engagement", bored, steady, nil, true},
		{"emotion shift", calm, shifted, nil, true},
		{"unit-scale swings stay under threshold", calm, steady, []float64{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}, false},
		{"percent-scale swings", calm, steady, []float64{10, 95, 20, 90}, true},
		{"only the last ten count", calm, steady, []float64{0, 90, 0, 90, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, false},
		{"just above threshold", calm, steady, []float64{0, 1.2}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adaptationTriggers(tc.profile, tc.emo, tc.accuracy); got != tc.want {
				t.Fatalf("got %v want %v (variance %v)", got, tc.want, variance(lastN(tc.accuracy, analysisWindow)))
			}
		})
	}
}

func TestAccuracyVarianceAdaptsThroughUpdate(t *testing.T) {
	sys := newTestSystem(t, nil)

	a := sys.UpdatePlayerPerformance(MetricsUpdate{Accuracy: []float64{10, 95, 20, 90}})
	if a == nil {
		t.Fatalf("expected the accuracy variance trigger to adapt")
	}
	if got := len(sys.Metrics().AccuracySamples); got != 4 {
		t.Fatalf("percent-scale accuracy should be kept, got %d samples", got)
	}
	if got := sys.PlayerProfile().Accuracy; got != 1 {
		t.Fatalf("profile accuracy should clamp to 1, got %v", got)
	}
}

func TestApplyAdaptation_DynamicMovesTowardOptimum(t *testing.T) {
	if got := applyAdaptation(1.0, AdaptationDynamic, 0.1, 2.0); !approx(got, 1.1) {
		t.Fatalf("up: got %v", got)
	}
	if got := applyAdaptation(1.0, AdaptationDynamic, 0.1, 0.95); !approx(got, 0.95) {
		t.Fatalf("should not overshoot the optimum, got %v", got)
	}
	if got := applyAdaptation(1.0, AdaptationDynamic, 0.1, 1.03); got != 1.0 {
		t.Fatalf("inside deadband should hold, got %v", got)
	}
	if got := applyAdaptation(1.0, AdaptationMaintain, 0, 3); got != 1.0 {
		t.Fatalf("maintain changed difficulty: %v", got)
	}
}

func TestComputeRewardIsClamped(t *testing.T) {
	if got := computeReward(PlayerImpact{1, 1, 1}, 0); got != 1 {
		t.Fatalf("got %v want 1", got)
	}
	if got := computeReward(PlayerImpact{-1, -1, 0}, 1); got != -1 {
		t.Fatalf("got %v want -1", got)
	}
	got := computeReward(PlayerImpact{0.1, 0.1, 0.1}, 0.2)
	want := 2*0.1 + 1.5*0.1 + 1.2*0.1 - 0.5*0.2
	if !approx(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestDifficultyStaysWithinEnhancedBounds(t *testing.T) {
	up := newTestSystem(t, func(c *Config) {
		c.Epsilon = 1
		c.Rand = stubRand{f: 0, n: 2}
	})
	for i := 0; i < 100; i++ {
		up.AdaptDifficulty()
		if d := up.CurrentDifficulty(); d < 0.1 || d > 5.0 {
			t.Fatalf("difficulty %v escaped bounds", d)
		}
	}
	if up.CurrentDifficulty() != 5.0 {
		t.Fatalf("expected to saturate at 5.0, got %v", up.CurrentDifficulty())
	}

	down := newTestSystem(t, nil)
	down.Restore(State{Profile: frustratedProfile()})
	for i := 0; i < 100; i++ {
		down.AdaptDifficulty()
	}
	if down.CurrentDifficulty() != 0.1 {
		t.Fatalf("expected to saturate at 0.1, got %v", down.CurrentDifficulty())
	}
}

func TestSignificantEmotionShiftTriggersAdaptation(t *testing.T) {
	sys := newTestSystem(t, nil)
	if a := sys.UpdatePlayerPerformance(MetricsUpdate{EmotionalStates: emotions(EmotionCalm, 10)}); a != nil {
		t.Fatalf("unexpected adaptation on first window: %+v", a)
	}
	a := sys.UpdatePlayerPerformance(MetricsUpdate{EmotionalStates: emotions(EmotionFocused, 10)})
	if a == nil {
		t.Fatalf("expected the calm -> focused shift to trigger an adaptation")
	}
	if a.Type != AdaptationMaintain {
		t.Fatalf("policy holds, expected maintain, got %s", a.Type)
	}
	if a.ID == "" || a.Seq != 1 {
		t.Fatalf("adaptation not identified: id=%q seq=%d", a.ID, a.Seq)
	}
	if len(sys.Adaptations()) != 1 {
		t.Fatalf("expected one recorded adaptation")
	}
}

func TestAdaptationHistoryIsCapped(t *testing.T) {
	sys := newTestSystem(t, func(c *Config) { c.Caps.Adaptations = 3 })
	sys.Restore(State{Profile: frustratedProfile()})
	for i := 0; i < 10; i++ {
		sys.AdaptDifficulty()
	}
	hist := sys.Adaptations()
	if len(hist) != 3 {
		t.Fatalf("history length: got %d want 3", len(hist))
	}
	if hist[2].Seq != 10 || hist[0].Seq != 8 {
		t.Fatalf("unexpected retained window: %d..%d", hist[0].Seq, hist[2].Seq)
	}
}
