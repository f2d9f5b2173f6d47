package difficulty

import (
	"math"
	"testing"
)

func TestUpdateProfile_SkillBlendsNinetyTen(t *testing.T) {
	m := &EnhancedPerformanceMetrics{
		AccuracySamples: []float64{0.8},
		ReactionTimes:   []float64{150},
	}
	p := updateProfile(DefaultPlayerProfile(), m, defaultEmotionalAnalysis(), AnalyzeEngagement(nil, MotivationalFactors{}))

	// combined = 0.6*0.8 + 0.4*1.0 = 0.88; new = 0.9*1.0 + 0.1*2*0.88
	want := 0.9 + 0.1*2*0.88
	if !approx(p.SkillLevel, want) {
		t.Fatalf("skill: got %v want %v", p.SkillLevel, want)
	}
	if p.Accuracy != 0.8 || p.ReactionTime != 150 {
		t.Fatalf("unexpected accuracy/reaction: %v/%v", p.Accuracy, p.ReactionTime)
	}
}

func TestUpdateProfile_EmptyBuffersKeepPreviousValues(t *testing.T) {
	prev := DefaultPlayerProfile()
	prev.SkillLevel = 2.5
	prev.PlayStyle = PlayStyleTactical
	prev.Accuracy = 0.61

	p := updateProfile(prev, &EnhancedPerformanceMetrics{}, AnalyzeEmotions(nil), AnalyzeEngagement(nil, prev.Motivation))
	if p.SkillLevel != 2.5 || p.PlayStyle != PlayStyleTactical || p.Accuracy != 0.61 {
		t.Fatalf("empty buffers changed the profile: %+v", p)
	}
	for _, v := range []float64{p.SkillLevel, p.Accuracy, p.ReactionTime, p.FrustrationLevel, p.EngagementLevel} {
		if math.IsNaN(v) {
			t.Fatalf("profile contains NaN: %+v", p)
		}
	}
}

func TestClassifyPlayStyle(t *testing.T) {
	rep := func(tag string, n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = tag
		}
		return out
	}
	join := func(parts ...[]string) []string {
		var out []string
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}

	cases := []struct {
		name string
		tags []string
		prev PlayStyle
		want PlayStyle
	}{
		{"empty keeps previous", nil, PlayStyleDefensive, PlayStyleDefensive},
		{"rushers", join(rep(BehaviorRush, 6), rep(BehaviorSnipe, 4)), PlayStyleBalanced, PlayStyleAggressive},
		{"campers", join(rep(BehaviorUseCover, 4), rep(BehaviorHoldPosition, 3), rep(BehaviorFlank, 3)), PlayStyleBalanced, PlayStyleDefensive},
		{"tacticians", join(rep(BehaviorSnipe, 3), rep(BehaviorObjective, 2), rep(BehaviorRush, 3), rep(BehaviorRetreat, 2)), PlayStyleBalanced, PlayStyleTactical},
		{"switchers", join(rep(BehaviorSwitchLoadout, 3), rep(BehaviorRush, 3), rep(BehaviorUseCover, 3), rep(BehaviorSnipe, 1)), PlayStyleBalanced, PlayStyleAdaptive},
		{"even mix", join(rep(BehaviorRush, 4), rep(BehaviorUseCover, 4), rep(BehaviorSnipe, 2)), PlayStyleAggressive, PlayStyleBalanced},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyPlayStyle(tc.tags, tc.prev); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestParsePlayStyle(t *testing.T) {
	if got := ParsePlayStyle(" Tactical "); got != PlayStyleTactical {
		t.Fatalf("got %s", got)
	}
	if got := ParsePlayStyle("berserk"); got != PlayStyleBalanced {
		t.Fatalf("unknown style should default to balanced, got %s", got)
	}
}

func TestSetMotivationalFactorsRescoresEngagement(t *testing.T) {
	sys := newTestSystem(t, nil)
	samples := make([]EngagementSample, 4)
	for i := range samples {
		samples[i] = EngagementSample{
			TimestampMs: int64(i), Attention: 0.5, Immersion: 0.5, Flow: 0.5,
			Enjoyment: 0.5, ActionsPerMinute: 30, Exploration: 0.5,
		}
	}
	sys.UpdatePlayerPerformance(MetricsUpdate{Engagement: samples})
	if got := sys.PlayerProfile().EngagementLevel; !approx(got, 0.5) {
		t.Fatalf("engagement before: got %v want 0.5", got)
	}

	sys.SetMotivationalFactors(MotivationalFactors{Achievement: 1, Mastery: 1, Challenge: 1})
	p := sys.PlayerProfile()
	if !approx(p.EngagementLevel, 0.625) {
		t.Fatalf("engagement after: got %v want 0.625", p.EngagementLevel)
	}
	if p.Motivation.Challenge != 1 {
		t.Fatalf("motivation not stored: %+v", p.Motivation)
	}
}

func TestSetPsychologicalProfileFeedsPrediction(t *testing.T) {
	sys := newTestSystem(t, nil)
	before := sys.OptimalDifficulty()

	psy := DefaultPlayerProfile().Psychological
	psy.Competitiveness = 1
	sys.SetPsychologicalProfile(psy)

	if got := sys.OptimalDifficulty(); !approx(got, before*1.2) {
		t.Fatalf("optimal difficulty: got %v want %v", got, before*1.2)
	}
	if sys.Export().Profile.Psychological != psy {
		t.Fatalf("psychological profile should be exported")
	}
}
