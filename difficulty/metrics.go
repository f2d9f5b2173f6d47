package difficulty

type KillEvent struct {
	TimestampMs int64   `json:"timestampMs"`
	Weapon      string  `json:"weapon,omitempty"`
	Distance    float64 `json:"distance,omitempty"`
	Headshot    bool    `json:"headshot,omitempty"`
}

type DeathEvent struct {
	TimestampMs int64  `json:"timestampMs"`
	Cause       string `json:"cause,omitempty"`
}

type EmotionalSample struct {
	TimestampMs int64   `json:"timestampMs"`
	State       string  `json:"state"`
	Intensity   float64 `json:"intensity"`
}

// EngagementSample fields are normalized to [0,1] except ActionsPerMinute.
type EngagementSample struct {
	TimestampMs      int64   `json:"timestampMs"`
	Attention        float64 `json:"attention"`
	Immersion        float64 `json:"immersion"`
	Flow             float64 `json:"flow"`
	Enjoyment        float64 `json:"enjoyment"`
	ActionsPerMinute float64 `json:"actionsPerMinute"`
	Exploration      float64 `json:"exploration"`
}

// EnhancedPerformanceMetrics 性能缓冲区；每个序列只保留最近 N 条
type EnhancedPerformanceMetrics struct {
	RecentKills        []KillEvent        `json:"recentKills"`
	RecentDeaths       []DeathEvent       `json:"recentDeaths"`
	AccuracySamples    []float64          `json:"accuracySamples"`
	ReactionTimes      []float64          `json:"reactionTimes"`
	EmotionalStates    []EmotionalSample  `json:"emotionalStates"`
	EngagementSamples  []EngagementSample `json:"engagementSamples"`
	BehavioralPatterns []string           `json:"behavioralPatterns"`

	TotalKills          int     `json:"totalKills"`
	TotalDeaths         int     `json:"totalDeaths"`
	ObjectivesCompleted int     `json:"objectivesCompleted"`
	SessionSeconds      float64 `json:"sessionSeconds"`
}

// MetricsUpdate is a partial update: empty slices and nil pointers leave the
// corresponding buffer untouched.
type MetricsUpdate struct {
	Kills               []KillEvent        `json:"kills,omitempty"`
	Deaths              []DeathEvent       `json:"deaths,omitempty"`
	Accuracy            []float64          `json:"accuracy,omitempty"`
	ReactionTimes       []float64          `json:"reactionTimes,omitempty"`
	EmotionalStates     []EmotionalSample  `json:"emotionalStates,omitempty"`
	Engagement          []EngagementSample `json:"engagement,omitempty"`
	Behaviors           []string           `json:"behaviors,omitempty"`
	SessionSeconds      *float64           `json:"sessionSeconds,omitempty"`
	ObjectivesCompleted *int               `json:"objectivesCompleted,omitempty"`
}

// Empty reports whether the update carries nothing.
func (u MetricsUpdate) Empty() bool {
	return len(u.Kills) == 0 && len(u.Deaths) == 0 && len(u.Accuracy) == 0 &&
		len(u.ReactionTimes) == 0 && len(u.EmotionalStates) == 0 && len(u.Engagement) == 0 &&
		len(u.Behaviors) == 0 && u.SessionSeconds == nil && u.ObjectivesCompleted == nil
}

// metricsStore owns the buffers and their caps.
type metricsStore struct {
	caps Caps
	m    EnhancedPerformanceMetrics
}

func newMetricsStore(caps Caps) *metricsStore {
	return &metricsStore{caps: caps.withDefaults()}
}

// apply appends each present field then truncates to its cap. Malformed
// elements are dropped one by one; the rest of the update still lands.
func (s *metricsStore) apply(u MetricsUpdate) {
	if kills := sanitizeKills(u.Kills); len(kills) > 0 {
		s.m.RecentKills = pushCapped(s.m.RecentKills, s.caps.Kills, kills...)
		s.m.TotalKills += len(kills)
	}
	if len(u.Deaths) > 0 {
		s.m.RecentDeaths = pushCapped(s.m.RecentDeaths, s.caps.Deaths, u.Deaths...)
		s.m.TotalDeaths += len(u.Deaths)
	}
	// Accuracy is only checked for finiteness; the profile clamps its mean and
	// the variance trigger sees the samples as sent.
	if acc := filterFloats(u.Accuracy, finite); len(acc) > 0 {
		s.m.AccuracySamples = pushCapped(s.m.AccuracySamples, s.caps.Accuracy, acc...)
	}
	if rts := filterFloats(u.ReactionTimes, func(v float64) bool { return v > 0 }); len(rts) > 0 {
		s.m.ReactionTimes = pushCapped(s.m.ReactionTimes, s.caps.Reaction, rts...)
	}
	if emo := sanitizeEmotions(u.EmotionalStates); len(emo) > 0 {
		s.m.EmotionalStates = pushCapped(s.m.EmotionalStates, s.caps.Emotional, emo...)
	}
	if eng := sanitizeEngagement(u.Engagement); len(eng) > 0 {
		s.m.EngagementSamples = pushCapped(s.m.EngagementSamples, s.caps.Engagement, eng...)
	}
	if tags := sanitizeBehaviors(u.Behaviors); len(tags) > 0 {
		s.m.BehavioralPatterns = pushCapped(s.m.BehavioralPatterns, s.caps.Behavioral, tags...)
	}
	if u.SessionSeconds != nil && finite(*u.SessionSeconds) && *u.SessionSeconds >= 0 {
		s.m.SessionSeconds = *u.SessionSeconds
	}
	if u.ObjectivesCompleted != nil && *u.ObjectivesCompleted >= 0 {
		s.m.ObjectivesCompleted = *u.ObjectivesCompleted
	}
}

func (s *metricsStore) reset() {
	s.m = EnhancedPerformanceMetrics{}
}

func (s *metricsStore) snapshot() EnhancedPerformanceMetrics {
	out := s.m
	out.RecentKills = append([]KillEvent{}, s.m.RecentKills...)
	out.RecentDeaths = append([]DeathEvent{}, s.m.RecentDeaths...)
	out.AccuracySamples = append([]float64{}, s.m.AccuracySamples...)
	out.ReactionTimes = append([]float64{}, s.m.ReactionTimes...)
	out.EmotionalStates = append([]EmotionalSample{}, s.m.EmotionalStates...)
	out.EngagementSamples = append([]EngagementSample{}, s.m.EngagementSamples...)
	out.BehavioralPatterns = append([]string{}, s.m.BehavioralPatterns...)
	return out
}

// recentPerformance blends recent accuracy with the kill share of recent
// engagements. Returns 0.5 without data.
func (s *metricsStore) recentPerformance() float64 {
	acc := lastN(s.m.AccuracySamples, analysisWindow)
	kills := len(lastN(s.m.RecentKills, analysisWindow))
	deaths := len(lastN(s.m.RecentDeaths, analysisWindow))

	accScore := 0.5
	if len(acc) > 0 {
		accScore = mean(acc)
	}
	killShare := 0.5
	if kills+deaths > 0 {
		killShare = float64(kills) / float64(kills+deaths)
	}
	return 0.5*accScore + 0.5*killShare
}

func filterFloats(xs []float64, ok func(float64) bool) []float64 {
	var out []float64
	for _, v := range xs {
		if finite(v) && ok(v) {
			out = append(out, v)
		}
	}
	return out
}

func sanitizeKills(in []KillEvent) []KillEvent {
	var out []KillEvent
	for _, k := range in {
		if !finite(k.Distance) || k.Distance < 0 {
			continue
		}
		out = append(out, k)
	}
	return out
}

func sanitizeEmotions(in []EmotionalSample) []EmotionalSample {
	var out []EmotionalSample
	for _, e := range in {
		if !knownEmotions[e.State] || !finite(e.Intensity) {
			continue
		}
		e.Intensity = clamp01(e.Intensity)
		out = append(out, e)
	}
	return out
}

func sanitizeEngagement(in []EngagementSample) []EngagementSample {
	var out []EngagementSample
	for _, e := range in {
		if !finite(e.Attention) || !finite(e.Immersion) || !finite(e.Flow) ||
			!finite(e.Enjoyment) || !finite(e.ActionsPerMinute) || !finite(e.Exploration) {
			continue
		}
		e.Attention = clamp01(e.Attention)
		e.Immersion = clamp01(e.Immersion)
		e.Flow = clamp01(e.Flow)
		e.Enjoyment = clamp01(e.Enjoyment)
		e.Exploration = clamp01(e.Exploration)
		if e.ActionsPerMinute < 0 {
			e.ActionsPerMinute = 0
		}
		out = append(out, e)
	}
	return out
}

func sanitizeBehaviors(in []string) []string {
	var out []string
	for _, tag := range in {
		if _, ok := behaviorStyle[tag]; ok {
			out = append(out, tag)
		}
	}
	return out
}
