package difficulty

import "time"

// Alert kinds raised by RealTimeMonitor.
const (
	AlertFrustrationSpike = "frustration_spike"
	AlertEngagementDrop   = "engagement_drop"
	AlertDifficultyBound  = "difficulty_bound"
	AlertHighRisk         = "high_risk"
)

type Alert struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// RealTimeMonitor logs adaptations and raises alerts. It never feeds back
// into decisions.
type RealTimeMonitor struct {
	limit    int
	min, max float64
	logger   Logger
	alerts   []Alert
}

func NewRealTimeMonitor(limit int, min, max float64, logger Logger) *RealTimeMonitor {
	return &RealTimeMonitor{limit: limit, min: min, max: max, logger: logger}
}

// Observe records one adaptation and returns the alerts it raised.
func (m *RealTimeMonitor) Observe(a DifficultyAdaptation, p PlayerProfile) []Alert {
	m.logger.Printf("[Difficulty] adaptation #%d %s %.2f -> %.2f (%s, reward=%.2f)",
		a.Seq, a.Type, a.FromDifficulty, a.ToDifficulty, a.Reason, a.Reward)

	var raised []Alert
	raise := func(kind, msg string, v float64) {
		raised = append(raised, Alert{Kind: kind, Message: msg, Value: v, Timestamp: a.Timestamp})
	}
	if p.FrustrationLevel > 0.8 {
		raise(AlertFrustrationSpike, "player frustration above 0.8", p.FrustrationLevel)
	}
	if p.EngagementLevel < 0.3 {
		raise(AlertEngagementDrop, "player engagement below 0.3", p.EngagementLevel)
	}
	if a.ToDifficulty <= m.min || a.ToDifficulty >= m.max {
		raise(AlertDifficultyBound, "difficulty pinned at bound", a.ToDifficulty)
	}
	if a.Risk > 0.7 {
		raise(AlertHighRisk, "adaptation risk above 0.7", a.Risk)
	}
	for _, al := range raised {
		m.logger.Printf("[Difficulty] alert %s: %s (%.2f)", al.Kind, al.Message, al.Value)
	}
	m.alerts = pushCapped(m.alerts, m.limit, raised...)
	return raised
}

func (m *RealTimeMonitor) Alerts() []Alert {
	return append([]Alert{}, m.alerts...)
}

func (m *RealTimeMonitor) reset() { m.alerts = nil }

type GraphPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Difficulty float64   `json:"difficulty"`
}

// DifficultyGraph keeps the difficulty curve for display.
type DifficultyGraph struct {
	limit  int
	points []GraphPoint
}

func NewDifficultyGraph(limit int) *DifficultyGraph {
	return &DifficultyGraph{limit: limit}
}

func (g *DifficultyGraph) Add(at time.Time, d float64) {
	g.points = pushCapped(g.points, g.limit, GraphPoint{Timestamp: at, Difficulty: d})
}

func (g *DifficultyGraph) Points() []GraphPoint {
	return append([]GraphPoint{}, g.points...)
}

// Trend compares the ends of the last five points.
func (g *DifficultyGraph) Trend() string {
	window := lastN(g.points, 5)
	if len(window) < 2 {
		return TrendStable
	}
	delta := window[len(window)-1].Difficulty - window[0].Difficulty
	switch {
	case delta > 0.05:
		return TrendRising
	case delta < -0.05:
		return TrendFalling
	default:
		return TrendStable
	}
}

func (g *DifficultyGraph) reset() { g.points = nil }

// PlayerModel tracks how the profile moves over a session.
type PlayerModel struct {
	limit      int
	skill      []float64
	engagement []float64
}

func NewPlayerModel(limit int) *PlayerModel {
	return &PlayerModel{limit: limit}
}

func (m *PlayerModel) Observe(p PlayerProfile) {
	m.skill = pushCapped(m.skill, m.limit, p.SkillLevel)
	m.engagement = pushCapped(m.engagement, m.limit, p.EngagementLevel)
}

func (m *PlayerModel) SkillTrend() string { return halfTrend(m.skill, 0.02) }

func (m *PlayerModel) EngagementTrend() string { return halfTrend(m.engagement, 0.05) }

func (m *PlayerModel) reset() {
	m.skill = nil
	m.engagement = nil
}

// halfTrend compares the mean of the newer half of the last ten samples with
// the older half.
func halfTrend(xs []float64, eps float64) string {
	window := lastN(xs, analysisWindow)
	if len(window) < 2 {
		return TrendStable
	}
	mid := len(window) / 2
	diff := mean(window[mid:]) - mean(window[:mid])
	switch {
	case diff > eps:
		return TrendImproving
	case diff < -eps:
		return TrendDeclining
	default:
		return TrendStable
	}
}
