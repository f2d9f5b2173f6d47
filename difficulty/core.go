package difficulty

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// engineCore is the state shared by both engine variants.
type engineCore struct {
	cfg       Config
	sessionID string

	metrics    *metricsStore
	profile    PlayerProfile
	emotional  EmotionalAnalysis
	engagement EngagementAnalysis

	current  float64
	settings DifficultySettings
	model    PredictiveModel

	adaptations []DifficultyAdaptation
	seq         uint64
	epoch       uint64
	startedAt   time.Time
	lastAdaptAt time.Time

	monitor *RealTimeMonitor
	graph   *DifficultyGraph
	player  *PlayerModel
}

func newEngineCore(cfg Config, psychological bool) (*engineCore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.resolved()
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	c := &engineCore{
		cfg:        cfg,
		sessionID:  sessionID,
		metrics:    newMetricsStore(cfg.Caps),
		profile:    DefaultPlayerProfile(),
		emotional:  defaultEmotionalAnalysis(),
		model:      newPredictiveModel(optimalMin, optimalMax, psychological),
		monitor:    NewRealTimeMonitor(cfg.Caps.Alerts, cfg.MinDifficulty, cfg.MaxDifficulty, cfg.Logger),
		graph:      NewDifficultyGraph(cfg.Caps.GraphPoints),
		player:     NewPlayerModel(cfg.Caps.ModelPoints),
		startedAt:  cfg.Clock(),
		engagement: AnalyzeEngagement(nil, DefaultPlayerProfile().Motivation),
	}
	c.setDifficulty(cfg.InitialDifficulty)
	c.graph.Add(c.startedAt, c.current)
	return c, nil
}

// setDifficulty is the only writer of current; it clamps and re-derives settings.
func (c *engineCore) setDifficulty(d float64) {
	if !finite(d) {
		d = c.cfg.InitialDifficulty
	}
	c.current = clamp(d, c.cfg.MinDifficulty, c.cfg.MaxDifficulty)
	c.settings = DeriveSettings(c.current)
}

// ingest applies a partial update and refreshes the derived profile.
func (c *engineCore) ingest(u MetricsUpdate) {
	c.metrics.apply(u)
	c.refresh()
}

func (c *engineCore) refresh() {
	m := &c.metrics.m
	c.emotional = AnalyzeEmotions(m.EmotionalStates)
	c.engagement = AnalyzeEngagement(m.EngagementSamples, c.profile.Motivation)
	c.profile = updateProfile(c.profile, m, c.emotional, c.engagement)
	c.player.Observe(c.profile)
}

func (c *engineCore) triggers() bool {
	return adaptationTriggers(c.profile, c.emotional, c.metrics.m.AccuracySamples)
}

// record finalizes an adaptation moving difficulty to target.
func (c *engineCore) record(t AdaptationType, reason string, magnitude, target float64, action Action) DifficultyAdaptation {
	now := c.cfg.Clock()
	p := c.profile
	from := c.current
	optimal := c.model.Predict(p)
	before := c.settings

	c.setDifficulty(target)
	to := c.current

	outcome, impact := estimateImpact(p, from, to, optimal, c.metrics.recentPerformance())
	confidence := estimateConfidence(from, optimal, len(c.metrics.m.AccuracySamples))
	rel := relativeChange(from, to)
	risk := estimateRisk(p, rel, confidence)

	c.seq++
	a := DifficultyAdaptation{
		ID:              c.adaptationID(c.seq),
		Seq:             c.seq,
		Type:            t,
		Magnitude:       magnitude,
		Reason:          reason,
		Confidence:      confidence,
		ExpectedOutcome: outcome,
		Risk:            risk,
		PlayerImpact:    impact,
		SystemImpact: SystemImpact{
			DifficultyDelta: to - from,
			Stability:       1 - clamp01(math.Abs(rel)*2),
			SettingsChanged: changedFields(before, c.settings),
		},
		Action:            action,
		Reward:            computeReward(impact, risk),
		FromDifficulty:    from,
		ToDifficulty:      to,
		OptimalDifficulty: optimal,
		Timestamp:         now,
	}
	c.lastAdaptAt = now
	c.adaptations = pushCapped(c.adaptations, c.cfg.Caps.Adaptations, a)
	c.monitor.Observe(a, p)
	c.graph.Add(now, to)
	return a
}

// adaptationID is stable for a given session, reset epoch and sequence number.
func (c *engineCore) adaptationID(seq uint64) string {
	name := fmt.Sprintf("%s/%d", c.sessionID, seq)
	if c.epoch > 0 {
		name = fmt.Sprintf("%s/%d/%d", c.sessionID, c.epoch, seq)
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// secondsSinceAdaptation counts from session start before the first adaptation.
func (c *engineCore) secondsSinceAdaptation() float64 {
	since := c.lastAdaptAt
	if since.IsZero() {
		since = c.startedAt
	}
	return c.cfg.Clock().Sub(since).Seconds()
}

func (c *engineCore) resetCore() {
	keepPsy := c.profile.Psychological
	keepMot := c.profile.Motivation
	c.metrics.reset()
	c.profile = DefaultPlayerProfile()
	c.profile.Psychological = keepPsy
	c.profile.Motivation = keepMot
	c.emotional = defaultEmotionalAnalysis()
	c.engagement = AnalyzeEngagement(nil, keepMot)
	c.adaptations = nil
	c.seq = 0
	c.epoch++
	c.startedAt = c.cfg.Clock()
	c.lastAdaptAt = time.Time{}
	c.monitor.reset()
	c.graph.reset()
	c.player.reset()
	c.setDifficulty(c.cfg.InitialDifficulty)
	c.graph.Add(c.startedAt, c.current)
}

// CurrentDifficulty is always within the configured bounds.
func (c *engineCore) CurrentDifficulty() float64 { return c.current }

func (c *engineCore) Settings() DifficultySettings { return c.settings }

func (c *engineCore) PlayerProfile() PlayerProfile { return c.profile }

func (c *engineCore) SessionID() string { return c.sessionID }

// Metrics returns a copy of the performance buffers.
func (c *engineCore) Metrics() EnhancedPerformanceMetrics { return c.metrics.snapshot() }

func (c *engineCore) EmotionalAnalysis() EmotionalAnalysis { return c.emotional }

func (c *engineCore) EngagementAnalysis() EngagementAnalysis { return c.engagement }

// Adaptations returns a copy of the capped adaptation history, oldest first.
func (c *engineCore) Adaptations() []DifficultyAdaptation {
	return append([]DifficultyAdaptation{}, c.adaptations...)
}

func (c *engineCore) Alerts() []Alert { return c.monitor.Alerts() }

func (c *engineCore) Graph() []GraphPoint { return c.graph.Points() }

// OptimalDifficulty is the model's current prediction for the profile.
func (c *engineCore) OptimalDifficulty() float64 { return c.model.Predict(c.profile) }

// SetPsychologicalProfile replaces the static traits.
func (c *engineCore) SetPsychologicalProfile(p PsychologicalProfile) {
	c.profile.Psychological = p
}

// SetMotivationalFactors replaces the static motivations and re-scores engagement.
func (c *engineCore) SetMotivationalFactors(m MotivationalFactors) {
	c.profile.Motivation = m
	c.engagement = AnalyzeEngagement(c.metrics.m.EngagementSamples, m)
	c.profile.EngagementLevel = c.engagement.Overall
}
