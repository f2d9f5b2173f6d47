package difficulty

import (
	"context"
)

// System is the enhanced adaptive difficulty engine for one player. It blends
// heuristic triggers with a tabular Q-learner.
//
// A System is not safe for concurrent use; callers serialize access.
type System struct {
	*engineCore
	rl *rlEngine
}

// NewSystem creates an enhanced engine. Zero-valued Config fields are invalid;
// start from DefaultConfig.
func NewSystem(cfg Config) (*System, error) {
	core, err := newEngineCore(cfg, true)
	if err != nil {
		return nil, err
	}
	rl, err := newRLEngine(core.cfg)
	if err != nil {
		return nil, err
	}
	return &System{engineCore: core, rl: rl}, nil
}

func (s *System) Variant() string { return VariantEnhanced }

// UpdatePlayerPerformance ingests a partial update and adapts when warranted.
// It returns the adaptation applied, or nil.
func (s *System) UpdatePlayerPerformance(u MetricsUpdate) *DifficultyAdaptation {
	s.ingest(u)
	state := s.stateVector()
	action := s.rl.SelectAction(state)
	if !s.shouldAdapt(action) {
		return nil
	}
	a := s.adapt(state, action)
	return &a
}

// ShouldAdaptDifficulty evaluates the triggers against the current profile,
// consulting the policy for a fresh action.
func (s *System) ShouldAdaptDifficulty() bool {
	return s.shouldAdapt(s.rl.SelectAction(s.stateVector()))
}

// AdaptDifficulty forces one adaptation step.
func (s *System) AdaptDifficulty() DifficultyAdaptation {
	state := s.stateVector()
	return s.adapt(state, s.rl.SelectAction(state))
}

func (s *System) shouldAdapt(action Action) bool {
	return s.triggers() || action != ActionMaintain
}

func (s *System) adapt(state StateVector, action Action) DifficultyAdaptation {
	p := s.profile
	t, reason := classifyAdaptation(p, action)
	magnitude := magnitudeFor(t, p)
	target := applyAdaptation(s.current, t, magnitude, s.model.Predict(p))

	a := s.record(t, reason, magnitude, target, action)
	s.rl.Update(ReinforcementLearningState{
		State:       state,
		Action:      action,
		Reward:      a.Reward,
		NextState:   s.stateVector(),
		TimestampMs: a.Timestamp.UnixMilli(),
	})
	return a
}

func (s *System) stateVector() StateVector {
	return StateVector{
		s.current,
		s.profile.SkillLevel,
		s.profile.FrustrationLevel,
		s.profile.EngagementLevel,
		s.metrics.recentPerformance(),
		clamp01(s.secondsSinceAdaptation() / timeSinceHorizon),
	}
}

// SelectAction exposes the policy's choice for the current state.
func (s *System) SelectAction() Action { return s.rl.SelectAction(s.stateVector()) }

// QValues returns the learned row for the current state, if any.
func (s *System) QValues() (QValues, bool) { return s.rl.Q(s.stateVector()) }

func (s *System) QTableSize() int { return s.rl.table.size() }

// LearningHistory returns a copy of the recorded transitions.
func (s *System) LearningHistory() []ReinforcementLearningState {
	return append([]ReinforcementLearningState{}, s.rl.history...)
}

// Insights summarizes the engine for dashboards.
func (s *System) Insights() DifficultyInsights {
	ins := s.baseInsights()
	ins.QTableSize = s.rl.table.size()
	ins.ExplorationRate = s.rl.epsilon
	return ins
}

func (s *System) AdvisedInsights(ctx context.Context) DifficultyInsights {
	return s.advise(ctx, s.Insights())
}

// Reset returns the difficulty to its initial value and clears metrics and
// histories. The learned Q-table survives.
func (s *System) Reset() {
	s.resetCore()
	s.rl.history = nil
}

// Export captures the state worth persisting between sessions.
func (s *System) Export() State {
	st := s.exportCore(VariantEnhanced)
	st.QTable = s.rl.table.entries()
	return st
}

func (s *System) Restore(st State) {
	s.restoreCore(st)
	if st.QTable != nil {
		s.rl.restore(st.QTable)
	}
}
