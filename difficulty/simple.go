package difficulty

import "context"

const (
	simpleMaxDifficulty = 3.0
	simpleStep          = 0.1
)

// SimpleSystem is the lightweight variant: no learning, difficulty drifts a
// tenth of the way toward the predicted optimum when a trigger fires.
type SimpleSystem struct {
	*engineCore
}

// NewSimpleSystem caps MaxDifficulty at 3.0.
func NewSimpleSystem(cfg Config) (*SimpleSystem, error) {
	if cfg.MaxDifficulty <= 0 || cfg.MaxDifficulty > simpleMaxDifficulty {
		cfg.MaxDifficulty = simpleMaxDifficulty
	}
	if cfg.InitialDifficulty > cfg.MaxDifficulty {
		cfg.InitialDifficulty = cfg.MaxDifficulty
	}
	core, err := newEngineCore(cfg, false)
	if err != nil {
		return nil, err
	}
	return &SimpleSystem{engineCore: core}, nil
}

func (s *SimpleSystem) Variant() string { return VariantSimple }

func (s *SimpleSystem) UpdatePlayerPerformance(u MetricsUpdate) *DifficultyAdaptation {
	s.ingest(u)
	if !s.triggers() {
		return nil
	}

	p := s.profile
	optimal := s.model.Predict(p)
	var (
		t      AdaptationType
		reason string
		target float64
	)
	switch {
	case p.FrustrationLevel > frustrationThreshold:
		t, reason = AdaptationDecrease, "high frustration"
		target = s.current * (1 - simpleStep)
	case optimal > s.current:
		t, reason = AdaptationIncrease, "below predicted optimum"
		target = s.current + (optimal-s.current)*simpleStep
	case optimal < s.current:
		t, reason = AdaptationDecrease, "above predicted optimum"
		target = s.current + (optimal-s.current)*simpleStep
	default:
		t, reason = AdaptationMaintain, "at predicted optimum"
		target = s.current
	}
	a := s.record(t, reason, simpleStep, target, ActionMaintain)
	return &a
}

func (s *SimpleSystem) Insights() DifficultyInsights { return s.baseInsights() }

func (s *SimpleSystem) AdvisedInsights(ctx context.Context) DifficultyInsights {
	return s.advise(ctx, s.Insights())
}

func (s *SimpleSystem) Reset() { s.resetCore() }

func (s *SimpleSystem) Export() State { return s.exportCore(VariantSimple) }

func (s *SimpleSystem) Restore(st State) { s.restoreCore(st) }
