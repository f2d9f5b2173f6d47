package difficulty

import (
	"context"
	"fmt"
	"strings"
)

const (
	VariantEnhanced = "enhanced"
	VariantSimple   = "simple"
)

// Engine is the surface both variants expose to a game loop.
type Engine interface {
	Variant() string
	UpdatePlayerPerformance(u MetricsUpdate) *DifficultyAdaptation
	CurrentDifficulty() float64
	Settings() DifficultySettings
	PlayerProfile() PlayerProfile
	Insights() DifficultyInsights
	AdvisedInsights(ctx context.Context) DifficultyInsights
	Adaptations() []DifficultyAdaptation
	Reset()
	Export() State
	Restore(st State)
}

var (
	_ Engine = (*System)(nil)
	_ Engine = (*SimpleSystem)(nil)
)

// NewEngine builds the named variant; "" selects the enhanced engine.
func NewEngine(variant string, cfg Config) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(variant)) {
	case "", VariantEnhanced:
		return NewSystem(cfg)
	case VariantSimple:
		return NewSimpleSystem(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
}

// State is the persisted form of an engine between sessions. Per-session
// buffers are not part of it.
type State struct {
	Variant           string        `json:"variant"`
	CurrentDifficulty float64       `json:"currentDifficulty"`
	Profile           PlayerProfile `json:"profile"`
	QTable            []QEntry      `json:"qTable,omitempty"`
	AdaptationCount   uint64        `json:"adaptationCount"`
}

func (c *engineCore) exportCore(variant string) State {
	return State{
		Variant:           variant,
		CurrentDifficulty: c.current,
		Profile:           c.profile,
		AdaptationCount:   c.seq,
	}
}

// restoreCore trusts nothing: the difficulty is clamped and an empty profile
// keeps the defaults.
func (c *engineCore) restoreCore(st State) {
	if st.Profile != (PlayerProfile{}) {
		p := st.Profile
		if !finite(p.SkillLevel) {
			p.SkillLevel = DefaultPlayerProfile().SkillLevel
		}
		p.SkillLevel = clamp(p.SkillLevel, skillMin, skillMax)
		p.PlayStyle = ParsePlayStyle(string(p.PlayStyle))
		c.profile = p
	}
	if st.CurrentDifficulty > 0 {
		c.setDifficulty(st.CurrentDifficulty)
	}
	c.seq = st.AdaptationCount
}
