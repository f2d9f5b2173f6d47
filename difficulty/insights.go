package difficulty

import (
	"context"
	"fmt"
	"math"
)

type DifficultyInsights struct {
	CurrentDifficulty float64               `json:"currentDifficulty"`
	OptimalDifficulty float64               `json:"optimalDifficulty"`
	DifficultyTrend   string                `json:"difficultyTrend"`
	SkillTrend        string                `json:"skillTrend"`
	EngagementTrend   string                `json:"engagementTrend"`
	Frustration       float64               `json:"frustration"`
	Engagement        float64               `json:"engagement"`
	PlayStyle         PlayStyle             `json:"playStyle"`
	AdaptationCount   uint64                `json:"adaptationCount"`
	LastAdaptation    *DifficultyAdaptation `json:"lastAdaptation,omitempty"`
	RecentAlerts      int                   `json:"recentAlerts"`
	QTableSize        int                   `json:"qTableSize"`
	ExplorationRate   float64               `json:"explorationRate"`
	Recommendations   []string              `json:"recommendations"`
}

func (c *engineCore) baseInsights() DifficultyInsights {
	optimal := c.model.Predict(c.profile)
	ins := DifficultyInsights{
		CurrentDifficulty: c.current,
		OptimalDifficulty: optimal,
		DifficultyTrend:   c.graph.Trend(),
		SkillTrend:        c.player.SkillTrend(),
		EngagementTrend:   c.player.EngagementTrend(),
		Frustration:       c.profile.FrustrationLevel,
		Engagement:        c.profile.EngagementLevel,
		PlayStyle:         c.profile.PlayStyle,
		AdaptationCount:   c.seq,
		RecentAlerts:      len(c.monitor.alerts),
	}
	if n := len(c.adaptations); n > 0 {
		last := c.adaptations[n-1]
		ins.LastAdaptation = &last
	}
	ins.Recommendations = recommend(ins)
	return ins
}

func recommend(ins DifficultyInsights) []string {
	var out []string
	if ins.Frustration > frustrationThreshold {
		out = append(out, "Ease enemy pressure and add resource drops until frustration settles")
	}
	if ins.Engagement < engagementThreshold {
		out = append(out, "Introduce a new objective or encounter type to recover engagement")
	}
	if gap := ins.OptimalDifficulty - ins.CurrentDifficulty; math.Abs(gap) > 0.5 {
		out = append(out, fmt.Sprintf("Move difficulty toward %.2f (currently %.2f)", ins.OptimalDifficulty, ins.CurrentDifficulty))
	}
	switch ins.SkillTrend {
	case TrendImproving:
		out = append(out, "Player skill is improving; schedule a harder encounter")
	case TrendDeclining:
		out = append(out, "Player skill is declining; offer a recovery segment")
	}
	if len(out) == 0 {
		out = append(out, "Difficulty is well matched to the player")
	}
	return out
}

// advise appends advisor hints; advisor failures leave the insights as they are.
func (c *engineCore) advise(ctx context.Context, ins DifficultyInsights) DifficultyInsights {
	hints, err := c.cfg.Advisor.Advise(ctx, AdvisorRequest{
		Profile:  c.profile,
		Settings: c.settings,
		Insights: ins,
	})
	if err != nil {
		c.cfg.Logger.Printf("[Difficulty] advisor unavailable: %v", err)
		return ins
	}
	ins.Recommendations = append(ins.Recommendations, hints...)
	return ins
}
