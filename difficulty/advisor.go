package difficulty

import "context"

// AdvisorRequest is what an external advisor sees.
type AdvisorRequest struct {
	Profile  PlayerProfile      `json:"profile"`
	Settings DifficultySettings `json:"settings"`
	Insights DifficultyInsights `json:"insights"`
}

// Advisor is an optional collaborator that contributes extra recommendations.
// Failures never affect difficulty decisions.
type Advisor interface {
	Advise(ctx context.Context, req AdvisorRequest) ([]string, error)
}

// NoopAdvisor is the default Advisor.
type NoopAdvisor struct{}

func (NoopAdvisor) Advise(context.Context, AdvisorRequest) ([]string, error) { return nil, nil }
