package replay

import (
	"fmt"
	"strings"

	"frontline-lite/difficulty"
)

const defaultSessionID = "replay_local"

type normalizedSpec struct {
	variant   string
	sessionID string
	config    difficulty.Config
	profile   *difficulty.PlayerProfile
	steps     []StepSpec
}

func normalizeSpec(spec SessionSpec) (normalizedSpec, error) {
	var out normalizedSpec

	out.variant = strings.ToLower(strings.TrimSpace(spec.Variant))
	if out.variant == "" {
		out.variant = difficulty.VariantEnhanced
	}
	if out.variant != difficulty.VariantEnhanced && out.variant != difficulty.VariantSimple {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_variant", Message: fmt.Sprintf("unknown variant %q", spec.Variant)}
	}
	if len(spec.Steps) == 0 {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_steps", Message: "at least 1 step is required"}
	}

	out.sessionID = strings.TrimSpace(spec.SessionID)
	if out.sessionID == "" {
		out.sessionID = defaultSessionID
	}

	cfg := difficulty.DefaultConfig()
	if out.variant == difficulty.VariantSimple {
		cfg = difficulty.SimpleConfig()
	}
	if e := spec.Engine; e != nil {
		if e.Epsilon != nil {
			if *e.Epsilon < 0 || *e.Epsilon > 1 {
				return out, &ReplayError{StepIndex: -1, Reason: "invalid_engine", Message: "epsilon must be in [0, 1]"}
			}
			cfg.Epsilon = *e.Epsilon
		}
		if e.InitialDifficulty != 0 {
			if e.InitialDifficulty < cfg.MinDifficulty || e.InitialDifficulty > cfg.MaxDifficulty {
				return out, &ReplayError{StepIndex: -1, Reason: "invalid_engine", Message: "initial_difficulty out of range"}
			}
			cfg.InitialDifficulty = e.InitialDifficulty
		}
		if e.QTableLimit < 0 {
			return out, &ReplayError{StepIndex: -1, Reason: "invalid_engine", Message: "qtable_limit must be >= 0"}
		}
		cfg.QTableLimit = e.QTableLimit
	}
	cfg.Seed = seedFromSpec(spec.RNG)
	cfg.SessionID = out.sessionID
	out.config = cfg
	out.profile = spec.Profile

	var prevAt int64
	for i, step := range spec.Steps {
		if step.AtMs < 0 || step.AtMs < prevAt {
			return out, &ReplayError{StepIndex: int32(i), Reason: "non_monotonic_time", Message: fmt.Sprintf("step %d at_ms %d precedes %d", i, step.AtMs, prevAt)}
		}
		if !step.Reset && step.Update.Empty() {
			return out, &ReplayError{StepIndex: int32(i), Reason: "empty_step", Message: "step carries no update"}
		}
		prevAt = step.AtMs
	}
	out.steps = spec.Steps
	return out, nil
}

// seedFromSpec pins the engine RNG; tapes must never depend on wall time.
func seedFromSpec(rng *RNGSpec) int64 {
	if rng == nil || rng.Seed == 0 {
		return 1
	}
	return rng.Seed
}
