package replay

import "frontline-lite/difficulty"

const TapeVersion = 1

type SessionSpec struct {
	Variant   string                    `json:"variant"`
	SessionID string                    `json:"session_id,omitempty"`
	StartMs   int64                     `json:"start_ms"`
	Engine    *EngineSpec               `json:"engine,omitempty"`
	Profile   *difficulty.PlayerProfile `json:"profile,omitempty"`
	Steps     []StepSpec                `json:"steps"`
	RNG       *RNGSpec                  `json:"rng,omitempty"`
}

type EngineSpec struct {
	Epsilon           *float64 `json:"epsilon,omitempty"`
	InitialDifficulty float64  `json:"initial_difficulty,omitempty"`
	QTableLimit       int      `json:"qtable_limit,omitempty"`
}

// StepSpec is one performance report, AtMs relative to StartMs.
type StepSpec struct {
	AtMs   int64                    `json:"at_ms"`
	Update difficulty.MetricsUpdate `json:"update"`
	Reset  bool                     `json:"reset,omitempty"`
}

type RNGSpec struct {
	Seed int64 `json:"seed"`
}

type SessionTape struct {
	TapeVersion     int           `json:"tape_version"`
	SessionID       string        `json:"session_id"`
	Variant         string        `json:"variant"`
	FinalDifficulty float64       `json:"final_difficulty"`
	Events          []ReplayEvent `json:"events"`
}

type ReplayEvent struct {
	Type        string `json:"type"`
	Seq         uint64 `json:"seq"`
	StepIndex   int32  `json:"step_index"`
	TsMs        int64  `json:"ts_ms"`
	EnvelopeB64 string `json:"envelope_b64"`
}
