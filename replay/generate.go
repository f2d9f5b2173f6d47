package replay

import (
	"encoding/base64"
	"io"
	"log"
	"time"

	"frontline-lite/difficulty"
	"frontline-lite/wire"
)

type helloPayload struct {
	Variant   string                        `json:"variant"`
	SessionID string                        `json:"sessionId"`
	Profile   difficulty.PlayerProfile      `json:"profile"`
	Settings  difficulty.DifficultySettings `json:"settings"`
}

// GenerateSessionTape runs the spec through a fresh engine and records every
// frame the server would have sent. Same spec, same tape.
func GenerateSessionTape(spec SessionSpec) (*SessionTape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	nowMs := spec.StartMs
	cfg := ns.config
	cfg.Clock = func() time.Time { return time.UnixMilli(nowMs).UTC() }
	cfg.Logger = log.New(io.Discard, "", 0)

	engine, err := difficulty.NewEngine(ns.variant, cfg)
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}
	if ns.profile != nil {
		engine.Restore(difficulty.State{Profile: *ns.profile})
	}

	builder := newTapeBuilder(ns.sessionID)
	if err := builder.add(wire.TypeHello, -1, nowMs, helloPayload{
		Variant:   engine.Variant(),
		SessionID: ns.sessionID,
		Profile:   engine.PlayerProfile(),
		Settings:  engine.Settings(),
	}); err != nil {
		return nil, err
	}

	for i, step := range ns.steps {
		idx := int32(i)
		nowMs = spec.StartMs + step.AtMs

		if step.Reset {
			engine.Reset()
			if err := builder.add(wire.TypeReset, idx, nowMs, nil); err != nil {
				return nil, err
			}
			if err := builder.add(wire.TypeSettings, idx, nowMs, engine.Settings()); err != nil {
				return nil, err
			}
			if step.Update.Empty() {
				continue
			}
		}

		if err := builder.add(wire.TypePerformance, idx, nowMs, step.Update); err != nil {
			return nil, err
		}
		adaptation := engine.UpdatePlayerPerformance(step.Update)
		if adaptation == nil {
			continue
		}
		if err := builder.add(wire.TypeAdaptation, idx, nowMs, adaptation); err != nil {
			return nil, err
		}
		if err := builder.add(wire.TypeSettings, idx, nowMs, engine.Settings()); err != nil {
			return nil, err
		}
	}

	last := int32(len(ns.steps) - 1)
	if err := builder.add(wire.TypeInsights, last, nowMs, engine.Insights()); err != nil {
		return nil, err
	}

	return &SessionTape{
		TapeVersion:     TapeVersion,
		SessionID:       ns.sessionID,
		Variant:         engine.Variant(),
		FinalDifficulty: engine.CurrentDifficulty(),
		Events:          builder.events,
	}, nil
}

type tapeBuilder struct {
	sessionID string
	seq       uint64
	events    []ReplayEvent
}

func newTapeBuilder(sessionID string) *tapeBuilder {
	return &tapeBuilder{
		sessionID: sessionID,
		events:    make([]ReplayEvent, 0, 64),
	}
}

func (b *tapeBuilder) add(typ string, stepIdx int32, tsMs int64, payload any) error {
	b.seq++
	env, err := wire.New(typ, b.seq, tsMs, payload)
	if err != nil {
		return &ReplayError{StepIndex: stepIdx, Reason: "encode_failed", Message: err.Error()}
	}
	env.SessionID = b.sessionID
	bin, err := wire.Marshal(env)
	if err != nil {
		return &ReplayError{StepIndex: stepIdx, Reason: "encode_failed", Message: err.Error()}
	}
	b.events = append(b.events, ReplayEvent{
		Type:        typ,
		Seq:         b.seq,
		StepIndex:   stepIdx,
		TsMs:        tsMs,
		EnvelopeB64: base64.StdEncoding.EncodeToString(bin),
	})
	return nil
}
