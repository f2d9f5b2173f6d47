package replay

import (
	"encoding/base64"
	"fmt"

	"frontline-lite/wire"
)

type WireSessionTape struct {
	TapeVersion     int               `json:"tapeVersion"`
	SessionID       string            `json:"sessionId"`
	Variant         string            `json:"variant"`
	FinalDifficulty float64           `json:"finalDifficulty"`
	Events          []WireReplayEvent `json:"events"`
}

type WireReplayEvent struct {
	Type        string `json:"type"`
	Seq         uint64 `json:"seq"`
	StepIndex   int32  `json:"stepIndex"`
	EnvelopeB64 string `json:"envelopeB64"`
}

func ToWireSessionTape(tape *SessionTape) *WireSessionTape {
	if tape == nil {
		return nil
	}
	out := &WireSessionTape{
		TapeVersion:     tape.TapeVersion,
		SessionID:       tape.SessionID,
		Variant:         tape.Variant,
		FinalDifficulty: tape.FinalDifficulty,
		Events:          make([]WireReplayEvent, 0, len(tape.Events)),
	}
	for _, e := range tape.Events {
		out.Events = append(out.Events, WireReplayEvent{
			Type:        e.Type,
			Seq:         e.Seq,
			StepIndex:   e.StepIndex,
			EnvelopeB64: e.EnvelopeB64,
		})
	}
	return out
}

// Envelope decodes the event's protobuf frame.
func (e ReplayEvent) Envelope() (*wire.Envelope, error) {
	bin, err := base64.StdEncoding.DecodeString(e.EnvelopeB64)
	if err != nil {
		return nil, fmt.Errorf("decode envelope seq=%d: %w", e.Seq, err)
	}
	return wire.Unmarshal(bin)
}
