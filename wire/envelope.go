// Package wire encodes engine traffic as protobuf envelopes. Payloads are
// google.protobuf.Struct values so browser and server share one schema-less
// frame format.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Envelope types.
const (
	TypeHello       = "hello"
	TypePerformance = "performance"
	TypeSettings    = "settings"
	TypeAdaptation  = "adaptation"
	TypeInsights    = "insights"
	TypeProfile     = "profile"
	TypeSpawn       = "spawn"
	TypeEnemies     = "enemies"
	TypeReset       = "reset"
	TypeError       = "error"
)

var ErrMalformedEnvelope = errors.New("malformed envelope")

type Envelope struct {
	Type      string
	Seq       uint64
	TsMs      int64
	SessionID string
	Payload   *structpb.Struct
}

var marshalOpts = proto.MarshalOptions{Deterministic: true}

// ToProto flattens the envelope into a single Struct.
func (e *Envelope) ToProto() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"type":  structpb.NewStringValue(e.Type),
		"seq":   structpb.NewNumberValue(float64(e.Seq)),
		"ts_ms": structpb.NewNumberValue(float64(e.TsMs)),
	}
	if e.SessionID != "" {
		fields["session_id"] = structpb.NewStringValue(e.SessionID)
	}
	if e.Payload != nil {
		fields["payload"] = structpb.NewStructValue(e.Payload)
	}
	return &structpb.Struct{Fields: fields}
}

// FromProto is the inverse of ToProto.
func FromProto(s *structpb.Struct) (*Envelope, error) {
	if s == nil {
		return nil, ErrMalformedEnvelope
	}
	f := s.GetFields()
	typ := f["type"].GetStringValue()
	if typ == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEnvelope)
	}
	return &Envelope{
		Type:      typ,
		Seq:       uint64(f["seq"].GetNumberValue()),
		TsMs:      int64(f["ts_ms"].GetNumberValue()),
		SessionID: f["session_id"].GetStringValue(),
		Payload:   f["payload"].GetStructValue(),
	}, nil
}

// Marshal produces deterministic binary bytes.
func Marshal(e *Envelope) ([]byte, error) {
	return marshalOpts.Marshal(e.ToProto())
}

func Unmarshal(b []byte) (*Envelope, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return FromProto(&s)
}

// MarshalJSON uses the canonical protobuf JSON mapping.
func MarshalJSON(e *Envelope) ([]byte, error) {
	return protojson.Marshal(e.ToProto())
}

func UnmarshalJSON(b []byte) (*Envelope, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return FromProto(&s)
}

// PayloadFrom converts any JSON-encodable value into a Struct.
func PayloadFrom(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("payload must be an object: %w", err)
	}
	return structpb.NewStruct(m)
}

// DecodePayload fills out from a Struct using the JSON field names.
func DecodePayload(p *structpb.Struct, out any) error {
	if p == nil {
		return fmt.Errorf("%w: missing payload", ErrMalformedEnvelope)
	}
	raw, err := protojson.Marshal(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// New builds an envelope around a payload value.
func New(typ string, seq uint64, tsMs int64, payload any) (*Envelope, error) {
	env := &Envelope{Type: typ, Seq: seq, TsMs: tsMs}
	if payload != nil {
		p, err := PayloadFrom(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", typ, err)
		}
		env.Payload = p
	}
	return env, nil
}
