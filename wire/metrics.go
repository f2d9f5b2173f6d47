package wire

import (
	"encoding/json"

	"frontline-lite/difficulty"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ParseMetricsUpdate decodes a performance payload one field at a time. A
// field that fails to decode is dropped; the others still apply.
func ParseMetricsUpdate(p *structpb.Struct) (difficulty.MetricsUpdate, []string) {
	var (
		u       difficulty.MetricsUpdate
		skipped []string
	)
	fields := p.GetFields()
	u.Kills = decodeField[[]difficulty.KillEvent](fields, "kills", &skipped)
	u.Deaths = decodeField[[]difficulty.DeathEvent](fields, "deaths", &skipped)
	u.Accuracy = decodeField[[]float64](fields, "accuracy", &skipped)
	u.ReactionTimes = decodeField[[]float64](fields, "reactionTimes", &skipped)
	u.EmotionalStates = decodeField[[]difficulty.EmotionalSample](fields, "emotionalStates", &skipped)
	u.Engagement = decodeField[[]difficulty.EngagementSample](fields, "engagement", &skipped)
	u.Behaviors = decodeField[[]string](fields, "behaviors", &skipped)

	if v, ok := fields["sessionSeconds"]; ok {
		if n, isNum := v.GetKind().(*structpb.Value_NumberValue); isNum {
			secs := n.NumberValue
			u.SessionSeconds = &secs
		} else {
			skipped = append(skipped, "sessionSeconds")
		}
	}
	if v, ok := fields["objectivesCompleted"]; ok {
		if n, isNum := v.GetKind().(*structpb.Value_NumberValue); isNum {
			count := int(n.NumberValue)
			u.ObjectivesCompleted = &count
		} else {
			skipped = append(skipped, "objectivesCompleted")
		}
	}
	return u, skipped
}

// decodeField returns the zero value when the field is absent or malformed.
func decodeField[T any](fields map[string]*structpb.Value, name string, skipped *[]string) T {
	var out T
	v, ok := fields[name]
	if !ok {
		return out
	}
	raw, err := protojson.Marshal(v)
	if err == nil {
		err = json.Unmarshal(raw, &out)
	}
	if err != nil {
		*skipped = append(*skipped, name)
		var zero T
		return zero
	}
	return out
}
