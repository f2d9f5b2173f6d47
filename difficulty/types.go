package difficulty

import "strings"

// PlayStyle 玩家风格
type PlayStyle string

const (
	PlayStyleAggressive PlayStyle = "aggressive"
	PlayStyleDefensive  PlayStyle = "defensive"
	PlayStyleBalanced   PlayStyle = "balanced"
	PlayStyleTactical   PlayStyle = "tactical"
	PlayStyleAdaptive   PlayStyle = "adaptive"
)

// playStyleModifier scales the predicted optimum per style.
var playStyleModifier = map[PlayStyle]float64{
	PlayStyleAggressive: 1.1,
	PlayStyleDefensive:  0.9,
	PlayStyleBalanced:   1.0,
	PlayStyleTactical:   1.05,
	PlayStyleAdaptive:   1.0,
}

// ParsePlayStyle maps a free-form tag to a PlayStyle, defaulting to balanced.
func ParsePlayStyle(s string) PlayStyle {
	style := PlayStyle(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := playStyleModifier[style]; ok {
		return style
	}
	return PlayStyleBalanced
}

// Emotion tags carried by EmotionalSample.
const (
	EmotionFrustrated = "frustrated"
	EmotionExcited    = "excited"
	EmotionBored      = "bored"
	EmotionAnxious    = "anxious"
	EmotionFocused    = "focused"
	EmotionCalm       = "calm"
	EmotionNeutral    = "neutral"
)

var knownEmotions = map[string]bool{
	EmotionFrustrated: true,
	EmotionExcited:    true,
	EmotionBored:      true,
	EmotionAnxious:    true,
	EmotionFocused:    true,
	EmotionCalm:       true,
	EmotionNeutral:    true,
}

// Behaviour tags carried in BehavioralPatterns.
const (
	BehaviorRush          = "rush"
	BehaviorFlank         = "flank"
	BehaviorHoldPosition  = "hold_position"
	BehaviorUseCover      = "use_cover"
	BehaviorRetreat       = "retreat"
	BehaviorSnipe         = "snipe"
	BehaviorObjective     = "objective"
	BehaviorSwitchLoadout = "switch_loadout"
)

// behaviorStyle groups behaviour tags into the style they evidence.
var behaviorStyle = map[string]PlayStyle{
	BehaviorRush:          PlayStyleAggressive,
	BehaviorFlank:         PlayStyleAggressive,
	BehaviorHoldPosition:  PlayStyleDefensive,
	BehaviorUseCover:      PlayStyleDefensive,
	BehaviorRetreat:       PlayStyleDefensive,
	BehaviorSnipe:         PlayStyleTactical,
	BehaviorObjective:     PlayStyleTactical,
	BehaviorSwitchLoadout: PlayStyleAdaptive,
}

// AdaptationType 调整类型
type AdaptationType string

const (
	AdaptationIncrease AdaptationType = "increase"
	AdaptationDecrease AdaptationType = "decrease"
	AdaptationMaintain AdaptationType = "maintain"
	AdaptationDynamic  AdaptationType = "dynamic"
)

// adaptationMagnitude is the base step per adaptation type.
var adaptationMagnitude = map[AdaptationType]float64{
	AdaptationIncrease: 0.15,
	AdaptationDecrease: 0.2,
	AdaptationDynamic:  0.1,
	AdaptationMaintain: 0,
}

// Action is the RL action space: -1 decrease, 0 maintain, 1 increase.
type Action int

const (
	ActionDecrease Action = -1
	ActionMaintain Action = 0
	ActionIncrease Action = 1
)

// ActionDictionary names each action for adaptation reasons.
var ActionDictionary = map[Action]string{
	ActionDecrease: "decrease",
	ActionMaintain: "maintain",
	ActionIncrease: "increase",
}

func (a Action) index() int { return int(a) + 1 }

func actionFromIndex(i int) Action { return Action(i - 1) }

// Trend labels reported by the monitors and insights.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"

	TrendImproving = "improving"
	TrendDeclining = "declining"
)
