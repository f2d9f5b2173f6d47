package difficulty

import (
	"math"
	"strings"
	"testing"
)

func newTestRL(t *testing.T, mutate func(*Config)) *rlEngine {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := newRLEngine(cfg.resolved())
	if err != nil {
		t.Fatalf("newRLEngine: %v", err)
	}
	return e
}

func TestStateVectorKeyRoundsToTwoDecimals(t *testing.T) {
	s := StateVector{1, 0.333, 0.5, 0.7, 0.456, 1}
	if got := s.Key(); got != "1.00,0.33,0.50,0.70,0.46,1.00" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestQLearningConvergesToDiscountedReturn(t *testing.T) {
	e := newTestRL(t, nil)
	s := StateVector{1, 1, 0.3, 0.7, 0.5, 0}

	for i := 0; i < 5000; i++ {
		e.Update(ReinforcementLearningState{State: s, Action: ActionIncrease, Reward: 1, NextState: s})
	}
	q, ok := e.Q(s)
	if !ok {
		t.Fatalf("expected q row for state")
	}
	want := 1 / (1 - 0.95)
	if math.Abs(q[ActionIncrease.index()]-want) > 1e-3 {
		t.Fatalf("Q(increase): got %v want %v", q[ActionIncrease.index()], want)
	}
	if got := e.SelectAction(s); got != ActionIncrease {
		t.Fatalf("greedy action: got %v want increase", got)
	}
}

func TestQLearningTerminalUsesRewardOnly(t *testing.T) {
	e := newTestRL(t, nil)
	s := StateVector{1, 1, 0.3, 0.7, 0.5, 0}
	next := StateVector{2, 1, 0.3, 0.7, 0.5, 0}
	e.table.put(next.Key(), QValues{0, 0, 10})

	e.Update(ReinforcementLearningState{State: s, Action: ActionDecrease, Reward: 0.5, NextState: next, Done: true})
	q, _ := e.Q(s)
	if !approx(q[ActionDecrease.index()], 0.05) {
		t.Fatalf("Q(decrease): got %v want 0.05", q[ActionDecrease.index()])
	}
}

func TestSelectAction_GreedyTieHoldsDifficulty(t *testing.T) {
	e := newTestRL(t, nil)
	if got := e.SelectAction(StateVector{}); got != ActionMaintain {
		t.Fatalf("unseen state should maintain, got %v", got)
	}
	q, ok := e.Q(StateVector{})
	if !ok || q != (QValues{}) {
		t.Fatalf("unseen state should be initialized to zeros, got %v ok=%v", q, ok)
	}
}

func TestSelectAction_ExploresWithStubbedRandom(t *testing.T) {
	cases := []struct {
		name string
		draw float64
		want Action
	}{
		{"draw in the top epsilon explores", 0.95, ActionIncrease},
		{"highest draw explores", 0.999, ActionIncrease},
		{"middle draw exploits", 0.5, ActionMaintain},
		{"zero draw exploits", 0, ActionMaintain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestRL(t, func(c *Config) {
				c.Epsilon = 0.1
				c.Rand = stubRand{f: tc.draw, n: 2}
			})
			if got := e.SelectAction(StateVector{}); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestZeroRandomDisablesExplorationInSystem(t *testing.T) {
	sys := newTestSystem(t, func(c *Config) {
		c.Epsilon = 0.1
		c.Rand = stubRand{f: 0, n: 0}
	})
	if a := sys.UpdatePlayerPerformance(MetricsUpdate{Kills: []KillEvent{{TimestampMs: 1}}}); a != nil {
		t.Fatalf("a zero draw should not explore, got %s (action %d)", a.Type, a.Action)
	}
}

func TestQTable_LRULimitEvictsOldestState(t *testing.T) {
	e := newTestRL(t, func(c *Config) { c.QTableLimit = 2 })
	a := StateVector{0.1}
	b := StateVector{0.2}
	c := StateVector{0.3}
	e.SelectAction(a)
	e.SelectAction(b)
	e.SelectAction(c)

	if got := e.table.size(); got != 2 {
		t.Fatalf("size: got %d want 2", got)
	}
	if _, ok := e.Q(a); ok {
		t.Fatalf("oldest state should have been evicted")
	}
	entries := e.table.entries()
	if entries[0].Key != b.Key() || entries[1].Key != c.Key() {
		t.Fatalf("unexpected entry order: %+v", entries)
	}
}

func TestQTable_WarnsOnceWhenLarge(t *testing.T) {
	logger := &captureLogger{}
	e := newTestRL(t, func(c *Config) {
		c.QTableWarnSize = 2
		c.Logger = logger
	})
	for i := 0; i < 6; i++ {
		e.SelectAction(StateVector{float64(i)})
	}
	warnings := 0
	for _, line := range logger.lines {
		if strings.Contains(line, "q-table exceeded") {
			warnings++
		}
	}
	if warnings != 1 {
		t.Fatalf("expected one warning, got %d (%v)", warnings, logger.lines)
	}
	if got := e.table.size(); got != 6 {
		t.Fatalf("unbounded table should keep all states, got %d", got)
	}
}

func TestLearningHistoryIsCapped(t *testing.T) {
	e := newTestRL(t, func(c *Config) { c.Caps.Learning = 5 })
	s := StateVector{1}
	for i := 0; i < 12; i++ {
		e.Update(ReinforcementLearningState{State: s, Reward: float64(i), NextState: s})
	}
	if len(e.history) != 5 {
		t.Fatalf("history length: got %d want 5", len(e.history))
	}
	if e.history[4].Reward != 11 {
		t.Fatalf("expected newest transition last, got %v", e.history[4].Reward)
	}
}
