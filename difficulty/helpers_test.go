package difficulty

import (
	"fmt"
	"testing"
	"time"
)

type stubRand struct {
	f float64
	n int
}

func (r stubRand) Float64() float64 { return r.f }
func (r stubRand) Intn(int) int     { return r.n }

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// stepClock advances one second per call.
func stepClock() func() time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.Epsilon = 0
	cfg.SessionID = "test-session"
	cfg.Clock = stepClock()
	cfg.Logger = &captureLogger{}
	return cfg
}

func newTestSystem(t *testing.T, mutate func(*Config)) *System {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	sys, err := NewSystem(cfg)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	return sys
}

func newTestSimpleSystem(t *testing.T) *SimpleSystem {
	t.Helper()
	sys, err := NewSimpleSystem(testConfig())
	if err != nil {
		t.Fatalf("NewSimpleSystem: %v", err)
	}
	return sys
}

func frustratedProfile() PlayerProfile {
	p := DefaultPlayerProfile()
	p.FrustrationLevel = 0.9
	p.EngagementLevel = 0.8
	return p
}

func emotions(state string, n int) []EmotionalSample {
	out := make([]EmotionalSample, n)
	for i := range out {
		out[i] = EmotionalSample{TimestampMs: int64(i), State: state, Intensity: 0.5}
	}
	return out
}

func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
