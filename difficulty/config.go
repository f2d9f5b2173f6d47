package difficulty

import (
	"fmt"
	"log"
	"math/rand"
	"time"
)

// Random is the subset of *rand.Rand the engine draws from.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// Caps bounds every metrics buffer. Zero fields take the defaults.
type Caps struct {
	Kills       int
	Deaths      int
	Accuracy    int
	Reaction    int
	Emotional   int
	Engagement  int
	Behavioral  int
	Adaptations int
	Learning    int
	Alerts      int
	GraphPoints int
	ModelPoints int
}

func defaultCaps() Caps {
	return Caps{
		Kills:       20,
		Deaths:      20,
		Accuracy:    50,
		Reaction:    50,
		Emotional:   50,
		Engagement:  50,
		Behavioral:  30,
		Adaptations: 100,
		Learning:    1000,
		Alerts:      50,
		GraphPoints: 200,
		ModelPoints: 100,
	}
}

func (c Caps) withDefaults() Caps {
	d := defaultCaps()
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&c.Kills, d.Kills)
	fill(&c.Deaths, d.Deaths)
	fill(&c.Accuracy, d.Accuracy)
	fill(&c.Reaction, d.Reaction)
	fill(&c.Emotional, d.Emotional)
	fill(&c.Engagement, d.Engagement)
	fill(&c.Behavioral, d.Behavioral)
	fill(&c.Adaptations, d.Adaptations)
	fill(&c.Learning, d.Learning)
	fill(&c.Alerts, d.Alerts)
	fill(&c.GraphPoints, d.GraphPoints)
	fill(&c.ModelPoints, d.ModelPoints)
	return c
}

type Config struct {
	// Difficulty bounds and starting point
	MinDifficulty     float64
	MaxDifficulty     float64
	InitialDifficulty float64

	// Reinforcement learning
	LearningRate   float64
	DiscountFactor float64
	Epsilon        float64

	// Q-table growth: warn above QTableWarnSize; QTableLimit > 0 bounds it (LRU).
	QTableWarnSize int
	QTableLimit    int

	Caps Caps

	// SessionID seeds adaptation record IDs ("" => random uuid).
	SessionID string

	// RNG seed (0 => time-based). Rand overrides Seed when set.
	Seed int64
	Rand Random

	// Clock defaults to time.Now.
	Clock func() time.Time

	Logger  Logger
	Advisor Advisor
}

// DefaultConfig returns the enhanced engine defaults.
func DefaultConfig() Config {
	return Config{
		MinDifficulty:     0.1,
		MaxDifficulty:     5.0,
		InitialDifficulty: 1.0,
		LearningRate:      0.1,
		DiscountFactor:    0.95,
		Epsilon:           0.1,
		QTableWarnSize:    10000,
		Caps:              defaultCaps(),
	}
}

// SimpleConfig returns the defaults of the simple variant.
func SimpleConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxDifficulty = 3.0
	return cfg
}

func (c Config) validate() error {
	if c.MinDifficulty <= 0 {
		return fmt.Errorf("%w: MinDifficulty must be > 0", ErrInvalidConfig)
	}
	if c.MaxDifficulty < c.MinDifficulty {
		return fmt.Errorf("%w: MaxDifficulty must be >= MinDifficulty", ErrInvalidConfig)
	}
	if c.InitialDifficulty < c.MinDifficulty || c.InitialDifficulty > c.MaxDifficulty {
		return fmt.Errorf("%w: InitialDifficulty %.2f outside [%.2f, %.2f]",
			ErrInvalidConfig, c.InitialDifficulty, c.MinDifficulty, c.MaxDifficulty)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("%w: LearningRate must be in (0, 1]", ErrInvalidConfig)
	}
	if c.DiscountFactor < 0 || c.DiscountFactor >= 1 {
		return fmt.Errorf("%w: DiscountFactor must be in [0, 1)", ErrInvalidConfig)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("%w: Epsilon must be in [0, 1]", ErrInvalidConfig)
	}
	if c.QTableLimit < 0 || c.QTableWarnSize < 0 {
		return fmt.Errorf("%w: q-table sizes must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// resolved fills the collaborators left nil.
func (c Config) resolved() Config {
	c.Caps = c.Caps.withDefaults()
	if c.Rand == nil {
		seed := c.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		c.Rand = rand.New(rand.NewSource(seed))
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Advisor == nil {
		c.Advisor = NoopAdvisor{}
	}
	return c
}
