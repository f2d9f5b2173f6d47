package arena

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"frontline-lite/apps/server/internal/audit"
	"frontline-lite/apps/server/internal/progress"
	"frontline-lite/difficulty"
	"frontline-lite/difficulty/enemy"

	"github.com/google/uuid"
)

const (
	defaultFlushInterval = 30 * time.Second
	defaultWaveBase      = 4
)

// Config holds arena-wide session settings.
type Config struct {
	Variant       string
	FlushInterval time.Duration
	WaveBase      int
	// Seed fixes engine and enemy randomness; 0 seeds from the clock.
	Seed    int64
	Advisor difficulty.Advisor
}

// ConfigFromEnv reads DIFFICULTY_VARIANT.
func ConfigFromEnv() Config {
	cfg := Config{Variant: strings.ToLower(strings.TrimSpace(os.Getenv("DIFFICULTY_VARIANT")))}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Variant == "" {
		c.Variant = difficulty.VariantEnhanced
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.WaveBase <= 0 {
		c.WaveBase = defaultWaveBase
	}
	return c
}

// Arena tracks at most one live session per player.
type Arena struct {
	mu       sync.Mutex
	sessions map[uint64]*Session

	cfg      Config
	registry *enemy.Registry
	progress progress.Store
	audit    audit.Service
}

func New(cfg Config, registry *enemy.Registry, store progress.Store, auditSvc audit.Service) (*Arena, error) {
	cfg = cfg.withDefaults()
	if cfg.Variant != difficulty.VariantEnhanced && cfg.Variant != difficulty.VariantSimple {
		return nil, fmt.Errorf("%w: %q", difficulty.ErrUnknownVariant, cfg.Variant)
	}
	if registry == nil || registry.Count() == 0 {
		return nil, fmt.Errorf("arena: empty enemy registry")
	}
	return &Arena{
		sessions: make(map[uint64]*Session),
		cfg:      cfg,
		registry: registry,
		progress: store,
		audit:    auditSvc,
	}, nil
}

func (a *Arena) Variant() string { return a.cfg.Variant }

// Open starts a session for the player, restoring saved engine state. An
// existing session for the same player is closed first.
func (a *Arena) Open(ctx context.Context, playerID uint64, send Sink) (*Session, error) {
	a.mu.Lock()
	prev := a.sessions[playerID]
	delete(a.sessions, playerID)
	a.mu.Unlock()
	if prev != nil {
		log.Printf("[Arena] Player %d reconnected, closing %s", playerID, prev.ID)
		prev.Close()
	}

	st, found, err := a.progress.Load(ctx, playerID, a.cfg.Variant)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	sessionID := uuid.NewString()
	seed := a.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engineCfg := difficulty.DefaultConfig()
	if a.cfg.Variant == difficulty.VariantSimple {
		engineCfg = difficulty.SimpleConfig()
	}
	engineCfg.SessionID = sessionID
	engineCfg.Seed = seed
	engineCfg.Advisor = a.cfg.Advisor

	engine, err := difficulty.NewEngine(a.cfg.Variant, engineCfg)
	if err != nil {
		return nil, err
	}
	if found {
		engine.Restore(st)
	}

	s := newSession(sessionID, playerID, engine, enemy.NewManager(a.registry, seed), a.progress, a.audit, send, a.cfg)
	s.start(found)

	// A concurrent Open may have registered a session since the check above;
	// the newest one wins and the displaced actor is closed.
	a.mu.Lock()
	displaced := a.sessions[playerID]
	a.sessions[playerID] = s
	a.mu.Unlock()
	if displaced != nil {
		log.Printf("[Arena] Player %d opened concurrently, closing %s", playerID, displaced.ID)
		displaced.Close()
	}
	return s, nil
}

// Get returns the player's live session, if any.
func (a *Arena) Get(playerID uint64) *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions[playerID]
}

// Close ends the player's session if it is still the given one.
func (a *Arena) Close(playerID uint64, sessionID string) {
	a.mu.Lock()
	s := a.sessions[playerID]
	if s == nil || s.ID != sessionID {
		a.mu.Unlock()
		return
	}
	delete(a.sessions, playerID)
	a.mu.Unlock()
	s.Close()
}

func (a *Arena) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

// Shutdown closes every live session, persisting their state.
func (a *Arena) Shutdown() {
	a.mu.Lock()
	sessions := make([]*Session, 0, len(a.sessions))
	for id, s := range a.sessions {
		sessions = append(sessions, s)
		delete(a.sessions, id)
	}
	a.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	log.Printf("[Arena] Shut down %d sessions", len(sessions))
}
