package arena

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"frontline-lite/apps/server/internal/audit"
	"frontline-lite/apps/server/internal/progress"
	"frontline-lite/difficulty"
	"frontline-lite/difficulty/enemy"
	"frontline-lite/wire"
)

// Sink delivers an outgoing envelope to the player's connection. It must not
// block.
type Sink func(env *wire.Envelope)

// EventType enumerates messages to the session actor.
type EventType int

const (
	EventPerformance EventType = iota
	EventSpawnWave
	EventDespawn
	EventEnemies
	EventInsights
	EventProfile
	EventReset
	EventClose
)

// Event is a message to the session actor.
type Event struct {
	Type     EventType
	Update   difficulty.MetricsUpdate
	Tier     int
	Base     int
	EnemyIDs []uint64
	Response chan error
}

var ErrSessionClosed = errors.New("session closed")

// Session owns one player's engine and enemy roster. All engine access happens
// on the actor goroutine.
type Session struct {
	ID       string
	PlayerID uint64

	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
	events   chan Event
	done     chan struct{}

	engine   difficulty.Engine
	enemies  *enemy.Manager
	progress progress.Store
	audit    audit.Service
	send     Sink
	cfg      Config

	seq             uint64
	startedAt       time.Time
	startDifficulty float64
	adaptations     int
	tags            map[string]struct{}
	dirty           bool
}

type helloPayload struct {
	SessionID string                        `json:"sessionId"`
	PlayerID  uint64                        `json:"playerId"`
	Variant   string                        `json:"variant"`
	Resumed   bool                          `json:"resumed"`
	Settings  difficulty.DifficultySettings `json:"settings"`
	Profile   difficulty.PlayerProfile      `json:"profile"`
}

type enemiesPayload struct {
	Enemies []*enemy.Instance `json:"enemies"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func newSession(id string, playerID uint64, engine difficulty.Engine, enemies *enemy.Manager, store progress.Store, auditSvc audit.Service, send Sink, cfg Config) *Session {
	s := &Session{
		ID:              id,
		PlayerID:        playerID,
		events:          make(chan Event, 256),
		done:            make(chan struct{}),
		engine:          engine,
		enemies:         enemies,
		progress:        store,
		audit:           auditSvc,
		send:            send,
		cfg:             cfg,
		startedAt:       time.Now(),
		startDifficulty: engine.CurrentDifficulty(),
		tags:            make(map[string]struct{}),
	}
	return s
}

func (s *Session) start(resumed bool) {
	s.emit(wire.TypeHello, helloPayload{
		SessionID: s.ID,
		PlayerID:  s.PlayerID,
		Variant:   s.engine.Variant(),
		Resumed:   resumed,
		Settings:  s.engine.Settings(),
		Profile:   s.engine.PlayerProfile(),
	})
	go s.run()
	log.Printf("[Arena %s] Opened for player %d (variant=%s difficulty=%.2f resumed=%v)",
		s.ID, s.PlayerID, s.engine.Variant(), s.startDifficulty, resumed)
}

func (s *Session) run() {
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-s.events:
			err := s.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-ticker.C:
			s.flush()
		case <-s.done:
			log.Printf("[Arena %s] Actor stopped", s.ID)
			return
		}
	}
}

func (s *Session) handleEvent(e Event) error {
	if s.isClosed() && e.Type != EventClose {
		return ErrSessionClosed
	}
	switch e.Type {
	case EventPerformance:
		return s.handlePerformance(e.Update)
	case EventSpawnWave:
		return s.handleSpawnWave(e.Tier, e.Base)
	case EventDespawn:
		for _, id := range e.EnemyIDs {
			s.enemies.Despawn(id)
		}
		s.emit(wire.TypeEnemies, enemiesPayload{Enemies: s.enemies.Active()})
		return nil
	case EventEnemies:
		s.emit(wire.TypeEnemies, enemiesPayload{Enemies: s.enemies.Active()})
		return nil
	case EventInsights:
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.emit(wire.TypeInsights, s.engine.AdvisedInsights(ctx))
		return nil
	case EventProfile:
		s.emit(wire.TypeProfile, s.engine.PlayerProfile())
		return nil
	case EventReset:
		s.engine.Reset()
		s.enemies.Retune(s.engine.Settings())
		s.dirty = true
		s.emit(wire.TypeReset, nil)
		s.emit(wire.TypeSettings, s.engine.Settings())
		return nil
	case EventClose:
		s.finish()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (s *Session) handlePerformance(u difficulty.MetricsUpdate) error {
	if u.Empty() {
		return nil
	}
	a := s.engine.UpdatePlayerPerformance(u)
	s.dirty = true
	if a == nil {
		return nil
	}

	s.adaptations++
	s.tags[string(a.Type)] = struct{}{}
	settings := s.engine.Settings()
	retuned := s.enemies.Retune(settings)

	s.emit(wire.TypeAdaptation, a)
	s.emit(wire.TypeSettings, settings)
	if retuned > 0 {
		s.emit(wire.TypeEnemies, enemiesPayload{Enemies: s.enemies.Active()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.audit.Append(ctx, s.PlayerID, s.ID, *a); err != nil {
		log.Printf("[Arena %s] audit append failed: %v", s.ID, err)
	}
	return nil
}

func (s *Session) handleSpawnWave(tier, base int) error {
	if base <= 0 {
		base = s.cfg.WaveBase
	}
	wave, err := s.enemies.SpawnWave(tier, base, s.engine.Settings())
	if err != nil {
		s.emit(wire.TypeError, errorPayload{Message: err.Error()})
		return err
	}
	s.emit(wire.TypeSpawn, enemiesPayload{Enemies: wave})
	return nil
}

// flush persists the engine if anything changed since the last flush.
func (s *Session) flush() {
	if !s.dirty || s.isClosed() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.progress.Save(ctx, s.PlayerID, s.engine.Export()); err != nil {
		log.Printf("[Arena %s] progress flush failed: %v", s.ID, err)
		return
	}
	s.dirty = false
}

func (s *Session) finish() {
	if s.isClosed() {
		return
	}
	s.flush()

	tags := make([]string, 0, len(s.tags))
	for tag := range s.tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	summary := progress.SessionSummary{
		ID:              s.ID,
		PlayerID:        s.PlayerID,
		Variant:         s.engine.Variant(),
		StartedAt:       s.startedAt,
		EndedAt:         time.Now(),
		StartDifficulty: s.startDifficulty,
		EndDifficulty:   s.engine.CurrentDifficulty(),
		Adaptations:     s.adaptations,
		PlayStyle:       string(s.engine.PlayerProfile().PlayStyle),
		Tags:            tags,
	}
	if err := s.progress.RecordSession(ctx, summary); err != nil {
		log.Printf("[Arena %s] session summary failed: %v", s.ID, err)
	}
	log.Printf("[Arena %s] Closed (difficulty %.2f -> %.2f, adaptations=%d)",
		s.ID, summary.StartDifficulty, summary.EndDifficulty, summary.Adaptations)
	s.stop()
}

func (s *Session) emit(typ string, payload any) {
	s.seq++
	env, err := wire.New(typ, s.seq, time.Now().UnixMilli(), payload)
	if err != nil {
		log.Printf("[Arena %s] encode %s failed: %v", s.ID, typ, err)
		return
	}
	env.SessionID = s.ID
	if s.send != nil {
		s.send(env)
	}
}

// SubmitEvent hands an event to the actor and waits for it to be handled.
func (s *Session) SubmitEvent(e Event) error {
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}
	if s.isClosed() {
		return ErrSessionClosed
	}

	select {
	case s.events <- e:
	case <-s.done:
		return ErrSessionClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// Close persists and stops the session. Safe to call more than once.
func (s *Session) Close() {
	if err := s.SubmitEvent(Event{Type: EventClose}); err != nil && !errors.Is(err, ErrSessionClosed) {
		log.Printf("[Arena %s] close failed: %v", s.ID, err)
	}
}

func (s *Session) stop() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Done is closed once the actor has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }
