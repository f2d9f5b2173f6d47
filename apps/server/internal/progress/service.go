package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"frontline-lite/difficulty"
)

const defaultRecentLimit = 20

// Store persists engine state between sessions, keyed by player and variant.
type Store interface {
	Load(ctx context.Context, playerID uint64, variant string) (difficulty.State, bool, error)
	Save(ctx context.Context, playerID uint64, st difficulty.State) error
	RecordSession(ctx context.Context, s SessionSummary) error
	RecentSessions(ctx context.Context, playerID uint64, limit int) ([]SessionSummary, error)
	Close() error
}

// SessionSummary is written once when a session actor shuts down.
type SessionSummary struct {
	ID              string    `json:"id"`
	PlayerID        uint64    `json:"player_id"`
	Variant         string    `json:"variant"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	StartDifficulty float64   `json:"start_difficulty"`
	EndDifficulty   float64   `json:"end_difficulty"`
	Adaptations     int       `json:"adaptations"`
	PlayStyle       string    `json:"play_style"`
	// Tags are the distinct adaptation types applied during the session.
	Tags []string `json:"tags"`
}

type memoryStore struct {
	mu       sync.RWMutex
	states   map[stateKey]difficulty.State
	sessions map[uint64][]SessionSummary
}

type stateKey struct {
	playerID uint64
	variant  string
}

func NewMemoryStore() Store {
	return &memoryStore{
		states:   make(map[stateKey]difficulty.State),
		sessions: make(map[uint64][]SessionSummary),
	}
}

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) Load(_ context.Context, playerID uint64, variant string) (difficulty.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[stateKey{playerID, variant}]
	return st, ok, nil
}

func (s *memoryStore) Save(_ context.Context, playerID uint64, st difficulty.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.QTable = append([]difficulty.QEntry(nil), st.QTable...)
	s.states[stateKey{playerID, st.Variant}] = st
	return nil
}

func (s *memoryStore) RecordSession(_ context.Context, sum SessionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum.Tags = append([]string(nil), sum.Tags...)
	s.sessions[sum.PlayerID] = append(s.sessions[sum.PlayerID], sum)
	return nil
}

func (s *memoryStore) RecentSessions(_ context.Context, playerID uint64, limit int) ([]SessionSummary, error) {
	limit = normalizeLimit(limit)
	s.mu.RLock()
	all := append([]SessionSummary(nil), s.sessions[playerID]...)
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool { return all[i].EndedAt.After(all[j].EndedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > 100 {
		return 100
	}
	return limit
}
