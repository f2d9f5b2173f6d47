package audit

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"frontline-lite/difficulty"
	"frontline-lite/wire"
)

const defaultRecentLimit = 200

var ErrNotFound = errors.New("not found")

// Service is the append-only ledger of applied difficulty adaptations.
type Service interface {
	Append(ctx context.Context, playerID uint64, sessionID string, a difficulty.DifficultyAdaptation) error
	ListRecent(ctx context.Context, playerID uint64, limit int) ([]Record, error)
	ListSession(ctx context.Context, playerID uint64, sessionID string) ([]Record, error)
	Close() error
}

// Record is one audited adaptation. EnvelopeB64 carries the exact frame the
// client received.
type Record struct {
	ID             string    `json:"id"`
	PlayerID       uint64    `json:"player_id"`
	SessionID      string    `json:"session_id"`
	Seq            uint64    `json:"seq"`
	Type           string    `json:"type"`
	Reason         string    `json:"reason"`
	FromDifficulty float64   `json:"from_difficulty"`
	ToDifficulty   float64   `json:"to_difficulty"`
	Reward         float64   `json:"reward"`
	RecordedAt     time.Time `json:"recorded_at"`
	EnvelopeB64    string    `json:"envelope_b64"`
}

// NewRecord encodes a as an adaptation envelope.
func NewRecord(playerID uint64, sessionID string, a difficulty.DifficultyAdaptation) (Record, error) {
	env, err := wire.New(wire.TypeAdaptation, a.Seq, a.Timestamp.UnixMilli(), a)
	if err != nil {
		return Record{}, err
	}
	env.SessionID = sessionID
	bin, err := wire.Marshal(env)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:             a.ID,
		PlayerID:       playerID,
		SessionID:      sessionID,
		Seq:            a.Seq,
		Type:           string(a.Type),
		Reason:         a.Reason,
		FromDifficulty: a.FromDifficulty,
		ToDifficulty:   a.ToDifficulty,
		Reward:         a.Reward,
		RecordedAt:     a.Timestamp.UTC(),
		EnvelopeB64:    base64.StdEncoding.EncodeToString(bin),
	}, nil
}

// Adaptation decodes the stored envelope back into the engine type.
func (r Record) Adaptation() (difficulty.DifficultyAdaptation, error) {
	var a difficulty.DifficultyAdaptation
	bin, err := base64.StdEncoding.DecodeString(r.EnvelopeB64)
	if err != nil {
		return a, err
	}
	env, err := wire.Unmarshal(bin)
	if err != nil {
		return a, err
	}
	err = wire.DecodePayload(env.Payload, &a)
	return a, err
}

type memoryService struct {
	mu        sync.RWMutex
	retention int
	byPlayer  map[uint64][]Record
}

// NewMemoryService keeps the newest retention records per player.
func NewMemoryService(retention int) Service {
	if retention <= 0 {
		retention = defaultRecentLimit
	}
	return &memoryService{retention: retention, byPlayer: make(map[uint64][]Record)}
}

func (s *memoryService) Close() error { return nil }

func (s *memoryService) Append(_ context.Context, playerID uint64, sessionID string, a difficulty.DifficultyAdaptation) error {
	rec, err := NewRecord(playerID, sessionID, a)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.byPlayer[playerID], rec)
	if len(list) > s.retention {
		list = append([]Record(nil), list[len(list)-s.retention:]...)
	}
	s.byPlayer[playerID] = list
	return nil
}

func (s *memoryService) ListRecent(_ context.Context, playerID uint64, limit int) ([]Record, error) {
	s.mu.RLock()
	all := append([]Record{}, s.byPlayer[playerID]...)
	s.mu.RUnlock()
	sortNewestFirst(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *memoryService) ListSession(_ context.Context, playerID uint64, sessionID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Record{}
	for _, rec := range s.byPlayer[playerID] {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func sortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].RecordedAt.Equal(records[j].RecordedAt) {
			return records[i].RecordedAt.After(records[j].RecordedAt)
		}
		return records[i].Seq > records[j].Seq
	})
}

func recentLimitFromEnv() int {
	raw := strings.TrimSpace(os.Getenv("AUDIT_RECENT_LIMIT"))
	if raw == "" {
		return defaultRecentLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("[Audit] ignoring AUDIT_RECENT_LIMIT=%q", raw)
		return defaultRecentLimit
	}
	return n
}
