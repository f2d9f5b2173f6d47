package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"frontline-lite/apps/server/internal/storage"
	"frontline-lite/difficulty"
)

type sqlStore struct {
	db *storage.DB
}

// NewSQLStore keeps engine snapshots as JSON documents. Session tags use a
// TEXT[] column on postgres and a JSON array on sqlite.
func NewSQLStore(db *storage.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("progress: nil database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Migrate(ctx, progressSchema(db.Dialect)); err != nil {
		return nil, fmt.Errorf("progress schema: %w", err)
	}
	return &sqlStore{db: db}, nil
}

// NewStoreFromEnv returns the memory store when db is nil.
func NewStoreFromEnv(db *storage.DB) (Store, string, error) {
	if db == nil {
		return NewMemoryStore(), storage.ModeMemory, nil
	}
	s, err := NewSQLStore(db)
	if err != nil {
		return nil, "", err
	}
	return s, db.Dialect.String(), nil
}

func (s *sqlStore) Close() error { return nil }

func (s *sqlStore) q(query string) string { return s.db.Dialect.Rebind(query) }

func (s *sqlStore) Load(ctx context.Context, playerID uint64, variant string) (difficulty.State, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.q(`
SELECT state_json FROM engine_states WHERE player_id = ? AND variant = ?
`), playerID, variant).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return difficulty.State{}, false, nil
		}
		return difficulty.State{}, false, err
	}
	var st difficulty.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return difficulty.State{}, false, fmt.Errorf("decode engine state for player %d: %w", playerID, err)
	}
	return st, true, nil
}

func (s *sqlStore) Save(ctx context.Context, playerID uint64, st difficulty.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.q(`
INSERT INTO engine_states (player_id, variant, difficulty, state_json, updated_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (player_id, variant) DO UPDATE SET
    difficulty = excluded.difficulty,
    state_json = excluded.state_json,
    updated_at_ms = excluded.updated_at_ms
`), playerID, st.Variant, st.CurrentDifficulty, string(raw), time.Now().UTC().UnixMilli())
	return err
}

func (s *sqlStore) RecordSession(ctx context.Context, sum SessionSummary) error {
	_, err := s.db.ExecContext(ctx, s.q(`
INSERT INTO play_sessions (
    id, player_id, variant, started_at_ms, ended_at_ms,
    start_difficulty, end_difficulty, adaptations, play_style, tags
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`),
		sum.ID, sum.PlayerID, sum.Variant, sum.StartedAt.UTC().UnixMilli(), sum.EndedAt.UTC().UnixMilli(),
		sum.StartDifficulty, sum.EndDifficulty, sum.Adaptations, sum.PlayStyle,
		s.db.Dialect.StringList(sum.Tags),
	)
	return err
}

func (s *sqlStore) RecentSessions(ctx context.Context, playerID uint64, limit int) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
SELECT id, player_id, variant, started_at_ms, ended_at_ms,
       start_difficulty, end_difficulty, adaptations, play_style, tags
FROM play_sessions
WHERE player_id = ?
ORDER BY ended_at_ms DESC
LIMIT ?
`), playerID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SessionSummary, 0)
	for rows.Next() {
		var (
			sum              SessionSummary
			startMs, endedMs int64
		)
		if err := rows.Scan(
			&sum.ID, &sum.PlayerID, &sum.Variant, &startMs, &endedMs,
			&sum.StartDifficulty, &sum.EndDifficulty, &sum.Adaptations, &sum.PlayStyle,
			s.db.Dialect.ScanStringList(&sum.Tags),
		); err != nil {
			return nil, err
		}
		sum.StartedAt = time.UnixMilli(startMs).UTC()
		sum.EndedAt = time.UnixMilli(endedMs).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func progressSchema(d storage.Dialect) []string {
	tagsCol := "tags TEXT NOT NULL DEFAULT '[]'"
	if d == storage.Postgres {
		tagsCol = "tags TEXT[] NOT NULL DEFAULT '{}'"
	}
	return []string{
		`
CREATE TABLE IF NOT EXISTS engine_states (
    player_id BIGINT NOT NULL,
    variant TEXT NOT NULL,
    difficulty DOUBLE PRECISION NOT NULL,
    state_json TEXT NOT NULL,
    updated_at_ms BIGINT NOT NULL,
    PRIMARY KEY (player_id, variant)
)`,
		`
CREATE TABLE IF NOT EXISTS play_sessions (
    id TEXT PRIMARY KEY,
    player_id BIGINT NOT NULL,
    variant TEXT NOT NULL,
    started_at_ms BIGINT NOT NULL,
    ended_at_ms BIGINT NOT NULL,
    start_difficulty DOUBLE PRECISION NOT NULL,
    end_difficulty DOUBLE PRECISION NOT NULL,
    adaptations INTEGER NOT NULL,
    play_style TEXT NOT NULL,
    ` + tagsCol + `
)`,
		`CREATE INDEX IF NOT EXISTS idx_play_sessions_player ON play_sessions(player_id, ended_at_ms DESC)`,
	}
}
