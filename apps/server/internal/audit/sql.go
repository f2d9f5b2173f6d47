package audit

import (
	"context"
	"fmt"
	"time"

	"frontline-lite/apps/server/internal/storage"
	"frontline-lite/difficulty"
)

type sqlService struct {
	db          *storage.DB
	recentLimit int
}

// NewServiceFromEnv picks memory or SQL storage. The mode string is for the
// startup log line.
func NewServiceFromEnv(db *storage.DB) (Service, string, error) {
	limit := recentLimitFromEnv()
	if db == nil {
		return NewMemoryService(limit), storage.ModeMemory, nil
	}
	s, err := NewSQLService(db, limit)
	if err != nil {
		return nil, "", err
	}
	return s, db.Dialect.String(), nil
}

func NewSQLService(db *storage.DB, recentLimit int) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("audit: nil database")
	}
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Migrate(ctx, auditSchema); err != nil {
		return nil, fmt.Errorf("audit schema: %w", err)
	}
	return &sqlService{db: db, recentLimit: recentLimit}, nil
}

func (s *sqlService) Close() error { return nil }

func (s *sqlService) q(query string) string { return s.db.Dialect.Rebind(query) }

// Append is idempotent on the adaptation ID.
func (s *sqlService) Append(ctx context.Context, playerID uint64, sessionID string, a difficulty.DifficultyAdaptation) error {
	rec, err := NewRecord(playerID, sessionID, a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.q(`
INSERT INTO adaptation_audit (
    id, player_id, session_id, seq, adaptation_type, reason,
    from_difficulty, to_difficulty, reward, recorded_at_ms, envelope_b64
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING
`),
		rec.ID, rec.PlayerID, rec.SessionID, rec.Seq, rec.Type, rec.Reason,
		rec.FromDifficulty, rec.ToDifficulty, rec.Reward, rec.RecordedAt.UnixMilli(), rec.EnvelopeB64,
	)
	return err
}

func (s *sqlService) ListRecent(ctx context.Context, playerID uint64, limit int) ([]Record, error) {
	if limit <= 0 || limit > s.recentLimit {
		limit = s.recentLimit
	}
	return s.query(ctx, `
SELECT id, player_id, session_id, seq, adaptation_type, reason,
       from_difficulty, to_difficulty, reward, recorded_at_ms, envelope_b64
FROM adaptation_audit
WHERE player_id = ?
ORDER BY recorded_at_ms DESC, seq DESC
LIMIT ?
`, playerID, limit)
}

func (s *sqlService) ListSession(ctx context.Context, playerID uint64, sessionID string) ([]Record, error) {
	out, err := s.query(ctx, `
SELECT id, player_id, session_id, seq, adaptation_type, reason,
       from_difficulty, to_difficulty, reward, recorded_at_ms, envelope_b64
FROM adaptation_audit
WHERE player_id = ? AND session_id = ?
ORDER BY seq ASC
`, playerID, sessionID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *sqlService) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			rec        Record
			recordedMs int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.PlayerID, &rec.SessionID, &rec.Seq, &rec.Type, &rec.Reason,
			&rec.FromDifficulty, &rec.ToDifficulty, &rec.Reward, &recordedMs, &rec.EnvelopeB64,
		); err != nil {
			return nil, err
		}
		rec.RecordedAt = time.UnixMilli(recordedMs).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

var auditSchema = []string{
	`
CREATE TABLE IF NOT EXISTS adaptation_audit (
    id TEXT PRIMARY KEY,
    player_id BIGINT NOT NULL,
    session_id TEXT NOT NULL,
    seq BIGINT NOT NULL,
    adaptation_type TEXT NOT NULL,
    reason TEXT NOT NULL,
    from_difficulty DOUBLE PRECISION NOT NULL,
    to_difficulty DOUBLE PRECISION NOT NULL,
    reward DOUBLE PRECISION NOT NULL,
    recorded_at_ms BIGINT NOT NULL,
    envelope_b64 TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_adaptation_audit_player ON adaptation_audit(player_id, recorded_at_ms DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_adaptation_audit_session ON adaptation_audit(player_id, session_id, seq)`,
}
