package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"frontline-lite/apps/server/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

// SQLManager stores players and sessions in sqlite or postgres.
type SQLManager struct {
	db         *storage.DB
	sessionTTL time.Duration
}

func NewSQLManager(db *storage.DB, sessionTTL time.Duration) (*SQLManager, error) {
	if db == nil {
		return nil, fmt.Errorf("auth: nil database")
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Migrate(ctx, authSchema(db.Dialect)); err != nil {
		return nil, fmt.Errorf("auth schema: %w", err)
	}
	return &SQLManager{db: db, sessionTTL: sessionTTL}, nil
}

// Close is a no-op; the shared handle is owned by main.
func (m *SQLManager) Close() error { return nil }

func (m *SQLManager) q(query string) string { return m.db.Dialect.Rebind(query) }

func (m *SQLManager) Register(callsign, password string) (uint64, string, error) {
	if err := validateCallsign(callsign); err != nil {
		return 0, "", err
	}
	if err := validatePassword(password); err != nil {
		return 0, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", err
	}
	return m.createPlayer(normalizeCallsign(callsign), string(hash), false)
}

func (m *SQLManager) Guest() (uint64, string, error) {
	for i := 0; i < 5; i++ {
		id, token, err := m.createPlayer(normalizeCallsign(guestCallsign()), "", true)
		if errors.Is(err, ErrCallsignTaken) {
			continue
		}
		return id, token, err
	}
	return 0, "", fmt.Errorf("failed to allocate guest callsign")
}

func (m *SQLManager) createPlayer(callsign, passwordHash string, guest bool) (uint64, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", err
	}
	defer tx.Rollback()

	nowMs := time.Now().UTC().UnixMilli()
	var playerID uint64
	err = tx.QueryRowContext(ctx, m.q(`
INSERT INTO players (callsign, password_hash, guest, created_at_ms, last_login_at_ms)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`), callsign, passwordHash, guest, nowMs, nowMs).Scan(&playerID)
	if err != nil {
		if m.db.Dialect.IsUniqueViolation(err) {
			return 0, "", ErrCallsignTaken
		}
		return 0, "", err
	}

	token, err := m.issueSessionTx(ctx, tx, playerID, nowMs)
	if err != nil {
		return 0, "", err
	}
	if err := tx.Commit(); err != nil {
		return 0, "", err
	}
	return playerID, token, nil
}

func (m *SQLManager) Login(callsign, password string) (uint64, string, error) {
	normalized := normalizeCallsign(callsign)
	if normalized == "" || password == "" {
		return 0, "", ErrInvalidCredentials
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		playerID uint64
		hash     string
		guest    bool
	)
	err := m.db.QueryRowContext(ctx, m.q(`
SELECT id, password_hash, guest FROM players WHERE callsign = ?
`), normalized).Scan(&playerID, &hash, &guest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrInvalidCredentials
		}
		return 0, "", err
	}
	if guest || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return 0, "", ErrInvalidCredentials
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", err
	}
	defer tx.Rollback()

	nowMs := time.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, m.q(`UPDATE players SET last_login_at_ms = ? WHERE id = ?`), nowMs, playerID); err != nil {
		return 0, "", err
	}
	token, err := m.issueSessionTx(ctx, tx, playerID, nowMs)
	if err != nil {
		return 0, "", err
	}
	if err := tx.Commit(); err != nil {
		return 0, "", err
	}
	return playerID, token, nil
}

func (m *SQLManager) ResolveSession(token string) (uint64, string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nowMs := time.Now().UTC().UnixMilli()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", false
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, m.q(`
UPDATE player_sessions
SET expires_at_ms = ?
WHERE token = ?
  AND revoked_at_ms IS NULL
  AND expires_at_ms > ?
`), nowMs+m.sessionTTL.Milliseconds(), token, nowMs)
	if err != nil {
		return 0, "", false
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return 0, "", false
	}

	var (
		playerID uint64
		callsign string
	)
	err = tx.QueryRowContext(ctx, m.q(`
SELECT s.player_id, p.callsign
FROM player_sessions AS s
JOIN players AS p ON p.id = s.player_id
WHERE s.token = ?
`), token).Scan(&playerID, &callsign)
	if err != nil {
		return 0, "", false
	}
	if err := tx.Commit(); err != nil {
		return 0, "", false
	}
	return playerID, callsign, true
}

func (m *SQLManager) Logout(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = m.db.ExecContext(ctx, m.q(`
UPDATE player_sessions SET revoked_at_ms = ? WHERE token = ? AND revoked_at_ms IS NULL
`), time.Now().UTC().UnixMilli(), token)
}

func (m *SQLManager) issueSessionTx(ctx context.Context, tx *sql.Tx, playerID uint64, nowMs int64) (string, error) {
	expiresAtMs := nowMs + m.sessionTTL.Milliseconds()
	for i := 0; i < 5; i++ {
		token := mustToken()
		_, err := tx.ExecContext(ctx, m.q(`
INSERT INTO player_sessions (token, player_id, issued_at_ms, expires_at_ms)
VALUES (?, ?, ?, ?)
`), token, playerID, nowMs, expiresAtMs)
		if err != nil {
			if m.db.Dialect.IsUniqueViolation(err) {
				continue
			}
			return "", err
		}
		return token, nil
	}
	return "", fmt.Errorf("failed to generate unique session token")
}

func authSchema(d storage.Dialect) []string {
	idCol := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if d == storage.Postgres {
		idCol = "id BIGSERIAL PRIMARY KEY"
	}
	return []string{
		`
CREATE TABLE IF NOT EXISTS players (
    ` + idCol + `,
    callsign TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL DEFAULT '',
    guest BOOLEAN NOT NULL DEFAULT FALSE,
    created_at_ms BIGINT NOT NULL,
    last_login_at_ms BIGINT
)`,
		`
CREATE TABLE IF NOT EXISTS player_sessions (
    token TEXT PRIMARY KEY,
    player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    issued_at_ms BIGINT NOT NULL,
    expires_at_ms BIGINT NOT NULL,
    revoked_at_ms BIGINT
)`,
		`CREATE INDEX IF NOT EXISTS idx_player_sessions_player ON player_sessions(player_id, expires_at_ms)`,
	}
}
