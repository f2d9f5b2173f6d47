package auth

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Manager keeps players and sessions in process memory. Everything is lost on
// restart; STORE_MODE=memory is meant for local play and tests.
type Manager struct {
	mu sync.Mutex

	nextPlayerID uint64
	sessionTTL   time.Duration
	now          func() time.Time
	sessions     map[string]sessionRecord
	playersByID  map[uint64]playerRecord
	playersByKey map[string]uint64
}

type sessionRecord struct {
	PlayerID  uint64
	ExpiresAt time.Time
}

type playerRecord struct {
	PlayerID     uint64
	Callsign     string
	PasswordHash []byte
	Guest        bool
	LastLoginAt  time.Time
}

func NewManager(sessionTTL time.Duration) *Manager {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &Manager{
		nextPlayerID: 100000,
		sessionTTL:   sessionTTL,
		now:          time.Now,
		sessions:     make(map[string]sessionRecord),
		playersByID:  make(map[uint64]playerRecord),
		playersByKey: make(map[string]uint64),
	}
}

func (m *Manager) Close() error { return nil }

func (m *Manager) issueSessionLocked(playerID uint64, now time.Time) string {
	token := mustToken()
	m.sessions[token] = sessionRecord{PlayerID: playerID, ExpiresAt: now.Add(m.sessionTTL)}
	return token
}

// Register creates a new player and returns an authenticated session token.
func (m *Manager) Register(callsign, password string) (uint64, string, error) {
	if err := validateCallsign(callsign); err != nil {
		return 0, "", err
	}
	if err := validatePassword(password); err != nil {
		return 0, "", err
	}
	normalized := normalizeCallsign(callsign)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.playersByKey[normalized]; exists {
		return 0, "", ErrCallsignTaken
	}
	now := m.now()
	id := m.addPlayerLocked(playerRecord{Callsign: normalized, PasswordHash: hash, LastLoginAt: now})
	return id, m.issueSessionLocked(id, now), nil
}

func (m *Manager) Login(callsign, password string) (uint64, string, error) {
	normalized := normalizeCallsign(callsign)
	if normalized == "" || password == "" {
		return 0, "", ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id, exists := m.playersByKey[normalized]
	if !exists {
		return 0, "", ErrInvalidCredentials
	}
	rec := m.playersByID[id]
	if rec.Guest || bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)) != nil {
		return 0, "", ErrInvalidCredentials
	}
	now := m.now()
	rec.LastLoginAt = now
	m.playersByID[id] = rec
	return id, m.issueSessionLocked(id, now), nil
}

func (m *Manager) Guest() (uint64, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	callsign := normalizeCallsign(guestCallsign())
	for {
		if _, taken := m.playersByKey[callsign]; !taken {
			break
		}
		callsign = normalizeCallsign(guestCallsign())
	}
	id := m.addPlayerLocked(playerRecord{Callsign: callsign, Guest: true, LastLoginAt: now})
	return id, m.issueSessionLocked(id, now), nil
}

func (m *Manager) addPlayerLocked(rec playerRecord) uint64 {
	m.nextPlayerID++
	rec.PlayerID = m.nextPlayerID
	m.playersByID[rec.PlayerID] = rec
	m.playersByKey[rec.Callsign] = rec.PlayerID
	return rec.PlayerID
}

// ResolveSession validates a token and slides its expiry forward.
func (m *Manager) ResolveSession(token string) (uint64, string, bool) {
	if token == "" {
		return 0, "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	rec, exists := m.sessions[token]
	if !exists {
		return 0, "", false
	}
	if !now.Before(rec.ExpiresAt) {
		delete(m.sessions, token)
		return 0, "", false
	}
	rec.ExpiresAt = now.Add(m.sessionTTL)
	m.sessions[token] = rec
	return rec.PlayerID, m.playersByID[rec.PlayerID].Callsign, true
}

func (m *Manager) Logout(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
