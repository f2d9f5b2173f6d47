package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	defaultSessionTTL = 30 * 24 * time.Hour
	tokenBytes        = 32
)

var (
	ErrInvalidCallsign    = errors.New("invalid callsign")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrCallsignTaken      = errors.New("callsign already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var callsignPattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{2,31}$`)

// Service is the player account/session contract consumed by the gateway and
// HTTP handlers.
type Service interface {
	Register(callsign, password string) (playerID uint64, sessionToken string, err error)
	Login(callsign, password string) (playerID uint64, sessionToken string, err error)
	// Guest creates a password-less player so a match can start without signup.
	Guest() (playerID uint64, sessionToken string, err error)
	ResolveSession(token string) (playerID uint64, callsign string, ok bool)
	Logout(token string)
	Close() error
}

func normalizeCallsign(callsign string) string {
	return strings.ToLower(strings.TrimSpace(callsign))
}

func validateCallsign(callsign string) error {
	if !callsignPattern.MatchString(strings.TrimSpace(callsign)) {
		return ErrInvalidCallsign
	}
	return nil
}

// bcrypt ignores bytes past 72.
func validatePassword(password string) error {
	if len(password) < 6 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

func guestCallsign() string {
	return "recruit_" + mustToken()[:10]
}

func mustToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
