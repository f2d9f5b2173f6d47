package auth

import (
	"log"
	"os"
	"strings"
	"time"

	"frontline-lite/apps/server/internal/storage"
)

// NewServiceFromEnv picks the backend for mode. db is nil in memory mode.
func NewServiceFromEnv(mode string, db *storage.DB) (Service, error) {
	ttl := sessionTTLFromEnv()
	if mode == storage.ModeMemory || db == nil {
		return NewManager(ttl), nil
	}
	return NewSQLManager(db, ttl)
}

func sessionTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("AUTH_SESSION_TTL"))
	if raw == "" {
		return defaultSessionTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		log.Printf("[Auth] ignoring AUTH_SESSION_TTL=%q", raw)
		return defaultSessionTTL
	}
	return ttl
}
