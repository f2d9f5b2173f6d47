package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"frontline-lite/apps/server/internal/storage"
)

func newSQLiteManager(t *testing.T) *SQLManager {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	m, err := NewSQLManager(db, time.Hour)
	if err != nil {
		t.Fatalf("NewSQLManager: %v", err)
	}
	return m
}

func backends(t *testing.T) map[string]Service {
	return map[string]Service{
		"memory": NewManager(time.Hour),
		"sqlite": newSQLiteManager(t),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			playerID, token, err := s.Register("Ghost_01", "secret12")
			if err != nil {
				t.Fatalf("register failed: %v", err)
			}
			if playerID == 0 || token == "" {
				t.Fatalf("expected id and token, got %d %q", playerID, token)
			}

			resolvedID, callsign, ok := s.ResolveSession(token)
			if !ok || resolvedID != playerID {
				t.Fatalf("expected session for %d, got %d ok=%v", playerID, resolvedID, ok)
			}
			if callsign != "ghost_01" {
				t.Fatalf("expected normalized callsign, got %s", callsign)
			}

			loginID, loginToken, err := s.Login("ghost_01", "secret12")
			if err != nil {
				t.Fatalf("login failed: %v", err)
			}
			if loginID != playerID || loginToken == token {
				t.Fatalf("expected same player with a fresh token")
			}
		})
	}
}

func TestRegisterRejectsDuplicateAndInvalid(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, _, err := s.Register("ghost_01", "secret12"); err != nil {
				t.Fatalf("register failed: %v", err)
			}
			if _, _, err := s.Register("GHOST_01", "secret12"); !errors.Is(err, ErrCallsignTaken) {
				t.Fatalf("expected ErrCallsignTaken, got %v", err)
			}
			if _, _, err := s.Register("x", "secret12"); !errors.Is(err, ErrInvalidCallsign) {
				t.Fatalf("expected ErrInvalidCallsign, got %v", err)
			}
			if _, _, err := s.Register("ghost_02", "123"); !errors.Is(err, ErrInvalidPassword) {
				t.Fatalf("expected ErrInvalidPassword, got %v", err)
			}
		})
	}
}

func TestLoginRejectsWrongPasswordAndLogoutRevokes(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, token, err := s.Register("ghost_01", "secret12")
			if err != nil {
				t.Fatalf("register failed: %v", err)
			}
			if _, _, err := s.Login("ghost_01", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			s.Logout(token)
			if _, _, ok := s.ResolveSession(token); ok {
				t.Fatalf("expected logged out token to be invalid")
			}
		})
	}
}

func TestGuestCannotLogin(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			id1, token, err := s.Guest()
			if err != nil {
				t.Fatalf("guest failed: %v", err)
			}
			id2, _, err := s.Guest()
			if err != nil {
				t.Fatalf("guest failed: %v", err)
			}
			if id1 == id2 {
				t.Fatalf("expected distinct guest players")
			}
			_, callsign, ok := s.ResolveSession(token)
			if !ok || !strings.HasPrefix(callsign, "recruit_") {
				t.Fatalf("unexpected guest session %q ok=%v", callsign, ok)
			}
			if _, _, err := s.Login(callsign, "anything"); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("guest login should fail, got %v", err)
			}
		})
	}
}

func TestMemorySessionExpires(t *testing.T) {
	m := NewManager(time.Minute)
	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }

	_, token, err := m.Register("ghost_01", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	now = now.Add(59 * time.Second)
	if _, _, ok := m.ResolveSession(token); !ok {
		t.Fatalf("session should still be valid")
	}
	now = now.Add(2 * time.Minute)
	if _, _, ok := m.ResolveSession(token); ok {
		t.Fatalf("session should have expired")
	}
}

func TestHTTPRegisterAndMe(t *testing.T) {
	mux := http.NewServeMux()
	NewHTTPHandler(NewManager(time.Hour)).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"callsign":"ghost_01","password":"secret12"}`))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || auth.SessionToken == "" {
		t.Fatalf("unexpected register response %d %+v", resp.StatusCode, auth)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+auth.SessionToken)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	defer resp.Body.Close()
	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.PlayerID != auth.PlayerID || me.Callsign != "ghost_01" {
		t.Fatalf("unexpected me response %+v", me)
	}

	resp2, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"callsign":"ghost_01","password":"secret12"}`))
	if err != nil {
		t.Fatalf("duplicate request: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp2.StatusCode)
	}
}
