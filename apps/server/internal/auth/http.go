package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type HTTPHandler struct {
	service Service
}

type credentialsRequest struct {
	Callsign string `json:"callsign"`
	Password string `json:"password"`
}

type authResponse struct {
	PlayerID     uint64 `json:"player_id"`
	SessionToken string `json:"session_token"`
}

type meResponse struct {
	PlayerID uint64 `json:"player_id"`
	Callsign string `json:"callsign"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(service Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/guest", h.handleGuest)
	mux.HandleFunc("/api/auth/logout", h.handleLogout)
	mux.HandleFunc("/api/auth/me", h.handleMe)
}

func (h *HTTPHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playerID, token, err := h.service.Register(req.Callsign, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCallsign), errors.Is(err, ErrInvalidPassword):
			WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrCallsignTaken):
			WriteError(w, http.StatusConflict, err.Error())
		default:
			WriteError(w, http.StatusInternalServerError, "register failed")
		}
		return
	}
	WriteJSON(w, http.StatusOK, authResponse{PlayerID: playerID, SessionToken: token})
}

func (h *HTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playerID, token, err := h.service.Login(req.Callsign, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, "invalid callsign or password")
			return
		}
		WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}
	WriteJSON(w, http.StatusOK, authResponse{PlayerID: playerID, SessionToken: token})
}

func (h *HTTPHandler) handleGuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	playerID, token, err := h.service.Guest()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "guest login failed")
		return
	}
	WriteJSON(w, http.StatusOK, authResponse{PlayerID: playerID, SessionToken: token})
}

func (h *HTTPHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "missing session token")
		return
	}
	h.service.Logout(token)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	playerID, callsign, ok := h.service.ResolveSession(BearerToken(r.Header.Get("Authorization")))
	if !ok {
		WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	WriteJSON(w, http.StatusOK, meResponse{PlayerID: playerID, Callsign: callsign})
}

// Authenticate resolves the bearer token on r.
func Authenticate(s Service, r *http.Request) (uint64, bool) {
	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return 0, false
	}
	playerID, _, ok := s.ResolveSession(token)
	return playerID, ok
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func BearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorResponse{Error: msg})
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
