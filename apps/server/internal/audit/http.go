package audit

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"frontline-lite/apps/server/internal/auth"
)

type HTTPHandler struct {
	auth  auth.Service
	audit Service
}

func NewHTTPHandler(authService auth.Service, auditService Service) *HTTPHandler {
	return &HTTPHandler{auth: authService, audit: auditService}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/audit/recent", h.handleRecent)
	mux.HandleFunc("/api/audit/sessions/", h.handleSession)
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		auth.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	playerID, ok := auth.Authenticate(h.auth, r)
	if !ok {
		auth.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.audit.ListRecent(ctx, playerID, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		auth.WriteError(w, http.StatusInternalServerError, "query recent adaptations failed")
		return
	}
	auth.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HTTPHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		auth.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	playerID, ok := auth.Authenticate(h.auth, r)
	if !ok {
		auth.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	sessionID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/audit/sessions/"), "/ ")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		auth.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.audit.ListSession(ctx, playerID, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			auth.WriteError(w, http.StatusNotFound, "session not found")
			return
		}
		auth.WriteError(w, http.StatusInternalServerError, "query session adaptations failed")
		return
	}
	auth.WriteJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"items":      items,
	})
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 20
	}
	if n > 100 {
		return 100
	}
	return n
}
