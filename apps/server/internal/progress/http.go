package progress

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"frontline-lite/apps/server/internal/auth"
	"frontline-lite/difficulty"
)

type HTTPHandler struct {
	auth  auth.Service
	store Store
}

type progressResponse struct {
	Variant           string                    `json:"variant"`
	Found             bool                      `json:"found"`
	CurrentDifficulty float64                   `json:"current_difficulty"`
	AdaptationCount   uint64                    `json:"adaptation_count"`
	QTableSize        int                       `json:"qtable_size"`
	Profile           *difficulty.PlayerProfile `json:"profile,omitempty"`
	Sessions          []SessionSummary          `json:"sessions"`
}

func NewHTTPHandler(authService auth.Service, store Store) *HTTPHandler {
	return &HTTPHandler{auth: authService, store: store}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/progress", h.handleProgress)
}

func (h *HTTPHandler) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		auth.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	playerID, ok := auth.Authenticate(h.auth, r)
	if !ok {
		auth.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	variant := strings.TrimSpace(r.URL.Query().Get("variant"))
	if variant == "" {
		variant = difficulty.VariantEnhanced
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	st, found, err := h.store.Load(ctx, playerID, variant)
	if err != nil {
		auth.WriteError(w, http.StatusInternalServerError, "load progress failed")
		return
	}
	sessions, err := h.store.RecentSessions(ctx, playerID, limit)
	if err != nil {
		auth.WriteError(w, http.StatusInternalServerError, "query sessions failed")
		return
	}

	resp := progressResponse{Variant: variant, Found: found, Sessions: sessions}
	if found {
		resp.CurrentDifficulty = st.CurrentDifficulty
		resp.AdaptationCount = st.AdaptationCount
		resp.QTableSize = len(st.QTable)
		resp.Profile = &st.Profile
	}
	auth.WriteJSON(w, http.StatusOK, resp)
}
