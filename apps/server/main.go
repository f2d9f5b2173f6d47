package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"frontline-lite/apps/server/internal/arena"
	"frontline-lite/apps/server/internal/audit"
	"frontline-lite/apps/server/internal/auth"
	"frontline-lite/apps/server/internal/gateway"
	"frontline-lite/apps/server/internal/progress"
	"frontline-lite/apps/server/internal/storage"
	"frontline-lite/difficulty/enemy"
)

func main() {
	mode := storage.ModeFromEnv()
	db, err := storage.OpenFromEnv(mode)
	if err != nil {
		log.Fatalf("[Server] Failed to open store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	authService, err := auth.NewServiceFromEnv(mode, db)
	if err != nil {
		log.Fatalf("[Server] Failed to init auth manager: %v", err)
	}
	defer authService.Close()
	progressStore, progressMode, err := progress.NewStoreFromEnv(db)
	if err != nil {
		log.Fatalf("[Server] Failed to init progress store: %v", err)
	}
	defer progressStore.Close()
	auditService, auditMode, err := audit.NewServiceFromEnv(db)
	if err != nil {
		log.Fatalf("[Server] Failed to init audit service: %v", err)
	}
	defer auditService.Close()

	registry, err := loadRegistry()
	if err != nil {
		log.Fatalf("[Server] Failed to load enemy archetypes: %v", err)
	}
	arn, err := arena.New(arena.ConfigFromEnv(), registry, progressStore, auditService)
	if err != nil {
		log.Fatalf("[Server] Failed to init arena: %v", err)
	}
	gw := gateway.New(arn, authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	auth.NewHTTPHandler(authService).RegisterRoutes(mux)
	progress.NewHTTPHandler(authService, progressStore).RegisterRoutes(mux)
	audit.NewHTTPHandler(authService, auditService).RegisterRoutes(mux)

	addr := strings.TrimSpace(os.Getenv("SERVER_ADDR"))
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[Server] Store mode: %s (progress=%s audit=%s)", mode, progressMode, auditMode)
		log.Printf("[Server] Difficulty variant: %s, %d archetypes", arn.Variant(), registry.Count())
		log.Printf("[Server] Starting WebSocket server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Server] Failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] HTTP shutdown: %v", err)
	}
	arn.Shutdown()
}

// loadRegistry starts from the built-in archetypes and merges ENEMY_ARCHETYPES
// on top when set.
func loadRegistry() (*enemy.Registry, error) {
	registry, err := enemy.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	if path := strings.TrimSpace(os.Getenv("ENEMY_ARCHETYPES")); path != "" {
		if err := registry.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
