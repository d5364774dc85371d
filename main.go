package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"swiss-pairing-server/api"
	"swiss-pairing-server/auth"
	"swiss-pairing-server/config"
	"swiss-pairing-server/loghandler"
	"swiss-pairing-server/storage"
	"swiss-pairing-server/tournament"
	"swiss-pairing-server/ws"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, cfg.SlogLevel())))

	if envErr != nil {
		slog.Info("no .env file found; using environment variables", "tag", "main")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.TournamentStore
	pg, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database unavailable", "tag", "main", "error", err)
		os.Exit(1)
	}
	if pg != nil {
		store = pg
		slog.Info("storage: postgres", "tag", "main")
	} else {
		store = storage.NewMemoryStore()
		slog.Warn("DATABASE_URL is not set; tournament data is kept in memory only", "tag", "main")
	}
	defer store.Close()

	var authz api.Authorizer
	if cfg.AuthBaseURL == "" {
		slog.Warn("AUTH_BASE_URL is not set; write endpoints are open", "tag", "main")
	} else {
		v, err := auth.NewVerifier(cfg.AuthBaseURL, cfg.AdminRole)
		if err != nil {
			slog.Error("auth setup failed", "tag", "main", "error", err)
			os.Exit(1)
		}
		authz = v
		slog.Info("auth configured", "tag", "main", "base_url", cfg.AuthBaseURL, "role", cfg.AdminRole)
	}

	hub := ws.NewHub(nil)
	svc := tournament.NewService(cfg, store, hub)
	hub.Source = svc
	go hub.Run(ctx)

	slog.Info("configuration", "tag", "main",
		"max_name_length", cfg.MaxNameLength, "odd_player_policy", cfg.OddPlayerPolicy, "http_port", cfg.HTTPPort)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newMux(svc, hub, authz),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown", "tag", "main", "error", err)
		}
	}()

	slog.Info("swiss pairing server listening", "tag", "main", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "tag", "main", "error", err)
		os.Exit(1)
	}
}

// newMux wires the REST API and the spectator websocket.
func newMux(svc *tournament.Service, hub *ws.Hub, authz api.Authorizer) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewHandler(svc, authz).Routes(mux)
	mux.HandleFunc("/ws", hub.ServeWS)
	return mux
}
