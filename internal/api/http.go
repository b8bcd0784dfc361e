package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"

	"ball-tracker/internal/domain/port"
)

// StatsServer отдаёт статистику сессий по HTTP
type StatsServer struct {
	server *StreamServer
	repo   port.SessionRepository
}

// NewStatsServer создаёт HTTP-сервер статистики
func NewStatsServer(server *StreamServer, repo port.SessionRepository) *StatsServer {
	return &StatsServer{
		server: server,
		repo:   repo,
	}
}

// Serve запускает HTTP-сервер и останавливает его при отмене контекста
func (s *StatsServer) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/healthz", s.handleHealth)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/sessions", s.handleSessions)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: c.Handler(mux),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("stats server is listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// handleHealth отвечает живости сервера
func (s *StatsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleStats отдаёт статистику живых сессий
func (s *StatsServer) handleStats(w http.ResponseWriter, r *http.Request) {
	sessions := s.server.ActiveSessions()
	writeJSON(w, map[string]interface{}{
		"active":   len(sessions),
		"sessions": sessions,
	})
}

// handleSessions отдаёт завершённые сессии из хранилища
func (s *StatsServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	sessions, err := s.repo.List(r.Context(), limit)
	if err != nil {
		log.Errorf("list sessions: %v", err)
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, sessions)
}

// writeJSON сериализует ответ в JSON
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %v", err)
	}
}
