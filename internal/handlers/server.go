// internal/handlers/server.go

// Package handlers exposes the match engine over JSON/HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Micheles111/Final-ASE-Project/internal/game"
	"github.com/Micheles111/Final-ASE-Project/internal/matchmaking"
	"github.com/Micheles111/Final-ASE-Project/internal/monitor"
	"github.com/Micheles111/Final-ASE-Project/internal/notify"
	"github.com/Micheles111/Final-ASE-Project/internal/store"
)

// Server holds the wiring for all match endpoints: the state store, the
// matchmaking queue built over it, the finalization notifier and the
// metrics collectors.
type Server struct {
	Store    store.Store
	Queue    *matchmaking.Queue
	Notifier *notify.Notifier
	Log      *logrus.Logger
	Metrics  *monitor.Metrics
}

// NewServer builds a Server and its matchmaking queue.
func NewServer(s store.Store, notifier *notify.Notifier, log *logrus.Logger, metrics *monitor.Metrics) *Server {
	srv := &Server{
		Store:    s,
		Notifier: notifier,
		Log:      log,
		Metrics:  metrics,
	}
	srv.Queue = matchmaking.New(s, srv.createActiveMatch)
	return srv
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.HealthHandler)

	mux.HandleFunc("GET /cards", s.ListCardsHandler)
	mux.HandleFunc("GET /cards/{id}", s.GetCardHandler)

	mux.HandleFunc("GET /pending/{user}", s.PendingHandler)

	mux.HandleFunc("POST /matches", s.CreateMatchHandler)
	mux.HandleFunc("GET /matches/{id}", s.GetMatchHandler)
	mux.HandleFunc("POST /matches/{id}/play", s.PlayHandler)
	mux.HandleFunc("POST /matches/{id}/surrender", s.SurrenderHandler)
	mux.HandleFunc("POST /matches/{id}/react", s.ReactHandler)

	mux.HandleFunc("POST /invites", s.CreateInviteHandler)
	mux.HandleFunc("POST /invites/{id}/accept", s.AcceptInviteHandler)
	mux.HandleFunc("POST /invites/{id}/reject", s.RejectInviteHandler)

	mux.HandleFunc("POST /matchmaking/join", s.JoinQueueHandler)
	mux.HandleFunc("POST /matchmaking/leave", s.LeaveQueueHandler)
	mux.HandleFunc("GET /matchmaking/status/{user}", s.QueueStatusHandler)
	return mux
}

// HealthHandler reports service liveness and store reachability.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	redisStatus := "connected"
	if err := s.Store.Ping(r.Context()); err != nil {
		redisStatus = "disconnected"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "match-service",
		"redis":   redisStatus,
	})
}

// createActiveMatch deals and persists a fresh match. Used by direct
// creation, invite acceptance and matchmaking pairings; player1 acts first.
func (s *Server) createActiveMatch(ctx context.Context, player1, player2 string) (string, error) {
	m := game.NewMatch(player1, player2)
	if err := s.saveMatch(ctx, m); err != nil {
		return "", err
	}
	s.Metrics.MatchesCreated.Inc()
	return m.MatchID, nil
}

// loadMatch fetches a match or invite document from the store.
func (s *Server) loadMatch(ctx context.Context, id string) (*game.Match, error) {
	var m game.Match
	if err := s.Store.GetJSON(ctx, store.MatchKey(id), &m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, game.ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

// saveMatch writes the document back with the retention window for its
// status. Every write resets the TTL, so a match expires a fixed time past
// its last mutation.
func (s *Server) saveMatch(ctx context.Context, m *game.Match) error {
	ttl := store.ActiveMatchTTL
	if m.Status == game.StatusPending {
		ttl = store.PendingInviteTTL
	}
	return s.Store.SetJSON(ctx, store.MatchKey(m.MatchID), m, ttl)
}

// withMatch runs fn inside a locked read-modify-write cycle against one
// match. The document is written back only when fn succeeds, so rejected
// operations leave stored state untouched. The advisory lock keeps two
// concurrent mutations from clobbering each other's writes.
func (s *Server) withMatch(ctx context.Context, id string, fn func(*game.Match) error) error {
	token, err := s.Store.AcquireLock(ctx, store.MatchLockKey(id), store.MatchLockTTL)
	if err != nil {
		return err
	}
	defer s.Store.ReleaseLock(ctx, store.MatchLockKey(id), token)

	m, err := s.loadMatch(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return s.saveMatch(ctx, m)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the failure taxonomy onto HTTP statuses with an
// {"error": ...} body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrMatchNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrNotAuthorized), errors.Is(err, game.ErrNotInMatch):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrMatchNotActive),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrCardNotInHand):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrLockHeld):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.Log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}
