// internal/handlers/matchmaking.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Micheles111/Final-ASE-Project/internal/matchmaking"
)

// JoinQueueHandler enters a player into the FIFO queue, pairing them
// immediately when an opponent is already waiting.
//
// Request payload: { "player": "..." }
func (s *Server) JoinQueueHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid payload")
		return
	}
	if req.Player == "" {
		badRequest(w, "Player required")
		return
	}

	res, err := s.Queue.Join(r.Context(), req.Player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.Metrics.QueueJoins.Inc()
	if res.Status == matchmaking.StatusMatched {
		s.Metrics.QueuePairings.Inc()
	}
	writeJSON(w, http.StatusOK, res)
}

// LeaveQueueHandler removes a player from the queue. Idempotent.
//
// Request payload: { "player": "..." }
func (s *Server) LeaveQueueHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid payload")
		return
	}

	if err := s.Queue.Leave(r.Context(), req.Player); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Left queue"})
}

// QueueStatusHandler reports whether a player is matched, waiting or
// unknown to the queue.
func (s *Server) QueueStatusHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.Queue.Status(r.Context(), r.PathValue("user"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
