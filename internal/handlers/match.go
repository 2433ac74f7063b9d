// internal/handlers/match.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Micheles111/Final-ASE-Project/internal/cards"
	"github.com/Micheles111/Final-ASE-Project/internal/game"
	"github.com/Micheles111/Final-ASE-Project/internal/store"
)

// CreateMatchHandler starts an active match directly, without an invite.
// Used for CPU games and local hotseat games.
//
// Request payload: { "player1": "...", "player2": "..." }
func (s *Server) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player1 string `json:"player1"`
		Player2 string `json:"player2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid payload")
		return
	}
	if req.Player1 == "" || req.Player2 == "" {
		badRequest(w, "Two players required")
		return
	}

	matchID, err := s.createActiveMatch(r.Context(), req.Player1, req.Player2)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"match_id": matchID,
		"message":  "Match created",
		"turn":     req.Player1,
	})
}

// GetMatchHandler returns the sanitized match document for the requesting
// player (via the ?player= query parameter).
func (s *Server) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	m, err := s.loadMatch(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	view, err := m.View(r.URL.Query().Get("player"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PlayHandler applies one card play, including any chained CPU move, and
// returns the caller's updated snapshot.
//
// Request payload: { "player": "...", "card_id": 7 }
func (s *Server) PlayHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
		CardID int    `json:"card_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid payload")
		return
	}

	var m *game.Match
	var outcome *game.PlayOutcome
	err := s.withMatch(r.Context(), r.PathValue("id"), func(doc *game.Match) error {
		o, err := doc.Play(req.Player, cards.Card(req.CardID))
		if err != nil {
			return err
		}
		m = doc
		outcome = o
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.Metrics.CardsPlayed.Inc()
	if outcome.Escoba {
		s.Metrics.Escobas.Inc()
	}
	if outcome.Finished {
		s.Metrics.MatchesFinished.Inc()
		go s.Notifier.MatchFinished(m)
	}

	resp := map[string]any{
		"message":  outcome.Message,
		"captured": outcome.Captured,
		"escoba":   outcome.Escoba,
		"state_snapshot": map[string]any{
			"table":     m.Table,
			"your_hand": m.Players[req.Player].Hand,
		},
	}
	if outcome.Finished {
		resp["final_result"] = m.Result
	}
	writeJSON(w, http.StatusOK, resp)
}

// SurrenderHandler finishes the match, crediting the opponent.
//
// Request payload: { "player": "..." }
func (s *Server) SurrenderHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid payload")
		return
	}

	var m *game.Match
	var winner string
	err := s.withMatch(r.Context(), r.PathValue("id"), func(doc *game.Match) error {
		wn, err := doc.Surrender(req.Player)
		if err != nil {
			return err
		}
		m = doc
		winner = wn
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.Metrics.MatchesFinished.Inc()
	go s.Notifier.MatchFinished(m)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Match surrendered",
		"winner":  winner,
	})
}

// ReactHandler attaches a cosmetic reaction to the match.
//
// Request payload: { "player": "...", "reaction": "..." }
func (s *Server) ReactHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player   string `json:"player"`
		Reaction string `json:"reaction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid payload")
		return
	}

	err := s.withMatch(r.Context(), r.PathValue("id"), func(doc *game.Match) error {
		return doc.React(req.Player, req.Reaction)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reaction posted"})
}

// PendingHandler scans all live match documents and classifies them for
// one user: active matches they play in, invites awaiting their answer and
// invites they sent.
func (s *Server) PendingHandler(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	keys, err := s.Store.ScanKeys(r.Context(), store.MatchKeyPrefix+"*")
	if err != nil {
		s.writeError(w, err)
		return
	}

	active := []map[string]any{}
	invitesReceived := []map[string]any{}
	invitesSent := []map[string]any{}

	for _, key := range keys {
		var m game.Match
		if err := s.Store.GetJSON(r.Context(), key, &m); err != nil {
			s.Log.WithError(err).WithField("key", key).Warn("skipping unreadable match")
			continue
		}

		switch {
		case m.Status == game.StatusActive && m.IsParticipant(user):
			scores, _ := game.Scores(&m)
			active = append(active, map[string]any{
				"match_id": m.MatchID,
				"opponent": m.Opponent(user),
				"turn":     m.Turn,
				"scores":   scores,
			})
		case m.Status == game.StatusPending && m.Challenged == user:
			invitesReceived = append(invitesReceived, map[string]any{
				"match_id":   m.MatchID,
				"challenger": m.Challenger,
			})
		case m.Status == game.StatusPending && m.Challenger == user:
			invitesSent = append(invitesSent, map[string]any{
				"match_id": m.MatchID,
				"opponent": m.Challenged,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"active":           active,
		"invites_received": invitesReceived,
		"invites_sent":     invitesSent,
	})
}
