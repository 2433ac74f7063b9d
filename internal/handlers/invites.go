// internal/handlers/invites.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Micheles111/Final-ASE-Project/internal/game"
	"github.com/Micheles111/Final-ASE-Project/internal/store"
)

// CreateInviteHandler records a pending challenge from player1 to player2.
//
// Request payload: { "player1": "...", "player2": "..." }
func (s *Server) CreateInviteHandler(w http.ResponseWriter, r *http.Request) {
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

	invite := game.NewInvite(req.Player1, req.Player2)
	if err := s.saveMatch(r.Context(), invite); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"match_id": invite.MatchID,
		"message":  "Invite sent",
	})
}

// AcceptInviteHandler turns a pending invite into a brand-new active match.
// Only the challenged player may accept. The invite document is deleted and
// a fresh match is dealt under a new id, which the response carries.
//
// Request payload: { "player": "..." }
func (s *Server) AcceptInviteHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid payload")
		return
	}

	ctx := r.Context()
	id := r.PathValue("id")

	token, err := s.Store.AcquireLock(ctx, store.MatchLockKey(id), store.MatchLockTTL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer s.Store.ReleaseLock(ctx, store.MatchLockKey(id), token)

	invite, err := s.loadMatch(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if invite.Status != game.StatusPending {
		badRequest(w, "Match already active")
		return
	}
	if invite.Challenged != req.Player {
		s.writeError(w, game.ErrNotAuthorized)
		return
	}

	if err := s.Store.Delete(ctx, store.MatchKey(id)); err != nil {
		s.writeError(w, err)
		return
	}
	matchID, err := s.createActiveMatch(ctx, invite.Challenger, invite.Challenged)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"match_id": matchID,
		"message":  "Match accepted",
	})
}

// RejectInviteHandler deletes a pending invite. Either party may reject.
//
// Request payload: { "player": "..." }
func (s *Server) RejectInviteHandler(w http.ResponseWriter, r *http.Request) {
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

	ctx := r.Context()
	id := r.PathValue("id")

	invite, err := s.loadMatch(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if invite.Status != game.StatusPending {
		badRequest(w, "Match already active")
		return
	}
	if invite.Challenger != req.Player && invite.Challenged != req.Player {
		s.writeError(w, game.ErrNotAuthorized)
		return
	}

	if err := s.Store.Delete(ctx, store.MatchKey(id)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Invite rejected"})
}
