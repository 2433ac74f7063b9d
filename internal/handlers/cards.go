// internal/handlers/cards.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/Micheles111/Final-ASE-Project/internal/cards"
)

// ListCardsHandler serves the static 40-card catalog.
func (s *Server) ListCardsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cards.Catalog())
}

// GetCardHandler serves one catalog entry by card id.
func (s *Server) GetCardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 || id > cards.DeckSize {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Card not found"})
		return
	}
	writeJSON(w, http.StatusOK, cards.Describe(cards.Card(id)))
}
