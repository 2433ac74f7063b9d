// internal/game/view.go
package game

import "github.com/Micheles111/Final-ASE-Project/internal/cards"

// hiddenCard is the opaque placeholder standing in for each card of an
// opponent's hand in a sanitized view.
const hiddenCard = "hidden"

// PlayerView mirrors PlayerState with the hand possibly masked: entries are
// either card ids or the "hidden" placeholder.
type PlayerView struct {
	Hand        []any        `json:"hand"`
	Captured    []cards.Card `json:"captured"`
	ScoreEvents []string     `json:"score_events"`
}

// MatchView is the document returned by the match read endpoint for active
// matches. It always carries the deck length and live scores; the deck
// itself is present only for unsanitized views.
type MatchView struct {
	MatchID        string                 `json:"match_id"`
	Status         string                 `json:"status"`
	Players        map[string]*PlayerView `json:"players"`
	PlayerOrder    []string               `json:"player_order"`
	Table          []cards.Card           `json:"table"`
	Deck           []cards.Card           `json:"deck,omitempty"`
	Turn           string                 `json:"turn,omitempty"`
	LastCaptureBy  string                 `json:"last_capture_by,omitempty"`
	TurnStartTime  string                 `json:"turn_start_time,omitempty"`
	LastReaction   *Reaction              `json:"last_reaction,omitempty"`
	CardsRemaining int                    `json:"cards_remaining"`
	CurrentScores  map[string]int         `json:"current_scores"`
}

// View applies the read-sanitization policy for a requesting player and
// returns the document to serialize. Pending and finished matches are
// returned whole. Active matches are returned whole for local hotseat games
// and for requests with no player (server-to-server reads); otherwise the
// requester must be a participant, opponent hands are masked to same-length
// placeholders and the deck is withheld.
func (m *Match) View(requester string) (any, error) {
	if m.Status != StatusActive {
		return m, nil
	}

	local := m.IsLocal()
	if requester != "" && !local && !m.IsParticipant(requester) {
		return nil, ErrNotInMatch
	}

	currentScores, _ := Scores(m)
	view := &MatchView{
		MatchID:        m.MatchID,
		Status:         m.Status,
		Players:        make(map[string]*PlayerView, len(m.Players)),
		PlayerOrder:    m.PlayerOrder,
		Table:          m.Table,
		Turn:           m.Turn,
		LastCaptureBy:  m.LastCaptureBy,
		TurnStartTime:  m.TurnStartTime,
		LastReaction:   m.LastReaction,
		CardsRemaining: len(m.Deck),
		CurrentScores:  currentScores,
	}

	reveal := local || requester == ""
	if reveal {
		view.Deck = m.Deck
	}

	for name, ps := range m.Players {
		pv := &PlayerView{
			Hand:        make([]any, len(ps.Hand)),
			Captured:    ps.Captured,
			ScoreEvents: ps.ScoreEvents,
		}
		if reveal || name == requester {
			for i, c := range ps.Hand {
				pv.Hand[i] = c
			}
		} else {
			for i := range ps.Hand {
				pv.Hand[i] = hiddenCard
			}
		}
		view.Players[name] = pv
	}

	return view, nil
}
