// internal/game/score.go
package game

import (
	"fmt"

	"github.com/Micheles111/Final-ASE-Project/internal/cards"
)

// EventEscoba is the score-event tag appended each time a capture sweeps the
// table clean.
const EventEscoba = "ESCOBA"

// Scores computes point totals and a human-readable breakdown per player
// from the captured piles and recorded score events. Each rule is
// independently additive: one point per escoba, one for more than half the
// deck captured, one for more than half the coin suit, and one for the
// settebello. Used at finalization and for the live current_scores attached
// to active match views.
func Scores(m *Match) (map[string]int, map[string][]string) {
	scores := make(map[string]int, len(m.Players))
	details := make(map[string][]string, len(m.Players))

	for name, ps := range m.Players {
		points := 0
		var log []string

		escobas := 0
		for _, ev := range ps.ScoreEvents {
			if ev == EventEscoba {
				escobas++
			}
		}
		points += escobas
		if escobas > 0 {
			log = append(log, fmt.Sprintf("%d Escoba(s)", escobas))
		}

		if len(ps.Captured) > 20 {
			points++
			log = append(log, "Most Cards")
		}

		oros := 0
		for _, c := range ps.Captured {
			if cards.IsOros(c) {
				oros++
			}
		}
		if oros > 5 {
			points++
			log = append(log, "Most Coins")
		}

		for _, c := range ps.Captured {
			if cards.IsSettebello(c) {
				points++
				log = append(log, "Settebello")
				break
			}
		}

		scores[name] = points
		details[name] = log
	}
	return scores, details
}
