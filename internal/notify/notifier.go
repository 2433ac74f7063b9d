// internal/notify/notifier.go

// Package notify pushes completed-match results to the history-archival and
// player-stats collaborators. Delivery is best effort: calls are bounded by
// a short client timeout, failures are logged and swallowed, and match
// finalization never waits on nor rolls back for them.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Micheles111/Final-ASE-Project/internal/game"
)

// HistoryRecord is the payload archived per finished match. Winner is nil
// on a draw.
type HistoryRecord struct {
	MatchID string              `json:"match_id"`
	Player1 string              `json:"player1"`
	Player2 string              `json:"player2"`
	Winner  *string             `json:"winner"`
	Score   map[string]int      `json:"score"`
	Log     map[string][]string `json:"log"`
}

// StatsUpdate is the per-player payload sent to the player service.
type StatsUpdate struct {
	Won        bool `json:"won"`
	ScoreDelta int  `json:"score_delta"`
}

// Notifier holds the collaborator endpoints and the bounded HTTP client.
type Notifier struct {
	historyURL string
	playerURL  string
	client     *http.Client
	log        *logrus.Logger
}

// New builds a notifier. historyURL receives match records via POST;
// playerURL is the base of the player service, extended with
// /{player}/stats per participant.
func New(historyURL, playerURL string, timeout time.Duration, log *logrus.Logger) *Notifier {
	return &Notifier{
		historyURL: historyURL,
		playerURL:  playerURL,
		client:     &http.Client{Timeout: timeout},
		log:        log,
	}
}

// MatchFinished pushes the final result to both collaborators. Intended to
// run on its own goroutine after the finished state is already committed;
// every failure is logged at Warn and dropped.
func (n *Notifier) MatchFinished(m *game.Match) {
	if m.Result == nil || len(m.PlayerOrder) != 2 {
		return
	}
	result := m.Result

	record := HistoryRecord{
		MatchID: m.MatchID,
		Player1: m.PlayerOrder[0],
		Player2: m.PlayerOrder[1],
		Score:   result.FinalScores,
		Log:     result.Details,
	}
	if result.Winner != "" && result.Winner != "Draw" {
		winner := result.Winner
		record.Winner = &winner
	}

	if err := n.send(http.MethodPost, n.historyURL, record); err != nil {
		n.log.WithError(err).WithField("match_id", m.MatchID).Warn("history service unreachable")
	}

	for _, player := range m.PlayerOrder {
		if player == game.CPUName || player == game.GuestName {
			continue
		}
		update := StatsUpdate{
			Won:        player == result.Winner,
			ScoreDelta: result.FinalScores[player],
		}
		url := fmt.Sprintf("%s/%s/stats", n.playerURL, player)
		if err := n.send(http.MethodPut, url, update); err != nil {
			n.log.WithError(err).WithFields(logrus.Fields{
				"match_id": m.MatchID,
				"player":   player,
			}).Warn("player service unreachable")
		}
	}
}

func (n *Notifier) send(method, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode)
	}
	return nil
}
