// internal/game/match.go
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/Micheles111/Final-ASE-Project/internal/cards"
)

// Match status tags. A pending document is an invite and never mutates in
// place: acceptance replaces it with a fresh active match under a new id,
// rejection deletes it.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Reserved participant names. CPUName marks the automated opponent whose
// moves the engine plays itself; GuestName marks the local-hotseat
// placeholder whose matches are never sanitized.
const (
	CPUName   = "CPU"
	GuestName = "Guest"
)

// PlayerState tracks one participant's cards during an active match.
type PlayerState struct {
	Hand        []cards.Card `json:"hand"`
	Captured    []cards.Card `json:"captured"`
	ScoreEvents []string     `json:"score_events"`
}

// Reaction is a cosmetic side-channel message attached to the match. It has
// no effect on legality or scoring and overwrites any prior reaction.
type Reaction struct {
	Player    string `json:"player"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Result is present only on finished matches. Winner is "Draw" on equal
// totals.
type Result struct {
	Status      string              `json:"status"`
	Winner      string              `json:"winner"`
	FinalScores map[string]int      `json:"final_scores"`
	Details     map[string][]string `json:"details"`
}

// Match is the persisted document for both invites and matches. The status
// tag selects which fields are meaningful: a pending invite carries only
// Challenger and Challenged, an active match carries the full play state,
// and a finished match keeps the final piles plus Result with Turn cleared.
//
// PlayerOrder fixes the seat order (challenger first); Go maps do not
// preserve insertion order, and turn rotation and surrender both need it.
type Match struct {
	MatchID string `json:"match_id"`
	Status  string `json:"status"`

	Challenger string `json:"player1,omitempty"`
	Challenged string `json:"player2,omitempty"`

	Players       map[string]*PlayerState `json:"players,omitempty"`
	PlayerOrder   []string                `json:"player_order,omitempty"`
	Table         []cards.Card            `json:"table,omitempty"`
	Deck          []cards.Card            `json:"deck,omitempty"`
	Turn          string                  `json:"turn,omitempty"`
	LastCaptureBy string                  `json:"last_capture_by,omitempty"`
	TurnStartTime string                  `json:"turn_start_time,omitempty"`
	LastReaction  *Reaction               `json:"last_reaction,omitempty"`
	Result        *Result                 `json:"result,omitempty"`
}

// PlayOutcome reports what a single play did, including any chained CPU
// move executed before control returned to the caller.
type PlayOutcome struct {
	Message  string
	Captured []cards.Card
	Escoba   bool
	Finished bool
}

// NewInvite builds a pending invite from challenger to challenged.
func NewInvite(challenger, challenged string) *Match {
	return &Match{
		MatchID:    uuid.NewString(),
		Status:     StatusPending,
		Challenger: challenger,
		Challenged: challenged,
	}
}

// NewMatch deals a fresh active match: three cards to each player, four on
// the table, the challenger to act first.
func NewMatch(player1, player2 string) *Match {
	deck := cards.NewDeck()
	cards.Shuffle(deck)

	m := &Match{
		MatchID:       uuid.NewString(),
		Status:        StatusActive,
		Players:       make(map[string]*PlayerState, 2),
		PlayerOrder:   []string{player1, player2},
		Deck:          deck,
		Turn:          player1,
		TurnStartTime: timestamp(),
	}
	m.Players[player1] = &PlayerState{Captured: []cards.Card{}, ScoreEvents: []string{}}
	m.Players[player2] = &PlayerState{Captured: []cards.Card{}, ScoreEvents: []string{}}
	m.Players[player1].Hand = m.draw(3)
	m.Players[player2].Hand = m.draw(3)
	m.Table = m.draw(4)
	return m
}

// draw removes and returns n cards from the top of the deck.
func (m *Match) draw(n int) []cards.Card {
	drawn := make([]cards.Card, 0, n)
	for i := 0; i < n && len(m.Deck) > 0; i++ {
		drawn = append(drawn, m.Deck[len(m.Deck)-1])
		m.Deck = m.Deck[:len(m.Deck)-1]
	}
	return drawn
}

// IsParticipant reports whether name is one of the two players.
func (m *Match) IsParticipant(name string) bool {
	_, ok := m.Players[name]
	return ok
}

// IsLocal reports whether the match is a local hotseat game with the guest
// placeholder seat.
func (m *Match) IsLocal() bool {
	return m.IsParticipant(GuestName)
}

// Opponent returns the other participant's name.
func (m *Match) Opponent(name string) string {
	if len(m.PlayerOrder) == 2 && m.PlayerOrder[0] == name {
		return m.PlayerOrder[1]
	}
	return m.PlayerOrder[0]
}

// Play applies one card play for the acting player, then advances the turn,
// chaining a CPU move when the turn lands on the automated opponent. The
// match is mutated only when no error is returned.
func (m *Match) Play(player string, card cards.Card) (*PlayOutcome, error) {
	if m.Status != StatusActive {
		return nil, ErrMatchNotActive
	}
	if m.Turn != player {
		return nil, ErrNotYourTurn
	}
	if !contains(m.Players[player].Hand, card) {
		return nil, ErrCardNotInHand
	}

	captured := FindCapture(card, m.Table)
	escoba := m.applyMove(player, card, captured)

	message, finished := m.advanceTurn()
	if !finished && m.Turn == CPUName {
		m.playCPU()
		_, finished = m.advanceTurn()
		message = "CPU played. Your turn."
	}

	if captured == nil {
		captured = []cards.Card{}
	}
	return &PlayOutcome{
		Message:  message,
		Captured: captured,
		Escoba:   escoba,
		Finished: finished,
	}, nil
}

// applyMove removes the played card from the hand and settles the capture:
// captured cards plus the played card join the player's pile and an escoba
// is recorded when the table is swept clean; with no capture the played
// card joins the table. Reports whether an escoba happened.
func (m *Match) applyMove(player string, card cards.Card, captured []cards.Card) bool {
	ps := m.Players[player]
	ps.Hand = remove(ps.Hand, card)

	if len(captured) == 0 {
		m.Table = append(m.Table, card)
		return false
	}

	for _, c := range captured {
		m.Table = remove(m.Table, c)
	}
	ps.Captured = append(ps.Captured, captured...)
	ps.Captured = append(ps.Captured, card)
	m.LastCaptureBy = player

	if len(m.Table) == 0 {
		ps.ScoreEvents = append(ps.ScoreEvents, EventEscoba)
		return true
	}
	return false
}

// advanceTurn hands play to the other player, re-dealing when both hands
// are empty and finalizing when the deck is exhausted too. The turn passes
// to the next player even on the re-deal branch.
func (m *Match) advanceTurn() (string, bool) {
	p1, p2 := m.PlayerOrder[0], m.PlayerOrder[1]
	next := m.Opponent(m.Turn)

	if len(m.Players[p1].Hand) == 0 && len(m.Players[p2].Hand) == 0 {
		if len(m.Deck) > 0 {
			dealCount := 3
			if len(m.Deck) < 6 {
				dealCount = len(m.Deck) / 2
			}
			for i := 0; i < dealCount; i++ {
				m.Players[p1].Hand = append(m.Players[p1].Hand, m.draw(1)...)
				m.Players[p2].Hand = append(m.Players[p2].Hand, m.draw(1)...)
			}
			m.Turn = next
			return "New hand dealt", false
		}

		m.Result = m.finalize("")
		m.Status = StatusFinished
		m.Turn = ""
		return "Match finished", true
	}

	m.Turn = next
	m.TurnStartTime = timestamp()
	return "Turn changed", false
}

// playCPU executes one automated move: the first card in hand with a legal
// capture, else the lowest-value card played to the table.
func (m *Match) playCPU() {
	hand := m.Players[CPUName].Hand

	var move cards.Card
	var captured []cards.Card
	for _, c := range hand {
		if combo := FindCapture(c, m.Table); combo != nil {
			move = c
			captured = combo
			break
		}
	}
	if move == 0 {
		move = hand[0]
		for _, c := range hand[1:] {
			if cards.Value(c) < cards.Value(move) {
				move = c
			}
		}
	}

	m.applyMove(CPUName, move, captured)
}

// Surrender finishes the match immediately, crediting the opponent as
// winner under the surrender scoring rule.
func (m *Match) Surrender(player string) (string, error) {
	if m.Status != StatusActive {
		return "", ErrMatchNotActive
	}
	if !m.IsParticipant(player) {
		return "", ErrNotInMatch
	}

	winner := m.Opponent(player)
	m.Result = m.finalize(winner)
	m.Status = StatusFinished
	m.Turn = ""
	return winner, nil
}

// React attaches a cosmetic reaction to the match, overwriting any prior
// one.
func (m *Match) React(player, content string) error {
	if m.Status != StatusActive {
		return ErrMatchNotActive
	}
	if !m.IsParticipant(player) {
		return ErrNotInMatch
	}
	m.LastReaction = &Reaction{
		Player:    player,
		Content:   content,
		Timestamp: timestamp(),
	}
	return nil
}

// finalize computes the terminal result. Without a surrender winner the
// last capturer sweeps any remaining table cards into their pile before
// scores are tallied; with one, both scores report zero and only the winner
// gets a breakdown entry.
func (m *Match) finalize(surrenderWinner string) *Result {
	p1, p2 := m.PlayerOrder[0], m.PlayerOrder[1]

	if surrenderWinner != "" {
		return &Result{
			Status:      StatusFinished,
			Winner:      surrenderWinner,
			FinalScores: map[string]int{p1: 0, p2: 0},
			Details:     map[string][]string{surrenderWinner: {"Opponent Surrendered"}},
		}
	}

	if m.LastCaptureBy != "" && len(m.Table) > 0 {
		ps := m.Players[m.LastCaptureBy]
		ps.Captured = append(ps.Captured, m.Table...)
		m.Table = []cards.Card{}
	}

	scores, details := Scores(m)
	winner := "Draw"
	if scores[p1] > scores[p2] {
		winner = p1
	} else if scores[p2] > scores[p1] {
		winner = p2
	}

	return &Result{
		Status:      StatusFinished,
		Winner:      winner,
		FinalScores: scores,
		Details:     details,
	}
}

func contains(hand []cards.Card, card cards.Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}

// remove drops the first occurrence of card from the slice.
func remove(s []cards.Card, card cards.Card) []cards.Card {
	for i, c := range s {
		if c == card {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
