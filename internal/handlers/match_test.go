// internal/handlers/match_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Micheles111/Final-ASE-Project/internal/cards"
	"github.com/Micheles111/Final-ASE-Project/internal/game"
	"github.com/Micheles111/Final-ASE-Project/internal/monitor"
	"github.com/Micheles111/Final-ASE-Project/internal/notify"
	"github.com/Micheles111/Final-ASE-Project/internal/store"
)

// collaborator records requests sent by the finalization notifier.
type collaborator struct {
	mu    sync.Mutex
	paths []string
}

func (c *collaborator) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.paths = append(c.paths, r.URL.Path)
		c.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (c *collaborator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

// waitFor polls until the collaborator saw at least n calls; the notifier
// runs on its own goroutine after the response is committed.
func (c *collaborator) waitFor(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("collaborator saw %d calls, want at least %d", c.count(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func setupServer(t *testing.T) (*Server, *http.ServeMux, *store.Memory, *collaborator) {
	t.Helper()

	collab := &collaborator{}
	collabSrv := httptest.NewServer(collab.handler())
	t.Cleanup(collabSrv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	mem := store.NewMemory()
	notifier := notify.New(collabSrv.URL+"/history/matches", collabSrv.URL+"/players", time.Second, log)
	srv := NewServer(mem, notifier, log, monitor.NewMetrics("escoba_test"))
	return srv, srv.Routes(), mem, collab
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func ids(vals ...int) []cards.Card {
	out := make([]cards.Card, len(vals))
	for i, v := range vals {
		out[i] = cards.Card(v)
	}
	return out
}

// storeMatch injects a deterministic match document directly.
func storeMatch(t *testing.T, mem *store.Memory, m *game.Match) {
	t.Helper()
	require.NoError(t, mem.SetJSON(context.Background(), store.MatchKey(m.MatchID), m, time.Hour))
}

func fixedMatch(id, p1, p2 string, hand1, hand2, table, deck []cards.Card) *game.Match {
	m := &game.Match{
		MatchID:     id,
		Status:      game.StatusActive,
		Players:     make(map[string]*game.PlayerState, 2),
		PlayerOrder: []string{p1, p2},
		Table:       table,
		Deck:        deck,
		Turn:        p1,
	}
	m.Players[p1] = &game.PlayerState{Hand: hand1, Captured: []cards.Card{}, ScoreEvents: []string{}}
	m.Players[p2] = &game.PlayerState{Hand: hand2, Captured: []cards.Card{}, ScoreEvents: []string{}}
	return m
}

func TestHealth(t *testing.T) {
	_, mux, _, _ := setupServer(t)

	w := doJSON(t, mux, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "match-service", body["service"])
	assert.Equal(t, "connected", body["redis"])
}

func TestCreateMatchValidation(t *testing.T) {
	_, mux, _, _ := setupServer(t)

	w := doJSON(t, mux, http.MethodPost, "/matches", map[string]string{"player1": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMatchAndSanitizedView(t *testing.T) {
	_, mux, _, _ := setupServer(t)

	w := doJSON(t, mux, http.MethodPost, "/matches", map[string]string{"player1": "alice", "player2": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	matchID := created["match_id"].(string)
	require.NotEmpty(t, matchID)
	assert.Equal(t, "alice", created["turn"])

	// alice sees her own cards; bob's hand is masked and the deck absent.
	w = doJSON(t, mux, http.MethodGet, "/matches/"+matchID+"?player=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)

	assert.Nil(t, view["deck"])
	assert.Equal(t, float64(30), view["cards_remaining"])
	assert.NotNil(t, view["current_scores"])

	players := view["players"].(map[string]any)
	aliceHand := players["alice"].(map[string]any)["hand"].([]any)
	require.Len(t, aliceHand, 3)
	for _, c := range aliceHand {
		_, isNumber := c.(float64)
		assert.True(t, isNumber, "own hand must hold real card ids, got %v", c)
	}
	bobHand := players["bob"].(map[string]any)["hand"].([]any)
	require.Len(t, bobHand, 3)
	for _, c := range bobHand {
		assert.Equal(t, "hidden", c)
	}

	// A stranger may not read a two-human match.
	w = doJSON(t, mux, http.MethodGet, "/matches/"+matchID+"?player=mallory", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A read without a player (server-to-server) gets the full document.
	w = doJSON(t, mux, http.MethodGet, "/matches/"+matchID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	full := decode(t, w)
	assert.Len(t, full["deck"].([]any), 30)
}

func TestGuestMatchIsNeverMasked(t *testing.T) {
	_, mux, mem, _ := setupServer(t)

	m := fixedMatch("local-1", "alice", game.GuestName,
		ids(1, 2, 3), ids(11, 12, 13),
		ids(21, 22, 23, 24), ids(31, 32))
	storeMatch(t, mem, m)

	w := doJSON(t, mux, http.MethodGet, "/matches/local-1?player=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)

	players := view["players"].(map[string]any)
	guestHand := players[game.GuestName].(map[string]any)["hand"].([]any)
	assert.Equal(t, []any{float64(11), float64(12), float64(13)}, guestHand)
	assert.Len(t, view["deck"].([]any), 2)
}

func TestGetMatchNotFound(t *testing.T) {
	_, mux, _, _ := setupServer(t)

	w := doJSON(t, mux, http.MethodGet, "/matches/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlayCaptureResponse(t *testing.T) {
	_, mux, mem, _ := setupServer(t)

	m := fixedMatch("m-play", "alice", "bob",
		ids(5, 12), ids(13, 14),
		ids(4, 6, 38), ids(30, 31))
	storeMatch(t, mem, m)

	w := doJSON(t, mux, http.MethodPost, "/matches/m-play/play",
		map[string]any{"player": "alice", "card_id": 5})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	assert.Equal(t, "Turn changed", body["message"])
	assert.Equal(t, []any{float64(4), float64(6)}, body["captured"])
	assert.Equal(t, false, body["escoba"])

	snapshot := body["state_snapshot"].(map[string]any)
	assert.Equal(t, []any{float64(38)}, snapshot["table"])
	assert.Equal(t, []any{float64(12)}, snapshot["your_hand"])
	assert.Nil(t, body["final_result"])

	// The mutation is persisted.
	var stored game.Match
	require.NoError(t, mem.GetJSON(context.Background(), store.MatchKey("m-play"), &stored))
	assert.Equal(t, "bob", stored.Turn)
	assert.Equal(t, ids(4, 6, 5), stored.Players["alice"].Captured)
}

func TestPlayRejections(t *testing.T) {
	_, mux, mem, _ := setupServer(t)

	m := fixedMatch("m-rej", "alice", "bob",
		ids(1, 12), ids(13, 14),
		ids(2, 3), ids(30, 31))
	storeMatch(t, mem, m)

	w := doJSON(t, mux, http.MethodPost, "/matches/m-rej/play",
		map[string]any{"player": "bob", "card_id": 13})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, mux, http.MethodPost, "/matches/m-rej/play",
		map[string]any{"player": "alice", "card_id": 40})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, mux, http.MethodPost, "/matches/missing/play",
		map[string]any{"player": "alice", "card_id": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Rejected plays never persist partial state.
	var stored game.Match
	require.NoError(t, mem.GetJSON(context.Background(), store.MatchKey("m-rej"), &stored))
	assert.Equal(t, "alice", stored.Turn)
	assert.Equal(t, ids(1, 12), stored.Players["alice"].Hand)
}

func TestPlayFinishesMatchAndNotifies(t *testing.T) {
	_, mux, mem, collab := setupServer(t)

	// Last card of the match: both hands empty after the play, deck empty.
	m := fixedMatch("m-final", "alice", "bob",
		ids(1), nil,
		ids(2, 3), nil)
	m.LastCaptureBy = "bob"
	storeMatch(t, mem, m)

	w := doJSON(t, mux, http.MethodPost, "/matches/m-final/play",
		map[string]any{"player": "alice", "card_id": 1})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	assert.Equal(t, "Match finished", body["message"])
	require.NotNil(t, body["final_result"])

	var stored game.Match
	require.NoError(t, mem.GetJSON(context.Background(), store.MatchKey("m-final"), &stored))
	assert.Equal(t, game.StatusFinished, stored.Status)
	assert.Empty(t, stored.Turn)

	// History POST plus two stats PUTs.
	collab.waitFor(t, 3)
}

func TestSurrenderEndpoint(t *testing.T) {
	_, mux, mem, collab := setupServer(t)

	m := fixedMatch("m-sur", "alice", "bob",
		ids(1, 12), ids(13, 14),
		ids(2, 3), ids(30, 31))
	storeMatch(t, mem, m)

	w := doJSON(t, mux, http.MethodPost, "/matches/m-sur/surrender",
		map[string]any{"player": "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "bob", body["winner"])

	var stored game.Match
	require.NoError(t, mem.GetJSON(context.Background(), store.MatchKey("m-sur"), &stored))
	require.NotNil(t, stored.Result)
	assert.Equal(t, game.StatusFinished, stored.Status)
	assert.Equal(t, 0, stored.Result.FinalScores["alice"])
	assert.Equal(t, 0, stored.Result.FinalScores["bob"])

	collab.waitFor(t, 3)
}

func TestReactEndpoint(t *testing.T) {
	_, mux, mem, _ := setupServer(t)

	m := fixedMatch("m-react", "alice", "bob",
		ids(1, 12), ids(13, 14),
		ids(2, 3), ids(30, 31))
	storeMatch(t, mem, m)

	w := doJSON(t, mux, http.MethodPost, "/matches/m-react/react",
		map[string]any{"player": "alice", "reaction": "nice escoba"})
	require.Equal(t, http.StatusOK, w.Code)

	var stored game.Match
	require.NoError(t, mem.GetJSON(context.Background(), store.MatchKey("m-react"), &stored))
	require.NotNil(t, stored.LastReaction)
	assert.Equal(t, "alice", stored.LastReaction.Player)
	assert.Equal(t, "nice escoba", stored.LastReaction.Content)

	w = doJSON(t, mux, http.MethodPost, "/matches/m-react/react",
		map[string]any{"player": "mallory", "reaction": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInviteLifecycle(t *testing.T) {
	_, mux, _, _ := setupServer(t)

	w := doJSON(t, mux, http.MethodPost, "/invites",
		map[string]string{"player1": "alice", "player2": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)
	inviteID := decode(t, w)["match_id"].(string)

	// Only the challenged player may accept.
	w = doJSON(t, mux, http.MethodPost, "/invites/"+inviteID+"/accept",
		map[string]string{"player": "mallory"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, mux, http.MethodPost, "/invites/"+inviteID+"/accept",
		map[string]string{"player": "bob"})
	require.Equal(t, http.StatusOK, w.Code)
	newID := decode(t, w)["match_id"].(string)
	require.NotEmpty(t, newID)
	assert.NotEqual(t, inviteID, newID, "acceptance deals a brand-new match id")

	// The invite is gone; the new match is active.
	w = doJSON(t, mux, http.MethodGet, "/matches/"+inviteID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, mux, http.MethodGet, "/matches/"+newID+"?player=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, game.StatusActive, decode(t, w)["status"])
}

func TestInviteReject(t *testing.T) {
	_, mux, _, _ := setupServer(t)

	w := doJSON(t, mux, http.MethodPost, "/invites",
		map[string]string{"player1": "alice", "player2": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)
	inviteID := decode(t, w)["match_id"].(string)

	w = doJSON(t, mux, http.MethodPost, "/invites/"+inviteID+"/reject",
		map[string]string{"player": "mallory"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, mux, http.MethodPost, "/invites/"+inviteID+"/reject",
		map[string]string{"player": "bob"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, mux, http.MethodGet, "/matches/"+inviteID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInviteResponsesRequirePendingStatus(t *testing.T) {
	_, mux, mem, _ := setupServer(t)

	m := fixedMatch("m-live", "alice", "bob",
		ids(1, 12), ids(13, 14),
		ids(2, 3), ids(30, 31))
	storeMatch(t, mem, m)

	// Neither invite response may touch an active match, and a blank player
	// name never passes the participant check.
	w := doJSON(t, mux, http.MethodPost, "/invites/m-live/accept",
		map[string]string{"player": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, mux, http.MethodPost, "/invites/m-live/reject",
		map[string]string{"player": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, mux, http.MethodPost, "/invites/m-live/reject",
		map[string]string{"player": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, mux, http.MethodGet, "/matches/m-live", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, game.StatusActive, decode(t, w)["status"])
}

func TestPendingListing(t *testing.T) {
	_, mux, _, _ := setupServer(t)

	w := doJSON(t, mux, http.MethodPost, "/invites",
		map[string]string{"player1": "alice", "player2": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, mux, http.MethodPost, "/matches",
		map[string]string{"player1": "alice", "player2": "carol"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, mux, http.MethodGet, "/pending/bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	received := body["invites_received"].([]any)
	require.Len(t, received, 1)
	assert.Equal(t, "alice", received[0].(map[string]any)["challenger"])
	assert.Empty(t, body["active"].([]any))

	w = doJSON(t, mux, http.MethodGet, "/pending/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	sent := body["invites_sent"].([]any)
	require.Len(t, sent, 1)
	assert.Equal(t, "bob", sent[0].(map[string]any)["opponent"])
	active := body["active"].([]any)
	require.Len(t, active, 1)
	entry := active[0].(map[string]any)
	assert.Equal(t, "carol", entry["opponent"])
	assert.Equal(t, "alice", entry["turn"])
	assert.NotNil(t, entry["scores"])
}

func TestMatchmakingEndpoints(t *testing.T) {
	_, mux, _, _ := setupServer(t)

	w := doJSON(t, mux, http.MethodPost, "/matchmaking/join", map[string]string{"player": "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "waiting", decode(t, w)["status"])

	w = doJSON(t, mux, http.MethodPost, "/matchmaking/join", map[string]string{"player": "bob"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "matched", body["status"])
	assert.Equal(t, "alice", body["opponent"])
	matchID := body["match_id"].(string)
	require.NotEmpty(t, matchID)

	// The waiting side learns its pairing by polling.
	w = doJSON(t, mux, http.MethodGet, "/matchmaking/status/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "matched", body["status"])
	assert.Equal(t, matchID, body["match_id"])

	// The paired match is playable.
	w = doJSON(t, mux, http.MethodGet, "/matches/"+matchID+"?player=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode(t, w)["turn"])

	w = doJSON(t, mux, http.MethodPost, "/matchmaking/leave", map[string]string{"player": "carol"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCardCatalogEndpoints(t *testing.T) {
	_, mux, _, _ := setupServer(t)

	w := doJSON(t, mux, http.MethodGet, "/cards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var catalog []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catalog))
	assert.Len(t, catalog, 40)

	w = doJSON(t, mux, http.MethodGet, "/cards/7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7 de Oros", decode(t, w)["name"])

	w = doJSON(t, mux, http.MethodGet, "/cards/41", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, mux, http.MethodGet, "/cards/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
