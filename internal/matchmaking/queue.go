// internal/matchmaking/queue.go

// Package matchmaking pairs anonymous players into new matches through a
// FIFO waiting list held in the state store. A joiner either takes the head
// of the list as an opponent or becomes the new tail; a short-lived reverse
// lookup lets the waiting side poll for the match it was paired into.
package matchmaking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Micheles111/Final-ASE-Project/internal/store"
)

// Queue status values reported to clients.
const (
	StatusMatched = "matched"
	StatusWaiting = "waiting"
	StatusNone    = "none"
)

// NewMatchFunc creates and persists a fresh active match between the two
// players and returns its id. Injected so the queue stays decoupled from
// the lifecycle wiring; player1 gets the first turn.
type NewMatchFunc func(ctx context.Context, player1, player2 string) (string, error)

// Queue is the FIFO pairing service.
type Queue struct {
	store    store.Store
	newMatch NewMatchFunc
}

// Result reports the outcome of a join or a status poll.
type Result struct {
	Status   string `json:"status"`
	MatchID  string `json:"match_id,omitempty"`
	Opponent string `json:"opponent,omitempty"`
}

// New builds a queue over the given store.
func New(s store.Store, newMatch NewMatchFunc) *Queue {
	return &Queue{store: s, newMatch: newMatch}
}

// Join pops the head of the waiting list and pairs it with the joiner. When
// the list is empty, or the head is the joiner themselves (self-matching
// must never happen), the joiner is re-queued at the tail instead: any
// prior occurrence is removed first so no name is ever duplicated, and a
// stale reverse lookup is cleared.
func (q *Queue) Join(ctx context.Context, player string) (*Result, error) {
	head, err := q.store.QueuePopHead(ctx, store.MatchmakingQueueKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("matchmaking pop: %w", err)
	}

	if head != "" && head != player {
		matchID, err := q.newMatch(ctx, head, player)
		if err != nil {
			return nil, fmt.Errorf("matchmaking pair: %w", err)
		}
		if err := q.store.SetValue(ctx, store.MatchmakingUserKey(head), matchID, store.MatchmakingUserTTL); err != nil {
			return nil, err
		}
		if err := q.store.SetValue(ctx, store.MatchmakingUserKey(player), matchID, store.MatchmakingUserTTL); err != nil {
			return nil, err
		}
		return &Result{Status: StatusMatched, MatchID: matchID, Opponent: head}, nil
	}

	if err := q.store.QueueRemove(ctx, store.MatchmakingQueueKey, player); err != nil {
		return nil, err
	}
	if err := q.store.QueuePushTail(ctx, store.MatchmakingQueueKey, player); err != nil {
		return nil, err
	}
	if err := q.store.Delete(ctx, store.MatchmakingUserKey(player)); err != nil {
		return nil, err
	}
	return &Result{Status: StatusWaiting}, nil
}

// Status reports whether the player has been paired (reverse lookup), is
// still waiting in the list, or is unknown to the queue.
func (q *Queue) Status(ctx context.Context, player string) (*Result, error) {
	matchID, err := q.store.GetValue(ctx, store.MatchmakingUserKey(player))
	if err == nil {
		return &Result{Status: StatusMatched, MatchID: matchID}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	waiting, err := q.store.QueueList(ctx, store.MatchmakingQueueKey)
	if err != nil {
		return nil, err
	}
	for _, name := range waiting {
		if name == player {
			return &Result{Status: StatusWaiting}, nil
		}
	}
	return &Result{Status: StatusNone}, nil
}

// Leave removes every occurrence of the player from the waiting list. It is
// idempotent: leaving while not queued is not an error.
func (q *Queue) Leave(ctx context.Context, player string) error {
	return q.store.QueueRemove(ctx, store.MatchmakingQueueKey, player)
}
