// internal/store/store.go

// Package store persists match, invite and matchmaking state as expiring
// key/value entries. Redis is the authoritative backend; the in-memory
// implementation mirrors its semantics for tests and single-binary runs.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("store: key not found")

// ErrLockHeld is returned when a lock could not be acquired in time.
var ErrLockHeld = errors.New("store: lock held")

// Key layout and retention windows. Match documents live two hours past
// their last write, pending invites a full day, and matchmaking reverse
// lookups only long enough for a poll.
const (
	MatchKeyPrefix      = "match:"
	MatchmakingQueueKey = "matchmaking_queue"

	ActiveMatchTTL     = 2 * time.Hour
	PendingInviteTTL   = 24 * time.Hour
	MatchmakingUserTTL = 60 * time.Second
	MatchLockTTL       = 2 * time.Second
)

// MatchKey returns the store key for a match or invite document.
func MatchKey(id string) string {
	return MatchKeyPrefix + id
}

// MatchLockKey returns the advisory lock key guarding a match document.
func MatchLockKey(id string) string {
	return "lock:" + MatchKeyPrefix + id
}

// MatchmakingUserKey returns the reverse-lookup key mapping a queued player
// to the match they were paired into.
func MatchmakingUserKey(player string) string {
	return "matchmaking:user:" + player
}

// Store is the persistence boundary for the match engine. Individual calls
// are atomic; composite read-modify-write cycles are serialized by the
// caller through AcquireLock/ReleaseLock.
type Store interface {
	// GetJSON unmarshals the value at key into dest, or returns ErrNotFound.
	GetJSON(ctx context.Context, key string, dest any) error
	// SetJSON marshals value and writes it at key with the given TTL,
	// resetting any existing expiry. A zero TTL means no expiry.
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error

	// GetValue and SetValue handle plain string values (matchmaking reverse
	// lookups store a bare match id, not a JSON document).
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error
	// ScanKeys returns all live keys matching a glob pattern.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// Ordered-list operations backing the matchmaking queue.
	QueuePopHead(ctx context.Context, key string) (string, error)
	QueuePushTail(ctx context.Context, key, value string) error
	// QueueRemove removes every occurrence of value from the list.
	QueueRemove(ctx context.Context, key, value string) error
	QueueList(ctx context.Context, key string) ([]string, error)

	// AcquireLock takes the advisory lock at key, waiting briefly if it is
	// held. The returned token must be passed back to ReleaseLock so a
	// late release cannot drop a lock taken by someone else.
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, key, token string) error

	// Ping reports backend reachability for the health endpoint.
	Ping(ctx context.Context) error
}
