// internal/store/memory.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process Store with the same expiry and lock semantics as
// the Redis implementation. It backs tests and local single-binary runs.
type Memory struct {
	mu     sync.Mutex
	values map[string]memoryEntry
	lists  map[string][]string
	locks  map[string]memoryEntry
}

// NewMemory builds an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]memoryEntry),
		lists:  make(map[string][]string),
		locks:  make(map[string]memoryEntry),
	}
}

func (m *Memory) get(key string) (string, bool) {
	entry, ok := m.values[key]
	if !ok || entry.expired(time.Now()) {
		delete(m.values, key)
		return "", false
	}
	return entry.value, true
}

func (m *Memory) set(key, value string, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.values[key] = entry
}

func (m *Memory) GetJSON(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.get(key)
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (m *Memory) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key, string(data), ttl)
	return nil
}

func (m *Memory) GetValue(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.get(key)
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (m *Memory) SetValue(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key, value, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
		delete(m.lists, key)
	}
	return nil
}

func (m *Memory) ScanKeys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var keys []string
	for key, entry := range m.values {
		if entry.expired(now) {
			delete(m.values, key)
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *Memory) QueuePopHead(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	if len(list) == 0 {
		return "", ErrNotFound
	}
	head := list[0]
	m.lists[key] = list[1:]
	return head, nil
}

func (m *Memory) QueuePushTail(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append(m.lists[key], value)
	return nil
}

func (m *Memory) QueueRemove(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	kept := list[:0]
	for _, v := range list {
		if v != value {
			kept = append(kept, v)
		}
	}
	m.lists[key] = kept
	return nil
}

func (m *Memory) QueueList(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

func (m *Memory) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(ttl)
	for {
		m.mu.Lock()
		entry, held := m.locks[key]
		if !held || entry.expired(time.Now()) {
			m.locks[key] = memoryEntry{value: token, expiresAt: time.Now().Add(ttl)}
			m.mu.Unlock()
			return token, nil
		}
		m.mu.Unlock()

		if time.Now().After(deadline) {
			return "", ErrLockHeld
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (m *Memory) ReleaseLock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, held := m.locks[key]; held && entry.value == token {
		delete(m.locks, key)
	}
	return nil
}

func (m *Memory) Ping(_ context.Context) error {
	return nil
}
