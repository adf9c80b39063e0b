// flash.go - One-shot notices keyed by session id.
package server

import (
	"context"
	"sync"
	"time"
)

// FlashStore holds at most one pending notice per session. Set overwrites
// any pending notice; Consume returns it and clears it.
type FlashStore interface {
	Set(ctx context.Context, sessionID, msg string) error
	Consume(ctx context.Context, sessionID string) (string, bool, error)
	Ping(ctx context.Context) error
}

type flashEntry struct {
	msg       string
	expiresAt time.Time
}

// MemoryFlashStore keeps notices in process memory. Notices never consumed
// are dropped once they expire.
type MemoryFlashStore struct {
	mu      sync.Mutex
	entries map[string]flashEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryFlashStore returns an empty store whose notices live for ttl.
func NewMemoryFlashStore(ttl time.Duration) *MemoryFlashStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryFlashStore{
		entries: make(map[string]flashEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryFlashStore) Set(_ context.Context, sessionID, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.entries[sessionID] = flashEntry{msg: msg, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryFlashStore) Consume(_ context.Context, sessionID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sessionID]
	if !ok {
		return "", false, nil
	}
	delete(m.entries, sessionID)
	if !m.now().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.msg, true, nil
}

func (m *MemoryFlashStore) Ping(context.Context) error { return nil }

// Len reports how many notices are pending, expired ones included.
func (m *MemoryFlashStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// sweepLocked drops expired notices so abandoned sessions do not accumulate.
func (m *MemoryFlashStore) sweepLocked() {
	now := m.now()
	for sid, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, sid)
		}
	}
}
