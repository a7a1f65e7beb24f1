// Package lock serialises work per key across requests and, with Redis, across API instances.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Locker hands out short-lived exclusive leases keyed by string.
type Locker interface {
	// TryAcquire attempts to take the lease without blocking. A false result means another
	// holder owns it. The returned release func is safe to call more than once.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// Memory is a single-process Locker. Leases expire after their TTL even when never released.
type Memory struct {
	mu     sync.Mutex
	leases map[string]memoryLease
	now    func() time.Time
}

type memoryLease struct {
	token   string
	expires time.Time
}

// NewMemory builds an in-process Locker.
func NewMemory() *Memory {
	return &Memory{leases: make(map[string]memoryLease), now: time.Now}
}

func (m *Memory) TryAcquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if lease, held := m.leases[key]; held && (lease.expires.IsZero() || now.Before(lease.expires)) {
		return nil, false, nil
	}

	token := newToken()
	lease := memoryLease{token: token}
	if ttl > 0 {
		lease.expires = now.Add(ttl)
	}
	m.leases[key] = lease

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			// a lease that expired and was re-taken belongs to someone else
			if current, ok := m.leases[key]; ok && current.token == token {
				delete(m.leases, key)
			}
		})
	}
	return release, true, nil
}

func newToken() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
