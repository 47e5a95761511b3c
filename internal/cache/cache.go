// Package cache provides a generic in-memory LRU cache with TTL expiry,
// used by the HTTP layer to serve repeat summary reads without hitting the
// store.
package cache

import "time"

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically sweeps expired entries out of registered caches.
type Manager struct {
	caches []Cleaner
	quit   chan struct{}
	swept  chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		quit:  make(chan struct{}),
		swept: make(chan struct{}),
	}
}

// Register adds a cache to the sweep set. Not safe to call after
// StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup begins sweeping all registered caches on the given interval.
func (m *Manager) StartCleanup(interval time.Duration) {
	go func() {
		defer close(m.swept)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, c := range m.caches {
					c.CleanExpired()
				}
			case <-m.quit:
				return
			}
		}
	}()
}

// Stop halts the sweep goroutine and waits for it to exit.
func (m *Manager) Stop() {
	close(m.quit)
	<-m.swept
}
