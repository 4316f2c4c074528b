package pattern

import (
	"log/slog"
	"sync"
	"time"
)

// Store holds the current Pattern. Many readers may take snapshots concurrently;
// Set briefly excludes them while swapping the pointer.
type Store struct {
	mu      sync.RWMutex
	current *Pattern
	version uint64
	timeout time.Duration
}

// NewStore returns a store holding the default pattern.
func NewStore() *Store {
	p := MustCompile(DefaultExpr)
	p.version = 1
	return &Store{current: p, version: 1, timeout: DefaultMatchTimeout}
}

var (
	defaultStore     *Store
	defaultStoreOnce sync.Once
)

// Default returns the process-wide store, creating it on first use.
func Default() *Store {
	defaultStoreOnce.Do(func() {
		defaultStore = NewStore()
	})
	return defaultStore
}

// Set compiles expr and makes it the current pattern.
// On error the store keeps its previous pattern.
func (s *Store) Set(expr string) error {
	return s.install(expr, s.MatchTimeout())
}

// SetMatchTimeout recompiles the current pattern with a new per-match timeout, which later
// Set calls also use. A timeout <= 0 disables it.
func (s *Store) SetMatchTimeout(timeout time.Duration) error {
	return s.install(s.Snapshot().String(), timeout)
}

// MatchTimeout returns the timeout patterns are compiled with.
func (s *Store) MatchTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeout
}

func (s *Store) install(expr string, timeout time.Duration) error {
	// compile outside the lock; only the swap is exclusive
	p, err := CompileTimeout(expr, timeout)
	if err != nil {
		slog.Debug("Rejected token pattern", "expr", expr, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	p.version = s.version
	s.current = p
	s.timeout = timeout

	slog.Debug("Token pattern updated", "expr", expr, "version", p.version, "matchTimeout", timeout)
	return nil
}

// Reset restores the default pattern.
func (s *Store) Reset() {
	_ = s.Set(DefaultExpr)
}

// Snapshot returns the current pattern. The returned value is immutable, so it stays valid
// for a whole matching pass even if Set is called meanwhile.
func (s *Store) Snapshot() *Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Version returns the number of successful updates, starting at 1 for the default pattern.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
