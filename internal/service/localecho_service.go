package service

import (
	"sync"
	"sync/atomic"
	"time"

	"go-reservation-board/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultEchoTTL bounds how long an outbound operation suppresses its
	// own broadcast echo.
	DefaultEchoTTL = 15 * time.Second

	// Interval for sweeping expired echo keys and stale contexts
	echoSweepInterval = 30 * time.Second

	// How long a modification context is retained for late broadcasts
	contextRetention = 10 * time.Minute
)

// =============================================================================
// Types
// =============================================================================

// LocalEchoManager suppresses duplicate reactions to this client's own
// writes. It keeps three pieces of shared state:
//
//   - TTL-bound echo keys, marked BEFORE the network call so a broadcast
//     that arrives before the request's own response is still recognized
//   - per-reservation modification contexts for notification correlation
//   - a suppression depth counter so programmatic UI mutations do not
//     re-enter the change pipeline
//
// All operations are advisory: internal failures are logged and swallowed,
// never propagated to the correctness-critical path.
type LocalEchoManager struct {
	log *logrus.Logger
	now func() time.Time

	mu       sync.Mutex
	keys     map[string]time.Time
	contexts map[string]storedContext

	depth         atomic.Int64
	suppressUntil atomic.Int64 // unix millis

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type storedContext struct {
	ctx      entity.ModificationContext
	storedAt time.Time
}

// =============================================================================
// Constructor
// =============================================================================

// NewLocalEchoManager creates the manager and starts the background sweep
// goroutine. Call Stop() during graceful shutdown.
func NewLocalEchoManager(log *logrus.Logger) *LocalEchoManager {
	m := &LocalEchoManager{
		log:      log,
		now:      time.Now,
		keys:     make(map[string]time.Time),
		contexts: make(map[string]storedContext),
		stopChan: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.sweepLoop()

	return m
}

// Stop shuts the sweep goroutine down. Safe to call multiple times.
func (m *LocalEchoManager) Stop() {
	if m.stopped.CompareAndSwap(false, true) {
		close(m.stopChan)
		m.wg.Wait()
	}
}

// =============================================================================
// Echo keys
// =============================================================================

// MarkLocalEcho registers key with the given TTL (DefaultEchoTTL when
// ttl <= 0). Must be called before issuing the network request whenever a
// broadcast could outrun the request's own response.
func (m *LocalEchoManager) MarkLocalEcho(key string, ttl time.Duration) {
	if key == "" {
		return
	}
	if ttl <= 0 {
		ttl = DefaultEchoTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = m.now().Add(ttl)
}

// MarkAll registers every key with the same TTL.
func (m *LocalEchoManager) MarkAll(keys []string, ttl time.Duration) {
	for _, key := range keys {
		m.MarkLocalEcho(key, ttl)
	}
}

// IsLocalEcho reports whether key is registered and unexpired. Expired
// keys are dropped on lookup.
func (m *LocalEchoManager) IsLocalEcho(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.keys[key]
	if !ok {
		return false
	}
	if !m.now().Before(expiry) {
		delete(m.keys, key)
		return false
	}
	return true
}

// AnyLocalEcho reports whether any of the keys is an unexpired echo.
func (m *LocalEchoManager) AnyLocalEcho(keys []string) bool {
	for _, key := range keys {
		if m.IsLocalEcho(key) {
			return true
		}
	}
	return false
}

// =============================================================================
// Modification contexts
// =============================================================================

// StoreModificationContext retains before/after values for a reservation
// so a later, partially-identifying broadcast can still be correlated to
// a readable notification.
func (m *LocalEchoManager) StoreModificationContext(eventID string, ctx entity.ModificationContext) {
	if eventID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts[eventID] = storedContext{ctx: ctx, storedAt: m.now()}
}

// ModificationContextFor returns the retained context for eventID.
func (m *LocalEchoManager) ModificationContextFor(eventID string) (entity.ModificationContext, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.contexts[eventID]
	return stored.ctx, ok
}

// =============================================================================
// Suppression scope
// =============================================================================

// WithSuppressedEventChange runs fn with the suppression depth held. The
// decrement is deferred so a panicking callback still releases exactly
// one level.
func (m *LocalEchoManager) WithSuppressedEventChange(fn func()) {
	m.depth.Add(1)
	defer m.depth.Add(-1)
	fn()
}

// Suppressed reports whether a programmatic mutation scope is active;
// change handlers must no-op while it is.
func (m *LocalEchoManager) Suppressed() bool {
	return m.depth.Load() > 0
}

// Depth exposes the raw counter for tests and diagnostics.
func (m *LocalEchoManager) Depth() int64 {
	return m.depth.Load()
}

// SuppressUntil sets a global deadline before which new gestures are
// rejected outright.
func (m *LocalEchoManager) SuppressUntil(deadline time.Time) {
	m.suppressUntil.Store(deadline.UnixMilli())
}

// SuppressionDeadlineActive reports whether the global deadline is still
// in the future.
func (m *LocalEchoManager) SuppressionDeadlineActive() bool {
	return m.now().UnixMilli() < m.suppressUntil.Load()
}

// =============================================================================
// Private helpers
// =============================================================================

func (m *LocalEchoManager) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(echoSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *LocalEchoManager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var expired int
	for key, expiry := range m.keys {
		if !now.Before(expiry) {
			delete(m.keys, key)
			expired++
		}
	}
	for id, stored := range m.contexts {
		if now.Sub(stored.storedAt) > contextRetention {
			delete(m.contexts, id)
		}
	}

	if expired > 0 {
		m.log.Debugf("Swept %d expired echo keys", expired)
	}
}
