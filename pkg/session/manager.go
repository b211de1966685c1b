package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/disconnected"
	"github.com/aretw0/disconnected/internal/logging"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Factory builds a fresh game for a new session.
type Factory func(ctx context.Context) (*disconnected.Game, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the live games and serializes access per session.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	factory Factory

	mu    sync.Mutex            // Global lock for the lock map
	locks map[string]*lockEntry // Map of active locks

	gamesMu sync.RWMutex
	games   map[string]*disconnected.Game

	locker   ports.DistributedLocker // Optional distributed locker
	lockTTL  time.Duration
	logger   *slog.Logger
	newID    func() string
	onChange func(active int)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator replaces the random session id source.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// WithOnChange is called with the number of live sessions after every
// create or delete.
func WithOnChange(fn func(active int)) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// NewManager creates a Session Manager that builds games with factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		locks:   make(map[string]*lockEntry),
		games:   make(map[string]*disconnected.Game),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create starts a new game and registers it under a fresh id.
func (m *Manager) Create(ctx context.Context) (string, *disconnected.Game, error) {
	g, err := m.factory(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create game: %w", err)
	}
	if err := g.Start(ctx); err != nil {
		_ = g.Close()
		return "", nil, fmt.Errorf("failed to start game: %w", err)
	}

	id := m.newID()
	m.gamesMu.Lock()
	if _, taken := m.games[id]; taken {
		m.gamesMu.Unlock()
		_ = g.Close()
		return "", nil, fmt.Errorf("session id %q already in use", id)
	}
	m.games[id] = g
	n := len(m.games)
	m.gamesMu.Unlock()

	m.logger.Info("session created", "session_id", id)
	m.changed(n)
	return id, g, nil
}

// Get returns the live game of sessionID without locking it.
// Returns domain.ErrSessionNotFound for unknown ids.
func (m *Manager) Get(sessionID string) (*disconnected.Game, error) {
	m.gamesMu.RLock()
	defer m.gamesMu.RUnlock()
	g, ok := m.games[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return g, nil
}

// Do runs fn on the game of sessionID while holding the session lock.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *disconnected.Game) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		g, err := m.Get(sessionID)
		if err != nil {
			return err
		}
		return fn(ctx, g)
	})
}

// Delete closes and forgets the game of sessionID.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.gamesMu.Lock()
		g, ok := m.games[sessionID]
		delete(m.games, sessionID)
		n := len(m.games)
		m.gamesMu.Unlock()
		if !ok {
			return domain.ErrSessionNotFound
		}

		m.logger.Info("session deleted", "session_id", sessionID)
		m.changed(n)
		return g.Close()
	})
}

// List returns the live session ids, sorted.
func (m *Manager) List() []string {
	m.gamesMu.RLock()
	defer m.gamesMu.RUnlock()
	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close closes every live game.
func (m *Manager) Close() error {
	m.gamesMu.Lock()
	games := m.games
	m.games = make(map[string]*disconnected.Game)
	m.gamesMu.Unlock()

	for _, g := range games {
		_ = g.Close()
	}
	m.changed(0)
	return nil
}

func (m *Manager) changed(n int) {
	if m.onChange != nil {
		m.onChange(n)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
