package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vinodismyname/mcpviz/config"
	"github.com/vinodismyname/mcpviz/internal/dataset"
)

// ErrSessionNotFound indicates an unknown, closed or expired session ID.
var ErrSessionNotFound = errors.New("session: not found")

// ErrFileTooLarge indicates an input file above the configured size limit.
var ErrFileTooLarge = errors.New("session: file too large")

// Session is one cached State with its idle-expiry bookkeeping.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
	state     *State
	// mu guards state, expMu guards ExpiresAt.
	mu    sync.RWMutex
	expMu sync.Mutex
}

// Gate coordinates capacity for open sessions (backed by runtime.Controller).
type Gate interface {
	AcquireSession(ctx context.Context) error
	ReleaseSession()
}

// PathValidator abstracts filesystem path validation. Implementations return
// the canonical absolute path when allowed.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

// Manager is the in-memory session cache with idle TTL eviction.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	ttl          time.Duration
	cleanupEvery time.Duration
	maxFileBytes int64
	clock        func() time.Time
	gate         Gate
	validator    PathValidator
	stopCh       chan struct{}
	stopOnce     sync.Once
	cleanupWG    sync.WaitGroup
	logger       zerolog.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithValidator checks every loaded path against v.
func WithValidator(v PathValidator) Option { return func(m *Manager) { m.validator = v } }

// WithMaxFileBytes caps the size of loaded files; n <= 0 disables the check.
func WithMaxFileBytes(n int64) Option { return func(m *Manager) { m.maxFileBytes = n } }

// WithLogger sets the logger used by background eviction.
func WithLogger(l zerolog.Logger) Option { return func(m *Manager) { m.logger = l } }

// NewManager constructs a session manager. Pass ttl or cleanupEvery <= 0 to
// use the config defaults. Gate may be nil; clock defaults to time.Now.
func NewManager(ttl, cleanupEvery time.Duration, gate Gate, clock func() time.Time, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = config.DefaultSessionIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultSessionCleanupPeriod
	}
	if clock == nil {
		clock = time.Now
	}
	m := &Manager{
		sessions:     make(map[string]*Session),
		ttl:          ttl,
		cleanupEvery: cleanupEvery,
		maxFileBytes: config.DefaultMaxFileBytes,
		clock:        clock,
		gate:         gate,
		stopCh:       make(chan struct{}),
		logger:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start launches periodic eviction of expired sessions.
func (m *Manager) Start() {
	m.cleanupWG.Add(1)
	ticker := time.NewTicker(m.cleanupEvery)
	go func() {
		defer m.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				if n := m.EvictExpired(); n > 0 {
					m.logger.Info().Int("evicted", n).Msg("expired sessions evicted")
				}
			}
		}
	}()
}

// Close stops background cleanup and drops every session.
func (m *Manager) Close(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopCh) })
	done := make(chan struct{})
	go func() { m.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.mu.Lock()
		s.state = nil
		s.mu.Unlock()
		delete(m.sessions, id)
		m.release()
	}
	return nil
}

// Create registers an empty session and returns its ID.
func (m *Manager) Create(ctx context.Context) (string, error) {
	if err := m.acquire(ctx); err != nil {
		return "", err
	}
	now := m.clock()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		state:     &State{},
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	zerolog.Ctx(ctx).Debug().Str("session", s.ID).Msg("session opened")
	return s.ID, nil
}

// Open parses the file at path into a new session and returns its ID.
func (m *Manager) Open(ctx context.Context, path string) (string, error) {
	source, format, ds, err := m.read(path)
	if err != nil {
		return "", err
	}
	id, err := m.Create(ctx)
	if err != nil {
		return "", err
	}
	err = m.WithWrite(id, func(st *State) error {
		st.Load(source, format, ds, m.clock())
		return nil
	})
	return id, err
}

// Load replaces the dataset of an existing session. A file that fails to
// parse leaves the session exactly as it was.
func (m *Manager) Load(ctx context.Context, id, path string) error {
	if _, ok := m.Get(id); !ok {
		return ErrSessionNotFound
	}
	source, format, ds, err := m.read(path)
	if err != nil {
		return err
	}
	return m.WithWrite(id, func(st *State) error {
		st.Load(source, format, ds, m.clock())
		zerolog.Ctx(ctx).Info().Str("session", id).Str("source", source).Int("rows", ds.Len()).Msg("dataset loaded")
		return nil
	})
}

// read validates, size-checks and parses a file without touching any session.
func (m *Manager) read(path string) (string, dataset.Format, dataset.Dataset, error) {
	if m.validator != nil {
		canonical, err := m.validator.ValidateOpenPath(path)
		if err != nil {
			return "", "", dataset.Dataset{}, err
		}
		path = canonical
	}
	if m.maxFileBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return "", "", dataset.Dataset{}, fmt.Errorf("session: stat %s: %w", path, err)
		}
		if info.Size() > m.maxFileBytes {
			return "", "", dataset.Dataset{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, info.Size(), m.maxFileBytes)
		}
	}
	ds, err := dataset.ParseFile(path)
	if err != nil {
		return "", "", dataset.Dataset{}, err
	}
	return filepath.Base(path), dataset.FormatFromName(path), ds, nil
}

// Get returns the session when present and refreshes its TTL.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := m.clock()
	s.expMu.Lock()
	s.ExpiresAt = now.Add(m.ttl)
	s.expMu.Unlock()
	return s, true
}

// WithRead runs fn under a shared lock on the session state.
func (m *Manager) WithRead(id string, fn func(*State) error) error {
	s, ok := m.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return ErrSessionNotFound
	}
	return fn(s.state)
}

// WithWrite runs fn under an exclusive lock on the session state.
func (m *Manager) WithWrite(id string, fn func(*State) error) error {
	s, ok := m.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ErrSessionNotFound
	}
	return fn(s.state)
}

// CloseSession removes a session and releases its capacity.
func (m *Manager) CloseSession(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	// wait out readers and writers
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()
	m.release()
	zerolog.Ctx(ctx).Debug().Str("session", id).Msg("session closed")
	return nil
}

// EvictExpired drops sessions idle past their TTL and reports how many.
func (m *Manager) EvictExpired() int {
	now := m.clock()
	var expired []*Session

	m.mu.RLock()
	for _, s := range m.sessions {
		if s.Expired(now) {
			expired = append(expired, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range expired {
		s.mu.Lock()
		s.state = nil
		s.mu.Unlock()

		m.mu.Lock()
		_, present := m.sessions[s.ID]
		delete(m.sessions, s.ID)
		m.mu.Unlock()
		if present {
			m.release()
		}
	}
	return len(expired)
}

// Count returns the number of cached sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	return m.gate.AcquireSession(ctx)
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseSession()
}

// Expired reports whether the session has passed its idle TTL.
func (s *Session) Expired(now time.Time) bool {
	s.expMu.Lock()
	defer s.expMu.Unlock()
	return now.After(s.ExpiresAt)
}
