package carousel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultIdleTimeout is how long an unused browser is kept before it is
// considered stale and replaced on the next Acquire.
const DefaultIdleTimeout = 5 * time.Minute

// BrowserManager owns at most one live browser for the whole process.
// It launches lazily, shares the browser across concurrent batches and
// replaces it when it disconnects or sits idle past IdleTimeout.
//
// Launches are serialized: concurrent Acquire calls never start two browsers
// for the same slot. A replaced browser is closed once its last Lease is
// released, so in-flight batches finish on the browser they started with.
type BrowserManager struct {
	launcher    Launcher
	idleTimeout time.Duration
	logger      *zap.Logger
	recorder    Recorder
	now         func() time.Time

	mu       sync.Mutex
	current  *browserHandle
	launches int
	closed   bool
	reaper   *time.Timer
}

// browserHandle tracks one launched browser and its outstanding leases.
type browserHandle struct {
	id       string
	browser  Browser
	active   int
	lastUsed time.Time
	retired  bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithIdleTimeout sets how long an unused browser survives.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithIdleTimeout(d time.Duration) ManagerOption {
	if d <= 0 {
		panic("carousel: WithIdleTimeout duration must be positive")
	}
	return func(m *BrowserManager) {
		m.idleTimeout = d
	}
}

// WithManagerLogger sets the logger used for lifecycle events.
func WithManagerLogger(l *zap.Logger) ManagerOption {
	return func(m *BrowserManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithManagerRecorder sets the telemetry sink for launches and tabs.
func WithManagerRecorder(r Recorder) ManagerOption {
	return func(m *BrowserManager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// withClock replaces time.Now. Used by tests to move past the idle window.
func withClock(now func() time.Time) ManagerOption {
	return func(m *BrowserManager) {
		m.now = now
	}
}

// NewBrowserManager creates a manager. No browser is started until Acquire.
func NewBrowserManager(l Launcher, opts ...ManagerOption) *BrowserManager {
	m := &BrowserManager{
		launcher:    l,
		idleTimeout: DefaultIdleTimeout,
		logger:      zap.NewNop(),
		recorder:    nopRecorder{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lease is a caller's claim on the shared browser. Release must be called
// exactly once when the batch is done; further calls are no-ops.
type Lease struct {
	m    *BrowserManager
	h    *browserHandle
	once sync.Once
}

// Browser returns the leased browser.
func (l *Lease) Browser() Browser { return l.h.browser }

// ID identifies the underlying browser launch in logs.
func (l *Lease) ID() string { return l.h.id }

// Release returns the lease.
func (l *Lease) Release() {
	l.once.Do(func() { l.m.release(l.h) })
}

// Acquire returns a lease on a usable browser, launching one when there is
// none, the current one no longer answers, or it has been idle too long.
// Launch failures are returned as *BrowserLaunchError and are not retried.
func (m *BrowserManager) Acquire(ctx context.Context) (*Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stale []*browserHandle
	if h := m.current; h != nil {
		switch {
		case h.active == 0 && m.now().Sub(h.lastUsed) > m.idleTimeout:
			m.logger.Info("browser idle, replacing",
				zap.String("browser_id", h.id),
				zap.Duration("idle", m.now().Sub(h.lastUsed)))
			stale = append(stale, m.retireLocked(h)...)
		case !h.browser.Connected(ctx):
			m.logger.Warn("browser disconnected, replacing", zap.String("browser_id", h.id))
			stale = append(stale, m.retireLocked(h)...)
		}
	}
	// Close outside the launch path but still under the lock; retired
	// handles with no leases are never visible to anyone else.
	closeHandles(m.logger, stale)

	if m.current == nil {
		h, err := m.launchLocked(ctx)
		if err != nil {
			return nil, err
		}
		m.current = h
	}

	h := m.current
	h.active++
	h.lastUsed = m.now()
	m.stopReaperLocked()
	return &Lease{m: m, h: h}, nil
}

func (m *BrowserManager) launchLocked(ctx context.Context) (*browserHandle, error) {
	engine := m.launcher.Name()
	start := time.Now()

	b, err := m.launcher.Launch(ctx)
	m.recorder.BrowserLaunched(engine, err)
	if err != nil {
		m.logger.Error("browser launch failed", zap.String("engine", engine), zap.Error(err))
		return nil, &BrowserLaunchError{Engine: engine, Err: err}
	}

	m.launches++
	h := &browserHandle{id: uuid.NewString(), browser: b, lastUsed: m.now()}
	m.logger.Info("browser launched",
		zap.String("engine", engine),
		zap.String("browser_id", h.id),
		zap.Int("launches", m.launches),
		zap.Duration("took", time.Since(start)))
	return h, nil
}

// retireLocked detaches h from the slot and returns it if it can be closed now.
func (m *BrowserManager) retireLocked(h *browserHandle) []*browserHandle {
	if m.current == h {
		m.current = nil
	}
	h.retired = true
	if h.active == 0 {
		return []*browserHandle{h}
	}
	return nil
}

func (m *BrowserManager) release(h *browserHandle) {
	m.mu.Lock()
	h.active--
	h.lastUsed = m.now()

	var stale []*browserHandle
	switch {
	case h.retired && h.active == 0:
		stale = append(stale, h)
	case h == m.current && h.active == 0 && !m.closed:
		m.scheduleReaperLocked()
	}
	m.mu.Unlock()

	closeHandles(m.logger, stale)
}

// scheduleReaperLocked arms a timer that closes the browser once the idle
// window has passed without a new lease, freeing its memory early.
func (m *BrowserManager) scheduleReaperLocked() {
	m.stopReaperLocked()
	m.reaper = time.AfterFunc(m.idleTimeout, m.reap)
}

func (m *BrowserManager) stopReaperLocked() {
	if m.reaper != nil {
		m.reaper.Stop()
		m.reaper = nil
	}
}

func (m *BrowserManager) reap() {
	m.mu.Lock()
	var stale []*browserHandle
	if h := m.current; h != nil && h.active == 0 && m.now().Sub(h.lastUsed) >= m.idleTimeout {
		m.logger.Info("closing idle browser", zap.String("browser_id", h.id))
		stale = m.retireLocked(h)
	}
	m.mu.Unlock()

	closeHandles(m.logger, stale)
}

// Close shuts the browser down. Outstanding leases keep working until they
// are released, at which point their browser is closed. Acquire fails with
// ErrManagerClosed afterwards. Close is idempotent.
func (m *BrowserManager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.stopReaperLocked()

	var stale []*browserHandle
	if m.current != nil {
		stale = m.retireLocked(m.current)
	}
	m.mu.Unlock()

	var errs []error
	for _, h := range stale {
		if err := h.browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ManagerStats is a point-in-time view of the manager.
type ManagerStats struct {
	Launches  int
	BrowserID string
	Active    int
	LastUsed  time.Time
	Closed    bool
}

// Stats reports launch count and the current browser, if any.
func (m *BrowserManager) Stats() ManagerStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := ManagerStats{Launches: m.launches, Closed: m.closed}
	if h := m.current; h != nil {
		s.BrowserID = h.id
		s.Active = h.active
		s.LastUsed = h.lastUsed
	}
	return s
}

// Healthy reports whether a browser is running and answering. It never
// launches one.
func (m *BrowserManager) Healthy(ctx context.Context) bool {
	m.mu.Lock()
	h := m.current
	m.mu.Unlock()
	return h != nil && h.browser.Connected(ctx)
}

func closeHandles(logger *zap.Logger, handles []*browserHandle) {
	for _, h := range handles {
		if err := h.browser.Close(); err != nil {
			logger.Warn("closing browser", zap.String("browser_id", h.id), zap.Error(err))
			continue
		}
		logger.Debug("browser closed", zap.String("browser_id", h.id))
	}
}
