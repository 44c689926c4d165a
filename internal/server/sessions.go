package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mtanzim/mcptools/internal/instrumentation"
	"github.com/mtanzim/mcptools/internal/logging"
)

const (
	// DefaultSessionIdleTimeout evicts sessions that saw no request for this long.
	DefaultSessionIdleTimeout = 30 * time.Minute

	// DefaultSessionCleanupInterval is how often idle sessions are swept.
	DefaultSessionCleanupInterval = 10 * time.Minute
)

// ErrUnknownSession is returned for session IDs the registry never issued.
var ErrUnknownSession = errors.New("unknown session id")

// SessionRegistry issues and tracks streamable HTTP session IDs. It
// satisfies mcp-go's SessionIdManager.
type SessionRegistry struct {
	mu         sync.Mutex
	sessions   map[string]time.Time // id -> last access
	terminated map[string]time.Time // id -> termination time

	idleTimeout time.Duration
	now         func() time.Time
	logger      logging.Logger
	metrics     *instrumentation.Metrics

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSessionRegistry creates a registry. Call Start to sweep idle sessions
// in the background.
func NewSessionRegistry(idleTimeout time.Duration, logger logging.Logger, metrics *instrumentation.Metrics) *SessionRegistry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &SessionRegistry{
		sessions:    make(map[string]time.Time),
		terminated:  make(map[string]time.Time),
		idleTimeout: idleTimeout,
		now:         time.Now,
		logger:      logger,
		metrics:     metrics,
		stop:        make(chan struct{}),
	}
}

// Generate issues a new session ID.
func (r *SessionRegistry) Generate() string {
	id := uuid.NewString()

	r.mu.Lock()
	r.sessions[id] = r.now()
	r.mu.Unlock()

	r.metrics.IncrementActiveSessions(context.Background())
	r.logger.Debug("session started", "session_id", id)
	return id
}

// Validate refreshes the session's last access time. Terminated or evicted
// sessions report isTerminated; IDs never issued are an error.
func (r *SessionRegistry) Validate(sessionID string) (isTerminated bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.terminated[sessionID]; ok {
		return true, nil
	}
	last, ok := r.sessions[sessionID]
	if !ok {
		return false, ErrUnknownSession
	}

	now := r.now()
	if now.Sub(last) > r.idleTimeout {
		r.evictLocked(sessionID, now)
		return true, nil
	}
	r.sessions[sessionID] = now
	return false, nil
}

// Terminate ends a session at the client's request.
func (r *SessionRegistry) Terminate(sessionID string) (isNotAllowed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return false, nil
	}
	r.evictLocked(sessionID, r.now())
	r.logger.Debug("session terminated", "session_id", sessionID)
	return false, nil
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts idle sessions and forgets old tombstones. It returns the
// number of sessions evicted.
func (r *SessionRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	evicted := 0
	for id, last := range r.sessions {
		if now.Sub(last) > r.idleTimeout {
			r.evictLocked(id, now)
			evicted++
		}
	}
	for id, at := range r.terminated {
		if now.Sub(at) > r.idleTimeout {
			delete(r.terminated, id)
		}
	}
	if evicted > 0 {
		r.logger.Info("evicted idle sessions", "count", evicted)
	}
	return evicted
}

func (r *SessionRegistry) evictLocked(id string, now time.Time) {
	delete(r.sessions, id)
	r.terminated[id] = now
	r.metrics.DecrementActiveSessions(context.Background())
}

// Start sweeps idle sessions every interval until Stop is called.
func (r *SessionRegistry) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSessionCleanupInterval
	}
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop ends the background sweep, if running.
func (r *SessionRegistry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
		if r.done != nil {
			<-r.done
		}
	})
}
