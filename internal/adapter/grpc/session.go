package grpc

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/simaogato/orbital-ledger/internal/usecase/ledger"
)

// EngineFactory builds an unloaded engine for a user
type EngineFactory func(userID string) *ledger.Engine

// SessionRegistry hands out one ledger engine per user.
// Engines are created and loaded on first use and kept for the life of the process.
// Loads of different users run in parallel, callers for the same user share one load.
type SessionRegistry struct {
	factory EngineFactory

	mu       sync.Mutex
	sessions map[string]*session
}

// session is closed once its load finished, engine or err is set by then
type session struct {
	ready  chan struct{}
	engine *ledger.Engine
	err    error
}

// NewSessionRegistry creates a new SessionRegistry
func NewSessionRegistry(factory EngineFactory) *SessionRegistry {
	return &SessionRegistry{
		factory:  factory,
		sessions: make(map[string]*session),
	}
}

// Get returns the engine of userID, loading it on first use.
// A failed load is not cached, the next call retries.
func (r *SessionRegistry) Get(ctx context.Context, userID string) (*ledger.Engine, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	if s, ok := r.sessions[userID]; ok {
		r.mu.Unlock()
		select {
		case <-s.ready:
			return s.engine, s.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s := &session{ready: make(chan struct{})}
	r.sessions[userID] = s
	r.mu.Unlock()

	engine := r.factory(userID)
	err := engine.Load(ctx)

	r.mu.Lock()
	if err != nil {
		s.err = fmt.Errorf("failed to open ledger of %s: %w", userID, err)
		delete(r.sessions, userID)
	} else {
		s.engine = engine
	}
	close(s.ready)
	r.mu.Unlock()

	return s.engine, s.err
}

// Users returns the users with an open session, sorted
func (r *SessionRegistry) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]string, 0, len(r.sessions))
	for u, s := range r.sessions {
		select {
		case <-s.ready:
			users = append(users, u)
		default:
		}
	}
	sort.Strings(users)
	return users
}
