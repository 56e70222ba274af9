package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SessionRegistry hands out one live Session per owner. Sessions are created
// on first use, released explicitly on logout, and swept when idle.
//
// The registry is also where the cache-hit staleness trade-off is bounded:
// an open conversation is never re-fetched while its buffer is warm, so a
// turn written by another client stays invisible until the session is
// released or swept. The idle sweep caps how long that can last.
type SessionRegistry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	repo        TurnRepository
	logger      zerolog.Logger
	idleTimeout time.Duration
}

// NewSessionRegistry creates a registry backed by repo. Sessions idle for
// longer than idleTimeout are closed by SweepIdle.
func NewSessionRegistry(repo TurnRepository, logger zerolog.Logger, idleTimeout time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions:    make(map[string]*Session),
		repo:        repo,
		logger:      logger,
		idleTimeout: idleTimeout,
	}
}

// Acquire returns the owner's session, constructing and bootstrapping one if
// none is live. The initial summary fetch runs inline; its failure is
// recorded on the session rather than surfaced, matching the stale-but-
// available read policy. A concurrent Acquire for the same owner may observe
// the session before that bootstrap fetch completes, so an early
// Conversations read can be empty until the next refresh lands.
func (r *SessionRegistry) Acquire(ctx context.Context, owner Owner) *Session {
	r.mu.Lock()
	if s, ok := r.sessions[owner.ID]; ok {
		r.mu.Unlock()
		return s
	}
	s := NewSession(owner, r.repo, r.logger)
	r.sessions[owner.ID] = s
	r.mu.Unlock()

	if _, err := s.ListConversations(ctx); err != nil {
		r.logger.Warn().Err(err).Str("owner_id", owner.ID).Msg("initial conversation list fetch failed")
	}
	return s
}

// Peek returns the owner's live session without creating one.
func (r *SessionRegistry) Peek(ownerID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[ownerID]
	return s, ok
}

// Release closes and forgets the owner's session. Safe to call when no
// session is live.
func (r *SessionRegistry) Release(ownerID string) {
	r.mu.Lock()
	s, ok := r.sessions[ownerID]
	if ok {
		delete(r.sessions, ownerID)
	}
	r.mu.Unlock()
	if ok {
		s.Close()
		r.logger.Debug().Str("owner_id", ownerID).Msg("session released")
	}
}

// SweepIdle closes every session whose last operation is older than the idle
// timeout and returns how many were closed.
func (r *SessionRegistry) SweepIdle(now time.Time) int {
	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if now.Sub(s.LastUsed()) > r.idleTimeout {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		r.logger.Info().Int("count", len(expired)).Msg("idle sessions swept")
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
