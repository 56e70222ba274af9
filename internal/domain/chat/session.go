package chat

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rocketman0418/astra-chats/internal/infrastructure/metrics"
	"github.com/rocketman0418/astra-chats/internal/utils/functional"
	"github.com/rocketman0418/astra-chats/internal/utils/idgen"
	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

// TurnCommittedHandler is invoked after a turn has been durably written to
// the remote log. The remote write is the commit point; handlers see only
// committed turns.
type TurnCommittedHandler func(ctx context.Context, turn *Turn)

// Session owns one owner's view of the chat log: the conversation summary
// list, the open-conversation cursor with its message buffer, and the
// loading/error flags the UI renders from.
//
// A session is safe for concurrent use. State is guarded by a mutex that is
// never held across a remote call; interleaved operations are reconciled by
// the cache's token guard ("last call issued wins"), not by serialization.
type Session struct {
	owner     Owner
	repo      TurnRepository
	validator *TurnValidator
	cache     *SessionCache
	logger    zerolog.Logger

	loading atomic.Int64
	listSeq atomic.Uint64

	mu            sync.Mutex
	conversations []ConversationSummary
	lastErr       string
	lastUsed      time.Time
	closed        bool
	onCommitted   []TurnCommittedHandler
}

// NewSession constructs a session scoped to owner. A fresh conversation id
// is minted immediately so the cursor is never empty for a live session.
// The summary list refresh is subscribed to the TurnCommitted event here,
// keeping the write path free of read concerns.
func NewSession(owner Owner, repo TurnRepository, logger zerolog.Logger) *Session {
	s := &Session{
		owner:     owner,
		repo:      repo,
		validator: NewTurnValidator(nil),
		cache:     NewSessionCache(),
		logger:    logger.With().Str("owner_id", owner.ID).Logger(),
		lastUsed:  time.Now(),
	}
	s.CreateNewConversation()

	s.OnTurnCommitted(func(ctx context.Context, _ *Turn) {
		if _, err := s.ListConversations(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("summary refresh after commit failed")
		}
	})

	return s
}

// Owner returns the principal this session is scoped to.
func (s *Session) Owner() Owner {
	return s.owner
}

// CreateNewConversation mints a fresh conversation id and installs it as the
// live cursor with an empty buffer. The id exists only client-side until the
// first turn is written under it, so it never appears in the summary list.
// This operation cannot fail.
func (s *Session) CreateNewConversation() string {
	id := uuid.NewString()
	s.cache.SetCurrent(id, nil)
	s.touch()
	metrics.ConversationsStartedTotal.Inc()
	s.logger.Debug().Str("conversation_id", id).Msg("new conversation started")
	return id
}

// LogMessage writes one prompt/response turn to the remote log and, when the
// target conversation is still the one being viewed, projects it into the
// buffer. The target resolves to the explicit argument, else the live
// cursor, else a freshly minted conversation.
//
// The remote write precedes any local mutation; on failure nothing local
// changes and the error is recorded and returned.
func (s *Session) LogMessage(ctx context.Context, prompt, response, conversationID string) (string, error) {
	if err := s.checkOpen(ctx); err != nil {
		return "", err
	}
	s.touch()

	convID := conversationID
	if convID == "" {
		convID = s.cache.Current()
	}
	if convID == "" {
		convID = s.CreateNewConversation()
	}

	publicID, err := idgen.GenerateSecureID("turn", 16)
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate turn ID")
	}

	turn := &Turn{
		PublicID:       publicID,
		OwnerID:        s.owner.ID,
		OwnerEmail:     s.owner.Email,
		OwnerName:      s.owner.Name,
		SessionID:      s.owner.ID,
		ConversationID: convID,
		Prompt:         prompt,
		Response:       response,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.validator.ValidateTurn(turn); err != nil {
		verr := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"turn validation failed", err, "9a4c7e1f-2b5d-4c8a-b3e6-1d4f7a0c3e69")
		s.recordError("invalid chat message")
		return "", verr
	}

	if err := s.repo.Insert(ctx, turn); err != nil {
		werr := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeRemoteWrite,
			"failed to save chat message", err, "5e8b2d4f-7a1c-4e9b-8c3d-6f0a2b5d8e14")
		s.recordError("failed to save chat message")
		metrics.RemoteErrorsTotal.WithLabelValues("insert").Inc()
		return "", werr
	}

	metrics.TurnsLoggedTotal.Inc()

	// Append is conditioned on the cursor at append time, not at resolve
	// time: if the user navigated away while the write was in flight the
	// projection is dropped and the turn stays remote-only.
	if !s.cache.AppendIfCurrent(convID, MessageOf(turn)) {
		metrics.StaleResultsDiscardedTotal.WithLabelValues("append").Inc()
		s.logger.Debug().
			Str("conversation_id", convID).
			Str("turn_id", turn.PublicID).
			Msg("append skipped, conversation no longer current")
	}

	s.publishTurnCommitted(ctx, turn)

	return convID, nil
}

// ListConversations refreshes the summary list from the full remote turn
// set. A failed refresh leaves the previously fetched list in place. When
// several refreshes overlap, only the most recently issued one may install
// its result.
func (s *Session) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	s.touch()

	token := s.listSeq.Add(1)

	s.loading.Add(1)
	defer s.loading.Add(-1)

	turns, err := s.repo.SelectByOwner(ctx, s.owner.ID)
	if err != nil {
		rerr := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeRemoteRead,
			"failed to load conversations", err, "c2f5a8d1-4e7b-4a0c-9d3e-8b6f1c4a7d20")
		s.recordError("failed to load conversations")
		metrics.RemoteErrorsTotal.WithLabelValues("select_owner").Inc()
		return nil, rerr
	}

	summaries, err := Summarize(turns)
	if err != nil {
		s.recordError("failed to load conversations")
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to summarize conversations")
	}

	s.mu.Lock()
	if token == s.listSeq.Load() {
		s.conversations = summaries
	} else {
		metrics.StaleResultsDiscardedTotal.WithLabelValues("list").Inc()
	}
	s.mu.Unlock()

	return summaries, nil
}

// LoadConversation opens conversation id: the cursor moves immediately so
// the UI can key its loading state, then the buffer is filled from the
// remote log. Re-opening the already loaded conversation is a no-op cache
// hit and does not re-fetch; see the staleness note on SessionRegistry.
func (s *Session) LoadConversation(ctx context.Context, id string) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	s.touch()

	if err := ValidateConversationID(id); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"invalid conversation ID", err, "1d7e3b9f-6a2c-4f8d-b5e0-3c9a6d2f8b47")
	}

	if cur, msgs := s.cache.Snapshot(); cur == id && len(msgs) > 0 {
		return nil
	}

	token := s.cache.SetCurrent(id, nil)

	s.loading.Add(1)
	defer s.loading.Add(-1)

	turns, err := s.repo.SelectByOwnerAndConversation(ctx, s.owner.ID, id)
	if err != nil {
		rerr := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeRemoteRead,
			"failed to load conversation", err, "6b3f9d2a-8c5e-4b7a-9f1d-4e8c2a6b0d53")
		s.recordError("failed to load conversation")
		metrics.RemoteErrorsTotal.WithLabelValues("select_conversation").Inc()
		return rerr
	}

	messages := functional.Map(turns, MessageOf)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	if !s.cache.InstallIfCurrent(token, id, messages) {
		metrics.StaleResultsDiscardedTotal.WithLabelValues("load").Inc()
		s.logger.Debug().
			Str("conversation_id", id).
			Msg("load result discarded, cursor moved while fetch was in flight")
	}

	return nil
}

// DeleteConversation removes every turn under id from the remote log. When
// the deleted conversation was the one open, a fresh conversation is minted
// so the cursor never dangles. The summary list is refreshed on every path.
func (s *Session) DeleteConversation(ctx context.Context, id string) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	s.touch()

	if err := ValidateConversationID(id); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"invalid conversation ID", err, "8f2a6c4e-1d9b-4e3f-a7c0-5b8d3f6a9c21")
	}

	if err := s.repo.DeleteByOwnerAndConversation(ctx, s.owner.ID, id); err != nil {
		werr := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeRemoteWrite,
			"failed to delete conversation", err, "4d8b1f6a-3e9c-4d2b-8a5f-7c0e4b9d2f68")
		s.recordError("failed to delete conversation")
		metrics.RemoteErrorsTotal.WithLabelValues("delete").Inc()
		return werr
	}

	metrics.ConversationsDeletedTotal.Inc()

	if s.cache.Current() == id {
		s.CreateNewConversation()
	}

	if _, err := s.ListConversations(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("summary refresh after delete failed")
	}

	return nil
}

// OnTurnCommitted subscribes h to the TurnCommitted event. Handlers run
// synchronously on the committing goroutine, after the local append.
func (s *Session) OnTurnCommitted(h TurnCommittedHandler) {
	s.mu.Lock()
	s.onCommitted = append(s.onCommitted, h)
	s.mu.Unlock()
}

func (s *Session) publishTurnCommitted(ctx context.Context, turn *Turn) {
	s.mu.Lock()
	handlers := append([]TurnCommittedHandler(nil), s.onCommitted...)
	s.mu.Unlock()
	for _, h := range handlers {
		h(ctx, turn)
	}
}

// Conversations returns the last successfully fetched summary list.
func (s *Session) Conversations() []ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ConversationSummary(nil), s.conversations...)
}

// CurrentConversationID returns the live cursor.
func (s *Session) CurrentConversationID() string {
	return s.cache.Current()
}

// Messages returns a copy of the open conversation's buffer.
func (s *Session) Messages() []Message {
	_, msgs := s.cache.Snapshot()
	return msgs
}

// Loading reports whether any remote operation is in flight.
func (s *Session) Loading() bool {
	return s.loading.Load() > 0
}

// Err returns the last recorded operation error description, or "".
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError resets the recorded error description.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// LastUsed returns the time of the most recent operation on this session.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Close tears the session down on logout. Further operations fail with a
// conflict error; the remote log is untouched.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.conversations = nil
	s.mu.Unlock()
	s.cache.Clear(true)
}

func (s *Session) checkOpen(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"session is closed", nil, "2c6e0a4d-9f3b-4c7e-8d1a-6b4f9c2e5a80")
	}
	return nil
}

func (s *Session) recordError(message string) {
	s.mu.Lock()
	s.lastErr = message
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}
