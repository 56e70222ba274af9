package chat_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rocketman0418/astra-chats/internal/domain/chat"
	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

// fakeTurnRepo is an in-memory TurnRepository with failure injection and
// hooks for interleaving remote calls with session operations.
type fakeTurnRepo struct {
	mu    sync.Mutex
	turns []*chat.Turn

	insertErr      error
	selectOwnerErr error
	selectConvErr  error
	deleteErr      error

	insertCalls      int
	selectOwnerCalls int
	selectConvCalls  int
	deleteCalls      int

	beforeInsert      func()
	beforeSelectOwner func()
	beforeSelectConv  func()
}

var _ chat.TurnRepository = (*fakeTurnRepo)(nil)

func (f *fakeTurnRepo) Insert(_ context.Context, turn *chat.Turn) error {
	if f.beforeInsert != nil {
		f.beforeInsert()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	copied := *turn
	f.turns = append(f.turns, &copied)
	return nil
}

func (f *fakeTurnRepo) SelectByOwner(_ context.Context, ownerID string) ([]*chat.Turn, error) {
	if f.beforeSelectOwner != nil {
		f.beforeSelectOwner()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectOwnerCalls++
	if f.selectOwnerErr != nil {
		return nil, f.selectOwnerErr
	}
	var out []*chat.Turn
	for _, turn := range f.turns {
		if turn.OwnerID == ownerID {
			out = append(out, turn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTurnRepo) SelectByOwnerAndConversation(_ context.Context, ownerID, conversationID string) ([]*chat.Turn, error) {
	if f.beforeSelectConv != nil {
		f.beforeSelectConv()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectConvCalls++
	if f.selectConvErr != nil {
		return nil, f.selectConvErr
	}
	var out []*chat.Turn
	for _, turn := range f.turns {
		if turn.OwnerID == ownerID && turn.ConversationID == conversationID {
			out = append(out, turn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTurnRepo) DeleteByOwnerAndConversation(_ context.Context, ownerID, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.turns[:0]
	for _, turn := range f.turns {
		if !(turn.OwnerID == ownerID && turn.ConversationID == conversationID) {
			kept = append(kept, turn)
		}
	}
	f.turns = kept
	return nil
}

func (f *fakeTurnRepo) seed(turn *chat.Turn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, turn)
}

var testOwner = chat.Owner{ID: "owner-1", Email: "owner@example.com", Name: "Owner One"}

func newTestSession(repo *fakeTurnRepo) *chat.Session {
	return chat.NewSession(testOwner, repo, zerolog.Nop())
}

func TestSession_FirstMessageScenario(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	convID, err := session.LogMessage(context.Background(), "P1", "R1", "")
	if err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	if convID != session.CurrentConversationID() {
		t.Errorf("logged conversation %q is not the cursor %q", convID, session.CurrentConversationID())
	}

	msgs := session.Messages()
	if len(msgs) != 1 || msgs[0].Prompt != "P1" || msgs[0].Response != "R1" {
		t.Errorf("buffer = %v, want one P1/R1 message", msgs)
	}

	// The commit event refreshed the summary list.
	summaries := session.Conversations()
	if len(summaries) != 1 {
		t.Fatalf("conversations = %d entries, want 1", len(summaries))
	}
	got := summaries[0]
	if got.ID != convID || got.Title != "P1" || got.LastMessagePreview != "R1" || got.MessageCount != 1 {
		t.Errorf("summary = %+v, want {%s P1 R1 1}", got, convID)
	}
	if session.Loading() {
		t.Error("loading flag stuck after LogMessage")
	}
}

func TestSession_LogMessageResolvesExplicitConversation(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	other := session.CreateNewConversation()
	current := session.CreateNewConversation()

	convID, err := session.LogMessage(context.Background(), "elsewhere", "r", other)
	if err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	if convID != other {
		t.Errorf("resolved conversation = %q, want explicit %q", convID, other)
	}

	// The write landed remotely but must not leak into the buffer the user
	// is viewing.
	if got := session.CurrentConversationID(); got != current {
		t.Errorf("cursor = %q, want %q", got, current)
	}
	if msgs := session.Messages(); len(msgs) != 0 {
		t.Errorf("buffer = %v, want empty", msgs)
	}
	if len(session.Conversations()) != 1 {
		t.Errorf("summary list missed the explicit-target write")
	}
}

func TestSession_StaleWriteGuard(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	conversationA := session.CurrentConversationID()

	// The user starts a new conversation while the write is in flight.
	repo.beforeInsert = func() {
		session.CreateNewConversation()
	}

	convID, err := session.LogMessage(context.Background(), "late", "reply", "")
	if err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	if convID != conversationA {
		t.Errorf("write resolved to %q, want original conversation %q", convID, conversationA)
	}

	if msgs := session.Messages(); len(msgs) != 0 {
		t.Errorf("resolved write leaked into the new conversation's buffer: %v", msgs)
	}
	if cur := session.CurrentConversationID(); cur == conversationA {
		t.Error("cursor did not move, guard was not exercised")
	}

	// The turn is not lost: it is in the remote log and the summary list.
	if len(session.Conversations()) != 1 {
		t.Error("committed turn missing from summary list")
	}
}

func TestSession_WriteFailureLeavesStateUntouched(t *testing.T) {
	repo := &fakeTurnRepo{insertErr: errors.New("connection reset")}
	session := newTestSession(repo)

	_, err := session.LogMessage(context.Background(), "P1", "R1", "")
	if err == nil {
		t.Fatal("LogMessage() error = nil, want remote write error")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeRemoteWrite) {
		t.Errorf("error type = %v, want REMOTE_WRITE", err)
	}

	if msgs := session.Messages(); len(msgs) != 0 {
		t.Errorf("buffer = %v, want empty (no optimistic insert)", msgs)
	}
	if session.Err() == "" {
		t.Error("error description not recorded")
	}
	if session.Loading() {
		t.Error("loading flag stuck after failed write")
	}
	if repo.selectOwnerCalls != 0 {
		t.Error("summary refresh ran despite failed write")
	}
}

func TestSession_CacheHitSkipsRefetch(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	convID, err := session.LogMessage(context.Background(), "P1", "R1", "")
	if err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	session.CreateNewConversation()

	if err := session.LoadConversation(context.Background(), convID); err != nil {
		t.Fatalf("LoadConversation() error = %v", err)
	}
	if repo.selectConvCalls != 1 {
		t.Fatalf("selectConvCalls = %d after first load, want 1", repo.selectConvCalls)
	}

	if err := session.LoadConversation(context.Background(), convID); err != nil {
		t.Fatalf("LoadConversation() error = %v", err)
	}
	if repo.selectConvCalls != 1 {
		t.Errorf("selectConvCalls = %d after repeat load, want 1 (cache hit)", repo.selectConvCalls)
	}

	msgs := session.Messages()
	if len(msgs) != 1 || msgs[0].Prompt != "P1" {
		t.Errorf("buffer = %v, want the loaded P1 message", msgs)
	}
}

func TestSession_LoadOrdersMessagesAscending(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	convID := session.CreateNewConversation()
	repo.seed(&chat.Turn{PublicID: "turn_bbbbbbbbbbbbbbbb", OwnerID: testOwner.ID, ConversationID: convID, Prompt: "second", Response: "r2", CreatedAt: base.Add(time.Minute)})
	repo.seed(&chat.Turn{PublicID: "turn_cccccccccccccccc", OwnerID: testOwner.ID, ConversationID: convID, Prompt: "first", Response: "r1", CreatedAt: base})

	// Move away so the load is not a cache hit.
	session.CreateNewConversation()

	if err := session.LoadConversation(context.Background(), convID); err != nil {
		t.Fatalf("LoadConversation() error = %v", err)
	}

	msgs := session.Messages()
	if len(msgs) != 2 {
		t.Fatalf("buffer = %d messages, want 2", len(msgs))
	}
	if msgs[0].Prompt != "first" || msgs[1].Prompt != "second" {
		t.Errorf("buffer order = [%s, %s], want ascending by creation time", msgs[0].Prompt, msgs[1].Prompt)
	}
	if session.CurrentConversationID() != convID {
		t.Errorf("cursor = %q, want %q", session.CurrentConversationID(), convID)
	}
}

func TestSession_StaleLoadResultDiscarded(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	convID := session.CreateNewConversation()
	repo.seed(&chat.Turn{PublicID: "turn_dddddddddddddddd", OwnerID: testOwner.ID, ConversationID: convID, Prompt: "p", Response: "r", CreatedAt: time.Now().UTC()})
	session.CreateNewConversation()

	// The cursor moves again while the fetch is in flight; the fetched
	// result must be discarded, not installed.
	var newest string
	repo.beforeSelectConv = func() {
		newest = session.CreateNewConversation()
	}

	if err := session.LoadConversation(context.Background(), convID); err != nil {
		t.Fatalf("LoadConversation() error = %v", err)
	}

	if cur := session.CurrentConversationID(); cur != newest {
		t.Errorf("cursor = %q, want the conversation started mid-flight %q", cur, newest)
	}
	if msgs := session.Messages(); len(msgs) != 0 {
		t.Errorf("stale load result was installed: %v", msgs)
	}
}

func TestSession_LoadFailureRecordsError(t *testing.T) {
	repo := &fakeTurnRepo{selectConvErr: errors.New("timeout")}
	session := newTestSession(repo)

	target := session.CreateNewConversation()
	session.CreateNewConversation()

	err := session.LoadConversation(context.Background(), target)
	if err == nil {
		t.Fatal("LoadConversation() error = nil, want remote read error")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeRemoteRead) {
		t.Errorf("error type = %v, want REMOTE_READ", err)
	}
	if session.Err() == "" {
		t.Error("error description not recorded")
	}
	if session.Loading() {
		t.Error("loading flag stuck after failed load")
	}
}

func TestSession_ListFailureKeepsPreviousList(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	if _, err := session.LogMessage(context.Background(), "P1", "R1", ""); err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	if len(session.Conversations()) != 1 {
		t.Fatal("precondition: one conversation expected")
	}

	repo.mu.Lock()
	repo.selectOwnerErr = errors.New("unavailable")
	repo.mu.Unlock()

	_, err := session.ListConversations(context.Background())
	if err == nil {
		t.Fatal("ListConversations() error = nil, want remote read error")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeRemoteRead) {
		t.Errorf("error type = %v, want REMOTE_READ", err)
	}

	// Stale-but-available: the previous list is still shown.
	if len(session.Conversations()) != 1 {
		t.Error("previous summary list was cleared on read failure")
	}
	if session.Loading() {
		t.Error("loading flag stuck after failed list")
	}
}

func TestSession_StaleListResultDiscarded(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	convA := session.CurrentConversationID()
	repo.seed(&chat.Turn{PublicID: "turn_eeeeeeeeeeeeeeee", OwnerID: testOwner.ID, ConversationID: convA, Prompt: "p", Response: "r", CreatedAt: time.Now().UTC()})

	// A refresh issued later completes while the first one's fetch is still
	// in flight; the first-issued result must not overwrite it.
	var fresh []chat.ConversationSummary
	repo.beforeSelectOwner = func() {
		repo.beforeSelectOwner = nil
		var err error
		fresh, err = session.ListConversations(context.Background())
		if err != nil {
			t.Fatalf("nested ListConversations() error = %v", err)
		}
		// Visible only to the still-running first fetch.
		repo.seed(&chat.Turn{PublicID: "turn_ffffffffffffffff", OwnerID: testOwner.ID, ConversationID: session.CreateNewConversation(), Prompt: "late", Response: "r2", CreatedAt: time.Now().UTC()})
	}

	stale, err := session.ListConversations(context.Background())
	if err != nil {
		t.Fatalf("ListConversations() error = %v", err)
	}
	if len(stale) != 2 {
		t.Fatalf("first-issued fetch saw %d conversations, want 2", len(stale))
	}
	if len(fresh) != 1 {
		t.Fatalf("later-issued fetch saw %d conversations, want 1", len(fresh))
	}

	// Last call issued wins: the installed list is the later-issued result.
	got := session.Conversations()
	if len(got) != 1 || got[0].ID != convA {
		t.Errorf("installed list = %+v, want only %s from the later-issued refresh", got, convA)
	}
	if session.Loading() {
		t.Error("loading flag stuck after overlapping refreshes")
	}
}

func TestSession_DeleteCurrentRecovery(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	convID, err := session.LogMessage(context.Background(), "P1", "R1", "")
	if err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}

	if err := session.DeleteConversation(context.Background(), convID); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}

	if cur := session.CurrentConversationID(); cur == convID || cur == "" {
		t.Errorf("cursor = %q, want a fresh conversation id", cur)
	}
	if msgs := session.Messages(); len(msgs) != 0 {
		t.Errorf("buffer = %v, want empty after delete-current", msgs)
	}
	if got := session.Conversations(); len(got) != 0 {
		t.Errorf("conversations = %v, want empty after delete", got)
	}
}

func TestSession_DeleteOtherKeepsCursor(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	victim, err := session.LogMessage(context.Background(), "bye", "r", "")
	if err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	current := session.CreateNewConversation()

	listCallsBefore := repo.selectOwnerCalls
	if err := session.DeleteConversation(context.Background(), victim); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}

	if cur := session.CurrentConversationID(); cur != current {
		t.Errorf("cursor = %q, want unchanged %q", cur, current)
	}
	if repo.selectOwnerCalls != listCallsBefore+1 {
		t.Error("summary list was not refreshed after deleting a non-current conversation")
	}
}

func TestSession_DeleteFailureSurfacesWriteError(t *testing.T) {
	repo := &fakeTurnRepo{deleteErr: errors.New("permission denied")}
	session := newTestSession(repo)

	err := session.DeleteConversation(context.Background(), session.CurrentConversationID())
	if err == nil {
		t.Fatal("DeleteConversation() error = nil, want remote write error")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeRemoteWrite) {
		t.Errorf("error type = %v, want REMOTE_WRITE", err)
	}
}

func TestSession_BufferCoherenceAfterMixedOperations(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	first, err := session.LogMessage(context.Background(), "one", "r1", "")
	if err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	if _, err := session.LogMessage(context.Background(), "two", "r2", ""); err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	session.CreateNewConversation()
	if _, err := session.LogMessage(context.Background(), "three", "r3", ""); err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	if err := session.LoadConversation(context.Background(), first); err != nil {
		t.Fatalf("LoadConversation() error = %v", err)
	}

	// Every buffered message must belong to the open conversation.
	msgs := session.Messages()
	if len(msgs) != 2 {
		t.Fatalf("buffer = %d messages, want the 2 from the reopened conversation", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Errorf("buffer not ascending at index %d", i)
		}
	}
}

func TestSession_RejectsMalformedConversationID(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	if err := session.LoadConversation(context.Background(), "not-a-uuid"); err == nil {
		t.Error("LoadConversation() accepted a malformed conversation id")
	}
	if err := session.DeleteConversation(context.Background(), "not-a-uuid"); err == nil {
		t.Error("DeleteConversation() accepted a malformed conversation id")
	}
	if _, err := session.LogMessage(context.Background(), "p", "r", "not-a-uuid"); err == nil {
		t.Error("LogMessage() accepted a malformed conversation id")
	}
	if repo.insertCalls+repo.selectConvCalls+repo.deleteCalls != 0 {
		t.Error("malformed ids reached the remote log")
	}
}

func TestSession_ValidationRejectsEmptyPrompt(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	_, err := session.LogMessage(context.Background(), "", "r", "")
	if err == nil {
		t.Fatal("LogMessage() accepted an empty prompt")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("error type = %v, want VALIDATION", err)
	}
	if repo.insertCalls != 0 {
		t.Error("invalid turn reached the remote log")
	}
}

func TestSession_TurnCommittedSubscriber(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)

	var committed []*chat.Turn
	session.OnTurnCommitted(func(_ context.Context, turn *chat.Turn) {
		committed = append(committed, turn)
	})

	// A failed write must not publish.
	repo.mu.Lock()
	repo.insertErr = errors.New("down")
	repo.mu.Unlock()
	if _, err := session.LogMessage(context.Background(), "p", "r", ""); err == nil {
		t.Fatal("expected write failure")
	}
	if len(committed) != 0 {
		t.Fatal("TurnCommitted published for a failed write")
	}

	repo.mu.Lock()
	repo.insertErr = nil
	repo.mu.Unlock()
	convID, err := session.LogMessage(context.Background(), "p", "r", "")
	if err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	if len(committed) != 1 || committed[0].ConversationID != convID {
		t.Errorf("committed = %v, want one turn under %s", committed, convID)
	}
}

func TestSession_ClosedSessionRejectsOperations(t *testing.T) {
	repo := &fakeTurnRepo{}
	session := newTestSession(repo)
	session.Close()

	if _, err := session.LogMessage(context.Background(), "p", "r", ""); err == nil {
		t.Error("LogMessage() succeeded on a closed session")
	}
	if _, err := session.ListConversations(context.Background()); err == nil {
		t.Error("ListConversations() succeeded on a closed session")
	}
	if msgs := session.Messages(); len(msgs) != 0 {
		t.Errorf("closed session still exposes a buffer: %v", msgs)
	}
}

func TestSessionRegistry_AcquireReusesLiveSession(t *testing.T) {
	repo := &fakeTurnRepo{}
	registry := chat.NewSessionRegistry(repo, zerolog.Nop(), time.Hour)

	a := registry.Acquire(context.Background(), testOwner)
	b := registry.Acquire(context.Background(), testOwner)
	if a != b {
		t.Error("Acquire() returned a new session for a live owner")
	}
	if a.Owner().ID != testOwner.ID {
		t.Errorf("session owner = %q, want %q", a.Owner().ID, testOwner.ID)
	}
	if peeked, ok := registry.Peek(testOwner.ID); !ok || peeked != a {
		t.Error("Peek() did not return the live session")
	}
	if registry.Len() != 1 {
		t.Errorf("registry size = %d, want 1", registry.Len())
	}

	// Acquire bootstraps the summary list exactly once.
	if repo.selectOwnerCalls != 1 {
		t.Errorf("selectOwnerCalls = %d, want 1 bootstrap fetch", repo.selectOwnerCalls)
	}
}

func TestSessionRegistry_ReleaseClosesSession(t *testing.T) {
	repo := &fakeTurnRepo{}
	registry := chat.NewSessionRegistry(repo, zerolog.Nop(), time.Hour)

	s := registry.Acquire(context.Background(), testOwner)
	registry.Release(testOwner.ID)

	if registry.Len() != 0 {
		t.Errorf("registry size = %d after release, want 0", registry.Len())
	}
	if _, ok := registry.Peek(testOwner.ID); ok {
		t.Error("Peek() found a session after release")
	}
	if _, err := s.ListConversations(context.Background()); err == nil {
		t.Error("released session still accepts operations")
	}

	next := registry.Acquire(context.Background(), testOwner)
	if next == s {
		t.Error("Acquire() after release returned the closed session")
	}
}

func TestSessionRegistry_SweepIdle(t *testing.T) {
	repo := &fakeTurnRepo{}
	registry := chat.NewSessionRegistry(repo, zerolog.Nop(), time.Minute)

	registry.Acquire(context.Background(), testOwner)
	registry.Acquire(context.Background(), chat.Owner{ID: "owner-2"})

	if n := registry.SweepIdle(time.Now()); n != 0 {
		t.Errorf("SweepIdle(now) closed %d sessions, want 0", n)
	}
	if n := registry.SweepIdle(time.Now().Add(2 * time.Minute)); n != 2 {
		t.Errorf("SweepIdle(+2m) closed %d sessions, want 2", n)
	}
	if registry.Len() != 0 {
		t.Errorf("registry size = %d after sweep, want 0", registry.Len())
	}
}
