package chat

import "sync"

// SessionCache is the single source of truth for "which conversation is open
// and what is in it". It is mutated only by Session; every mutation that
// moves the cursor bumps a monotonically increasing token, and async results
// carry the token they were issued under so stale installs can be rejected.
type SessionCache struct {
	mu             sync.Mutex
	conversationID string
	messages       []Message
	token          uint64
}

// NewSessionCache returns an empty cache with no cursor.
func NewSessionCache() *SessionCache {
	return &SessionCache{}
}

// SetCurrent replaces the cursor and buffer atomically and returns the token
// of the new cursor generation.
func (c *SessionCache) SetCurrent(conversationID string, messages []Message) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token++
	c.conversationID = conversationID
	c.messages = append([]Message(nil), messages...)
	return c.token
}

// InstallIfCurrent replaces the buffer only when both the token and the
// conversation id still match the live cursor. It reports whether the
// install happened; a false return means the result was stale and must be
// discarded.
func (c *SessionCache) InstallIfCurrent(token uint64, conversationID string, messages []Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token || conversationID != c.conversationID {
		return false
	}
	c.messages = append([]Message(nil), messages...)
	return true
}

// AppendIfCurrent appends a message only when conversationID still equals
// the live cursor. A dropped append is not data loss: the turn is already
// committed remotely, it just is not the conversation being viewed anymore.
func (c *SessionCache) AppendIfCurrent(conversationID string, message Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conversationID != c.conversationID || c.conversationID == "" {
		return false
	}
	c.messages = append(c.messages, message)
	return true
}

// Clear empties the buffer. When dropCursor is true the cursor is cleared as
// well, invalidating any in-flight installs.
func (c *SessionCache) Clear(dropCursor bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	if dropCursor {
		c.token++
		c.conversationID = ""
	}
}

// Current returns the live cursor, or "" when none is set.
func (c *SessionCache) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// Snapshot returns the cursor and a copy of the buffer.
func (c *SessionCache) Snapshot() (string, []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID, append([]Message(nil), c.messages...)
}
