package chat

import (
	"context"
	"time"
)

// Turn is one persisted prompt/response pair in the append-only chat log.
// Turns are immutable once written; they are removed only when the whole
// conversation they belong to is deleted.
type Turn struct {
	ID             uint              `json:"-"`
	PublicID       string            `json:"id"` // string ID like "turn_a3f8d2k9p1m4n7q2"
	OwnerID        string            `json:"owner_id"`
	OwnerEmail     string            `json:"owner_email,omitempty"`
	OwnerName      string            `json:"owner_name,omitempty"`
	SessionID      string            `json:"session_id,omitempty"`
	ConversationID string            `json:"conversation_id"`
	Prompt         string            `json:"prompt"`
	Response       string            `json:"response"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Message is the session-facing projection of a Turn: what the UI renders
// inside the open conversation buffer.
type Message struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageOf projects a turn into its buffer representation.
func MessageOf(turn *Turn) Message {
	return Message{
		ID:        turn.PublicID,
		Prompt:    turn.Prompt,
		Response:  turn.Response,
		CreatedAt: turn.CreatedAt,
	}
}

// TurnRepository is the remote chat-log contract the session manager consumes.
// Implementations live in infrastructure; the contract is fixed here:
//
//   - Insert persists a new turn and fills in its generated fields.
//   - SelectByOwner returns every turn the owner has written, newest first.
//   - SelectByOwnerAndConversation returns one conversation's turns ordered
//     ascending by creation time.
//   - DeleteByOwnerAndConversation removes a whole conversation.
type TurnRepository interface {
	Insert(ctx context.Context, turn *Turn) error
	SelectByOwner(ctx context.Context, ownerID string) ([]*Turn, error)
	SelectByOwnerAndConversation(ctx context.Context, ownerID, conversationID string) ([]*Turn, error)
	DeleteByOwnerAndConversation(ctx context.Context, ownerID, conversationID string) error
}
