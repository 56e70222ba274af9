package dbschema

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/rocketman0418/astra-chats/internal/domain/chat"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(ChatTurn{})
}

// ChatTurn represents the database schema for one prompt/response turn in
// the append-only chat log.
type ChatTurn struct {
	BaseModel
	PublicID       string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	OwnerID        string         `gorm:"type:varchar(128);index:idx_chat_turns_owner_created_at;index:idx_chat_turns_owner_conversation;not null"`
	OwnerEmail     *string        `gorm:"type:varchar(256)"`
	OwnerName      *string        `gorm:"type:varchar(256)"`
	SessionID      string         `gorm:"type:varchar(128);not null"`
	ConversationID string         `gorm:"type:uuid;index:idx_chat_turns_owner_conversation;not null"`
	Prompt         string         `gorm:"type:text;not null"`
	Response       string         `gorm:"type:text"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
}

func (ChatTurn) TableName() string {
	return database.SchemaName + ".chat_turns"
}

// NewSchemaChatTurn creates a database schema row from a domain turn.
func NewSchemaChatTurn(turn *chat.Turn) (*ChatTurn, error) {
	if turn == nil {
		return nil, nil
	}

	var metadata datatypes.JSON
	if len(turn.Metadata) > 0 {
		data, err := json.Marshal(turn.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = datatypes.JSON(data)
	}

	row := &ChatTurn{
		BaseModel: BaseModel{
			ID:        turn.ID,
			CreatedAt: turn.CreatedAt,
		},
		PublicID:       turn.PublicID,
		OwnerID:        turn.OwnerID,
		SessionID:      turn.SessionID,
		ConversationID: turn.ConversationID,
		Prompt:         turn.Prompt,
		Response:       turn.Response,
		Metadata:       metadata,
	}
	if turn.OwnerEmail != "" {
		email := turn.OwnerEmail
		row.OwnerEmail = &email
	}
	if turn.OwnerName != "" {
		name := turn.OwnerName
		row.OwnerName = &name
	}
	return row, nil
}

// EtoD converts the database row to a domain turn (Entity to Domain).
func (t *ChatTurn) EtoD() (*chat.Turn, error) {
	if t == nil {
		return nil, nil
	}

	var metadata map[string]string
	if len(t.Metadata) > 0 {
		if err := json.Unmarshal(t.Metadata, &metadata); err != nil {
			return nil, err
		}
	}

	turn := &chat.Turn{
		ID:             t.ID,
		PublicID:       t.PublicID,
		OwnerID:        t.OwnerID,
		SessionID:      t.SessionID,
		ConversationID: t.ConversationID,
		Prompt:         t.Prompt,
		Response:       t.Response,
		Metadata:       metadata,
		CreatedAt:      t.CreatedAt,
	}
	if t.OwnerEmail != nil {
		turn.OwnerEmail = *t.OwnerEmail
	}
	if t.OwnerName != nil {
		turn.OwnerName = *t.OwnerName
	}
	return turn, nil
}
