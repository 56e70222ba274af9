package chat

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rocketman0418/astra-chats/internal/utils/idgen"
)

// TurnValidationConfig holds turn-level validation rules
type TurnValidationConfig struct {
	MaxPromptLength        int
	MaxResponseLength      int
	MaxMetadataKeys        int
	MaxMetadataKeyLength   int
	MaxMetadataValueLength int
}

// DefaultTurnValidationConfig returns the validation rules applied before a
// turn is written to the remote log.
func DefaultTurnValidationConfig() *TurnValidationConfig {
	return &TurnValidationConfig{
		MaxPromptLength:        32768,
		MaxResponseLength:      262144,
		MaxMetadataKeys:        16,
		MaxMetadataKeyLength:   64,
		MaxMetadataValueLength: 512,
	}
}

// TurnValidator handles turn-level validation
type TurnValidator struct {
	config *TurnValidationConfig
}

// NewTurnValidator creates a validator for turns
func NewTurnValidator(config *TurnValidationConfig) *TurnValidator {
	if config == nil {
		config = DefaultTurnValidationConfig()
	}
	return &TurnValidator{config: config}
}

// ValidateTurn performs full turn validation
func (v *TurnValidator) ValidateTurn(turn *Turn) error {
	if turn == nil {
		return fmt.Errorf("turn cannot be nil")
	}

	if turn.PublicID != "" && !idgen.ValidateIDFormat(turn.PublicID, "turn") {
		return fmt.Errorf("invalid turn ID format: %s", turn.PublicID)
	}

	if turn.OwnerID == "" {
		return fmt.Errorf("owner id is required")
	}

	if err := ValidateConversationID(turn.ConversationID); err != nil {
		return err
	}

	if turn.Prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if utf8.RuneCountInString(turn.Prompt) > v.config.MaxPromptLength {
		return fmt.Errorf("prompt exceeds maximum length of %d characters", v.config.MaxPromptLength)
	}
	if utf8.RuneCountInString(turn.Response) > v.config.MaxResponseLength {
		return fmt.Errorf("response exceeds maximum length of %d characters", v.config.MaxResponseLength)
	}

	if turn.Metadata != nil {
		if err := v.validateMetadata(turn.Metadata); err != nil {
			return fmt.Errorf("invalid metadata: %w", err)
		}
	}

	return nil
}

func (v *TurnValidator) validateMetadata(metadata map[string]string) error {
	if len(metadata) > v.config.MaxMetadataKeys {
		return fmt.Errorf("metadata cannot have more than %d keys", v.config.MaxMetadataKeys)
	}
	for key, value := range metadata {
		if len(key) > v.config.MaxMetadataKeyLength {
			return fmt.Errorf("metadata key %q exceeds maximum length of %d", key, v.config.MaxMetadataKeyLength)
		}
		if len(value) > v.config.MaxMetadataValueLength {
			return fmt.Errorf("metadata value for key %q exceeds maximum length of %d", key, v.config.MaxMetadataValueLength)
		}
	}
	return nil
}

// ValidateConversationID checks that id is a client-minted UUID token.
func ValidateConversationID(id string) error {
	if id == "" {
		return fmt.Errorf("conversation id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("conversation id must be a UUID: %w", err)
	}
	return nil
}
