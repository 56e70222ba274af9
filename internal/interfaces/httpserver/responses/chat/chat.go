package chatresponses

import (
	"github.com/rocketman0418/astra-chats/internal/domain/chat"
)

// ConversationSummaryResponse is one entry in the conversation list.
type ConversationSummaryResponse struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	LastMessagePreview string `json:"last_message_preview"`
	CreatedAt          int64  `json:"created_at"`
	MessageCount       int    `json:"message_count"`
}

// ConversationListResponse represents the conversation summary list.
type ConversationListResponse struct {
	Object string                        `json:"object"`
	Data   []ConversationSummaryResponse `json:"data"`
}

// MessageResponse is one prompt/response pair in an open conversation.
type MessageResponse struct {
	ID        string `json:"id"`
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
	CreatedAt int64  `json:"created_at"`
}

// ConversationResponse is an open conversation with its ordered messages.
type ConversationResponse struct {
	ID       string            `json:"id"`
	Object   string            `json:"object"`
	Messages []MessageResponse `json:"messages"`
}

// LogMessageResponse confirms a logged turn.
type LogMessageResponse struct {
	ConversationID string `json:"conversation_id"`
}

// ConversationDeletedResponse represents the delete confirmation response.
type ConversationDeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// SessionStateResponse mirrors the state a chat UI renders from.
type SessionStateResponse struct {
	CurrentConversationID string                        `json:"current_conversation_id"`
	Messages              []MessageResponse             `json:"messages"`
	Conversations         []ConversationSummaryResponse `json:"conversations"`
	Loading               bool                          `json:"loading"`
	Error                 string                        `json:"error,omitempty"`
}

// NewConversationSummaryResponse creates a response from a domain summary
func NewConversationSummaryResponse(summary chat.ConversationSummary) ConversationSummaryResponse {
	return ConversationSummaryResponse{
		ID:                 summary.ID,
		Title:              summary.Title,
		LastMessagePreview: summary.LastMessagePreview,
		CreatedAt:          summary.CreatedAt.Unix(),
		MessageCount:       summary.MessageCount,
	}
}

// NewConversationListResponse creates a conversation list response
func NewConversationListResponse(summaries []chat.ConversationSummary) *ConversationListResponse {
	data := make([]ConversationSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		data = append(data, NewConversationSummaryResponse(summary))
	}
	return &ConversationListResponse{
		Object: "list",
		Data:   data,
	}
}

// NewMessageResponse creates a response from a domain message
func NewMessageResponse(message chat.Message) MessageResponse {
	return MessageResponse{
		ID:        message.ID,
		Prompt:    message.Prompt,
		Response:  message.Response,
		CreatedAt: message.CreatedAt.Unix(),
	}
}

// NewConversationResponse creates a response for an open conversation
func NewConversationResponse(id string, messages []chat.Message) *ConversationResponse {
	data := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		data = append(data, NewMessageResponse(message))
	}
	return &ConversationResponse{
		ID:       id,
		Object:   "conversation",
		Messages: data,
	}
}
