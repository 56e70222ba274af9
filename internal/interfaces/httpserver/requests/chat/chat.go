package chatrequests

// LogMessageRequest represents the request to append one prompt/response
// turn to the chat log. ConversationID is optional; when omitted the turn
// lands in the conversation currently open in the caller's session.
type LogMessageRequest struct {
	Prompt         string `json:"prompt" binding:"required" validate:"required"`
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id" binding:"omitempty,uuid" validate:"omitempty,uuid"`
}
