package chathandler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rocketman0418/astra-chats/internal/config"
	"github.com/rocketman0418/astra-chats/internal/domain/chat"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/observability"
	chatrequests "github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/requests/chat"
	chatresponses "github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/responses/chat"
	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

// ChatHandler handles chat session HTTP requests. Each owner gets one live
// session from the registry; the handler is a thin adapter between the HTTP
// surface and session operations.
type ChatHandler struct {
	registry *chat.SessionRegistry
	cfg      *config.Config
	validate *validator.Validate
}

// NewChatHandler creates a new chat handler
func NewChatHandler(registry *chat.SessionRegistry, cfg *config.Config) *ChatHandler {
	return &ChatHandler{
		registry: registry,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *ChatHandler) session(ctx context.Context, owner chat.Owner) *chat.Session {
	return h.registry.Acquire(ctx, owner)
}

// LogMessage appends one prompt/response turn to the owner's chat log.
func (h *ChatHandler) LogMessage(
	ctx context.Context,
	owner chat.Owner,
	req chatrequests.LogMessageRequest,
) (*chatresponses.LogMessageResponse, error) {
	ctx, span := observability.StartSpan(ctx, h.cfg.ServiceName, "chat.log_message")
	defer span.End()

	if err := h.validate.Struct(req); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"invalid log message request", err, "3b7f1c9e-5d2a-4e8b-a6f0-9c4d7e2b5a18")
	}

	convID, err := h.session(ctx, owner).LogMessage(ctx, req.Prompt, req.Response, req.ConversationID)
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to log message")
	}

	observability.AddSpanAttributes(ctx, attribute.String("conversation.id", convID))
	return &chatresponses.LogMessageResponse{ConversationID: convID}, nil
}

// ListConversations returns the owner's conversation summary list.
func (h *ChatHandler) ListConversations(
	ctx context.Context,
	owner chat.Owner,
) (*chatresponses.ConversationListResponse, error) {
	ctx, span := observability.StartSpan(ctx, h.cfg.ServiceName, "chat.list_conversations")
	defer span.End()

	summaries, err := h.session(ctx, owner).ListConversations(ctx)
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to list conversations")
	}

	return chatresponses.NewConversationListResponse(summaries), nil
}

// LoadConversation opens a conversation and returns its ordered messages.
func (h *ChatHandler) LoadConversation(
	ctx context.Context,
	owner chat.Owner,
	conversationID string,
) (*chatresponses.ConversationResponse, error) {
	ctx, span := observability.StartSpan(ctx, h.cfg.ServiceName, "chat.load_conversation")
	defer span.End()

	session := h.session(ctx, owner)
	if err := session.LoadConversation(ctx, conversationID); err != nil {
		observability.RecordError(ctx, err)
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to load conversation")
	}

	return chatresponses.NewConversationResponse(session.CurrentConversationID(), session.Messages()), nil
}

// CreateConversation starts a fresh conversation and makes it current.
func (h *ChatHandler) CreateConversation(
	ctx context.Context,
	owner chat.Owner,
) (*chatresponses.ConversationResponse, error) {
	ctx, span := observability.StartSpan(ctx, h.cfg.ServiceName, "chat.create_conversation")
	defer span.End()

	id := h.session(ctx, owner).CreateNewConversation()
	return chatresponses.NewConversationResponse(id, nil), nil
}

// DeleteConversation removes a conversation from the owner's chat log.
func (h *ChatHandler) DeleteConversation(
	ctx context.Context,
	owner chat.Owner,
	conversationID string,
) (*chatresponses.ConversationDeletedResponse, error) {
	ctx, span := observability.StartSpan(ctx, h.cfg.ServiceName, "chat.delete_conversation")
	defer span.End()

	if err := h.session(ctx, owner).DeleteConversation(ctx, conversationID); err != nil {
		observability.RecordError(ctx, err)
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to delete conversation")
	}

	return &chatresponses.ConversationDeletedResponse{
		ID:      conversationID,
		Object:  "conversation.deleted",
		Deleted: true,
	}, nil
}

// SessionState returns everything the chat UI renders from in one payload.
func (h *ChatHandler) SessionState(
	ctx context.Context,
	owner chat.Owner,
) *chatresponses.SessionStateResponse {
	session := h.session(ctx, owner)

	summaries := session.Conversations()
	conversations := make([]chatresponses.ConversationSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		conversations = append(conversations, chatresponses.NewConversationSummaryResponse(summary))
	}

	messages := session.Messages()
	messageResponses := make([]chatresponses.MessageResponse, 0, len(messages))
	for _, message := range messages {
		messageResponses = append(messageResponses, chatresponses.NewMessageResponse(message))
	}

	return &chatresponses.SessionStateResponse{
		CurrentConversationID: session.CurrentConversationID(),
		Messages:              messageResponses,
		Conversations:         conversations,
		Loading:               session.Loading(),
		Error:                 session.Err(),
	}
}

// CloseSession tears down the owner's session, e.g. on logout.
func (h *ChatHandler) CloseSession(owner chat.Owner) {
	h.registry.Release(owner.ID)
}
