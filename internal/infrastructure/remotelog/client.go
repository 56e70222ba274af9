// Package remotelog implements the turn repository against a hosted
// PostgREST-style endpoint, the backend the original Astra deployment uses.
package remotelog

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/rocketman0418/astra-chats/internal/domain/chat"
	"github.com/rocketman0418/astra-chats/internal/utils/httpclients"
	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

const turnsPath = "/rest/v1/astra_chats"

// Client is a chat.TurnRepository backed by the remote chat log REST API.
type Client struct {
	http *resty.Client
}

var _ chat.TurnRepository = (*Client)(nil)

// NewClient builds a remote log client. apiKey is sent both as the service
// key header and as a bearer token, matching the hosted API's contract.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	client := httpclients.NewClient("remote_chat_log").
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("apikey", apiKey)
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return &Client{http: client}
}

type turnRow struct {
	ID             uint              `json:"id,omitempty"`
	PublicID       string            `json:"public_id"`
	UserID         string            `json:"user_id"`
	UserEmail      string            `json:"user_email,omitempty"`
	UserName       string            `json:"user_name,omitempty"`
	SessionID      string            `json:"session_id"`
	ConversationID string            `json:"conversation_id"`
	Prompt         string            `json:"prompt"`
	Response       string            `json:"response"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at,omitempty"`
}

func rowOf(turn *chat.Turn) turnRow {
	return turnRow{
		PublicID:       turn.PublicID,
		UserID:         turn.OwnerID,
		UserEmail:      turn.OwnerEmail,
		UserName:       turn.OwnerName,
		SessionID:      turn.SessionID,
		ConversationID: turn.ConversationID,
		Prompt:         turn.Prompt,
		Response:       turn.Response,
		Metadata:       turn.Metadata,
		CreatedAt:      turn.CreatedAt,
	}
}

func (r turnRow) toDomain() *chat.Turn {
	return &chat.Turn{
		ID:             r.ID,
		PublicID:       r.PublicID,
		OwnerID:        r.UserID,
		OwnerEmail:     r.UserEmail,
		OwnerName:      r.UserName,
		SessionID:      r.SessionID,
		ConversationID: r.ConversationID,
		Prompt:         r.Prompt,
		Response:       r.Response,
		Metadata:       r.Metadata,
		CreatedAt:      r.CreatedAt,
	}
}

// Insert implements chat.TurnRepository.
func (c *Client) Insert(ctx context.Context, turn *chat.Turn) error {
	var created []turnRow
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody([]turnRow{rowOf(turn)}).
		SetResult(&created).
		Post(turnsPath)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to insert chat turn")
	}
	if resp.IsError() {
		return c.statusError(ctx, resp, "failed to insert chat turn")
	}
	if len(created) > 0 {
		turn.ID = created[0].ID
		if !created[0].CreatedAt.IsZero() {
			turn.CreatedAt = created[0].CreatedAt
		}
	}
	return nil
}

// SelectByOwner implements chat.TurnRepository. Rows come back newest first.
func (c *Client) SelectByOwner(ctx context.Context, ownerID string) ([]*chat.Turn, error) {
	return c.selectTurns(ctx, map[string]string{
		"user_id": "eq." + ownerID,
		"order":   "created_at.desc",
	})
}

// SelectByOwnerAndConversation implements chat.TurnRepository. Rows come back
// oldest first.
func (c *Client) SelectByOwnerAndConversation(ctx context.Context, ownerID, conversationID string) ([]*chat.Turn, error) {
	return c.selectTurns(ctx, map[string]string{
		"user_id":         "eq." + ownerID,
		"conversation_id": "eq." + conversationID,
		"order":           "created_at.asc",
	})
}

// DeleteByOwnerAndConversation implements chat.TurnRepository.
func (c *Client) DeleteByOwnerAndConversation(ctx context.Context, ownerID, conversationID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user_id":         "eq." + ownerID,
			"conversation_id": "eq." + conversationID,
		}).
		Delete(turnsPath)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to delete conversation turns")
	}
	if resp.IsError() {
		return c.statusError(ctx, resp, "failed to delete conversation turns")
	}
	return nil
}

func (c *Client) selectTurns(ctx context.Context, params map[string]string) ([]*chat.Turn, error) {
	var rows []turnRow
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&rows).
		Get(turnsPath)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to select chat turns")
	}
	if resp.IsError() {
		return nil, c.statusError(ctx, resp, "failed to select chat turns")
	}

	turns := make([]*chat.Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, row.toDomain())
	}
	return turns, nil
}

func (c *Client) statusError(ctx context.Context, resp *resty.Response, message string) error {
	err := fmt.Errorf("remote chat log returned status %d", resp.StatusCode())
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
		message, err, "e4a9c1d7-3f6b-4d2e-8a0c-5b9f2e7d4a31")
}
