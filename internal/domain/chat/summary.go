package chat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

const (
	// TitleMaxLen bounds the characters of the first prompt shown as a
	// conversation title.
	TitleMaxLen = 50
	// PreviewMaxLen bounds the characters of the latest response shown as
	// the conversation preview.
	PreviewMaxLen = 100

	ellipsis = "..."
)

// ConversationSummary is the derived, UI-facing projection of one
// conversation. It is recomputed from turns on every refresh and never
// persisted.
type ConversationSummary struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	LastMessagePreview string    `json:"last_message_preview"`
	CreatedAt          time.Time `json:"created_at"`
	MessageCount       int       `json:"message_count"`
}

// Summarize folds a flat set of turns into one summary per conversation,
// ordered newest conversation first.
//
// The fold is deterministic and order independent: title comes from the
// earliest turn's prompt, preview from the latest turn's response, createdAt
// from the earliest turn, count from the set size. Equal timestamps resolve
// to the earlier input position, which is implementation defined rather than
// guaranteed.
func Summarize(turns []*Turn) ([]ConversationSummary, error) {
	type group struct {
		first *Turn
		last  *Turn
		count int
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	for i, turn := range turns {
		if err := checkWellFormed(turn, i); err != nil {
			return nil, err
		}

		g, ok := groups[turn.ConversationID]
		if !ok {
			groups[turn.ConversationID] = &group{first: turn, last: turn, count: 1}
			order = append(order, turn.ConversationID)
			continue
		}

		g.count++
		if turn.CreatedAt.Before(g.first.CreatedAt) {
			g.first = turn
		}
		if turn.CreatedAt.After(g.last.CreatedAt) {
			g.last = turn
		}
	}

	summaries := make([]ConversationSummary, 0, len(groups))
	for _, id := range order {
		g := groups[id]
		summaries = append(summaries, ConversationSummary{
			ID:                 id,
			Title:              Truncate(g.first.Prompt, TitleMaxLen),
			LastMessagePreview: Truncate(g.last.Response, PreviewMaxLen),
			CreatedAt:          g.first.CreatedAt,
			MessageCount:       g.count,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	return summaries, nil
}

// Truncate cuts s to at most maxLen characters, appending an ellipsis when
// anything was removed. Shorter strings come back verbatim.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + ellipsis
}

// checkWellFormed rejects turns that violate the remote contract. A
// malformed turn is a fatal assertion, not a recoverable path: the remote
// store must never hand one back.
func checkWellFormed(turn *Turn, index int) error {
	ctx := context.Background()
	if turn == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeMalformedTurn,
			fmt.Sprintf("nil turn at index %d", index), nil, "0f2c5d8a-41e7-4b3a-9c6d-2e8f1a7b4c90")
	}
	if turn.ConversationID == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeMalformedTurn,
			fmt.Sprintf("turn %q has no conversation id", turn.PublicID), nil, "7b1e4f2d-9c3a-4e6b-8d5f-0a2c4e6b8d1f")
	}
	if turn.CreatedAt.IsZero() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeMalformedTurn,
			fmt.Sprintf("turn %q has no creation timestamp", turn.PublicID), nil, "3d6a9c2e-5f8b-4d1a-7e4c-9b2d5f8a1c3e")
	}
	return nil
}
