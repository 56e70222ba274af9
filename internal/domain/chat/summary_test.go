package chat_test

import (
	"strings"
	"testing"
	"time"

	"github.com/rocketman0418/astra-chats/internal/domain/chat"
	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

func mkTurn(convID, prompt, response string, at time.Time) *chat.Turn {
	return &chat.Turn{
		PublicID:       "turn_" + strings.Repeat("a", 16),
		OwnerID:        "owner-1",
		ConversationID: convID,
		Prompt:         prompt,
		Response:       response,
		CreatedAt:      at,
	}
}

func TestSummarize_TitleAndPreviewFromFirstAndLastTurn(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	turns := []*chat.Turn{
		mkTurn("conv-a", "second", "second response", base.Add(time.Minute)),
		mkTurn("conv-a", "first", "first response", base),
	}

	summaries, err := chat.Summarize(turns)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Summarize() returned %d summaries, want 1", len(summaries))
	}

	got := summaries[0]
	if got.ID != "conv-a" {
		t.Errorf("ID = %q, want %q", got.ID, "conv-a")
	}
	if got.Title != "first" {
		t.Errorf("Title = %q, want %q (earliest prompt)", got.Title, "first")
	}
	if got.LastMessagePreview != "second response" {
		t.Errorf("LastMessagePreview = %q, want %q (latest response)", got.LastMessagePreview, "second response")
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v (earliest turn)", got.CreatedAt, base)
	}
	if got.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", got.MessageCount)
	}
}

func TestSummarize_OrderIndependent(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	turns := []*chat.Turn{
		mkTurn("conv-a", "a1", "ra1", base),
		mkTurn("conv-a", "a2", "ra2", base.Add(time.Minute)),
		mkTurn("conv-b", "b1", "rb1", base.Add(2*time.Minute)),
		mkTurn("conv-b", "b2", "rb2", base.Add(3*time.Minute)),
		mkTurn("conv-a", "a3", "ra3", base.Add(4*time.Minute)),
	}

	orderings := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
	}

	var want []chat.ConversationSummary
	for i, order := range orderings {
		shuffled := make([]*chat.Turn, len(turns))
		for j, idx := range order {
			shuffled[j] = turns[idx]
		}
		got, err := chat.Summarize(shuffled)
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if i == 0 {
			want = got
			continue
		}
		if len(got) != len(want) {
			t.Fatalf("ordering %d: got %d summaries, want %d", i, len(got), len(want))
		}
		for j := range got {
			if got[j] != want[j] {
				t.Errorf("ordering %d: summary[%d] = %+v, want %+v", i, j, got[j], want[j])
			}
		}
	}
}

func TestSummarize_NewestConversationFirst(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	turns := []*chat.Turn{
		mkTurn("conv-old", "old", "old", base),
		mkTurn("conv-new", "new", "new", base.Add(time.Hour)),
	}

	summaries, err := chat.Summarize(turns)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].ID != "conv-new" || summaries[1].ID != "conv-old" {
		t.Errorf("order = [%s, %s], want [conv-new, conv-old]", summaries[0].ID, summaries[1].ID)
	}
}

func TestSummarize_Truncation(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	longPrompt := strings.Repeat("p", 73)
	longResponse := strings.Repeat("r", 140)

	summaries, err := chat.Summarize([]*chat.Turn{mkTurn("conv-a", longPrompt, longResponse, base)})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	got := summaries[0]
	if want := strings.Repeat("p", 50) + "..."; got.Title != want {
		t.Errorf("Title = %q, want %q", got.Title, want)
	}
	if want := strings.Repeat("r", 100) + "..."; got.LastMessagePreview != want {
		t.Errorf("LastMessagePreview = %q, want %q", got.LastMessagePreview, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "shorter than limit is verbatim",
			input:  "hello",
			maxLen: 50,
			want:   "hello",
		},
		{
			name:   "exactly at limit is verbatim",
			input:  strings.Repeat("x", 50),
			maxLen: 50,
			want:   strings.Repeat("x", 50),
		},
		{
			name:   "one over limit gains ellipsis",
			input:  strings.Repeat("x", 51),
			maxLen: 50,
			want:   strings.Repeat("x", 50) + "...",
		},
		{
			name:   "multibyte runes cut on rune boundary",
			input:  strings.Repeat("é", 60),
			maxLen: 50,
			want:   strings.Repeat("é", 50) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chat.Truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestSummarize_MalformedTurn(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		turns []*chat.Turn
	}{
		{
			name:  "missing timestamp",
			turns: []*chat.Turn{mkTurn("conv-a", "p", "r", time.Time{})},
		},
		{
			name:  "missing conversation id",
			turns: []*chat.Turn{mkTurn("", "p", "r", base)},
		},
		{
			name:  "nil turn",
			turns: []*chat.Turn{nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chat.Summarize(tt.turns)
			if err == nil {
				t.Fatal("Summarize() error = nil, want malformed turn error")
			}
			if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeMalformedTurn) {
				t.Errorf("Summarize() error type = %v, want MALFORMED_TURN", err)
			}
		})
	}
}

func TestSummarize_Empty(t *testing.T) {
	summaries, err := chat.Summarize(nil)
	if err != nil {
		t.Fatalf("Summarize(nil) error = %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("Summarize(nil) = %v, want empty", summaries)
	}
}
