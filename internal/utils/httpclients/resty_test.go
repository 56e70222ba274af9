package httpclients

import (
	"context"
	"testing"
)

func TestRequestIDFrom(t *testing.T) {
	if got := requestIDFrom(context.Background()); got != "" {
		t.Errorf("requestIDFrom(empty context) = %q, want \"\"", got)
	}

	// The key must match what the request-id middleware stores.
	//nolint:staticcheck // key matches what the error layer reads back
	ctx := context.WithValue(context.Background(), "requestID", "req-123")
	if got := requestIDFrom(ctx); got != "req-123" {
		t.Errorf("requestIDFrom() = %q, want %q", got, "req-123")
	}
}
