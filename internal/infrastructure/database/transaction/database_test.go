package transaction

import (
	"context"
	"testing"

	"gorm.io/gorm"
)

func TestGetTxPrefersContextTransaction(t *testing.T) {
	root := &gorm.DB{}
	tx := &gorm.DB{}
	db := NewDatabase(root)

	if got := db.GetTx(context.Background()); got != root {
		t.Fatalf("expected root connection without a bound transaction")
	}

	ctx := WithTx(context.Background(), tx)
	if got := db.GetTx(ctx); got != tx {
		t.Fatalf("expected the transaction bound to the context")
	}
}
