package tokens_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sleeplog/internal/tokens"
)

func TestFind(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := tokens.NewStore(db)

	inserted := tokens.Token{
		ID:            "token",
		CredentialsID: "id",
		Expires:       time.Now().Add(100 * time.Second).Round(time.Millisecond).UTC(),
	}

	ctx := context.Background()
	if err := store.Insert(ctx, &inserted); err != nil {
		t.Fatal(err)
	}

	found, err := store.FindByID(ctx, inserted.ID)
	if err != nil {
		t.Fatal(err)
	}

	if !found.Expires.Equal(inserted.Expires) || found.CredentialsID != inserted.CredentialsID {
		t.Logf("inserted: %+v", inserted)
		t.Logf("found: %+v", *found)
		t.Fatal("inserted != found")
	}
}

func TestFindExpired(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := tokens.NewStore(db)

	inserted := tokens.Token{
		ID:            "token",
		CredentialsID: "id",
		Expires:       time.Now().Add(-100 * time.Second).Round(time.Millisecond),
	}

	ctx := context.Background()
	if err := store.Insert(ctx, &inserted); err != nil {
		t.Fatal(err)
	}

	if _, err := store.FindByID(ctx, inserted.ID); !errors.Is(err, tokens.ErrNotFound) {
		t.Fatalf("expected %q, got %q", tokens.ErrNotFound, err)
	}
}

func TestDelete(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := tokens.NewStore(db)
	ctx := context.Background()

	token := tokens.New("id", time.Now())
	if err := store.Insert(ctx, token); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, token.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.FindByID(ctx, token.ID); !errors.Is(err, tokens.ErrNotFound) {
		t.Fatalf("expected %q, got %q", tokens.ErrNotFound, err)
	}
}
