package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/repository/sqlite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newStore opens an in-memory database whose clock advances one second per
// read, so feed order is fully determined by call order.
func newStore(t *testing.T) *sqlite.DB {
	t.Helper()

	var mu sync.Mutex
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}

	db, err := sqlite.New(":memory:", sqlite.WithClock(clock))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustUser(t *testing.T, db *sqlite.DB, email, name string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x", DisplayName: name}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return user
}

func ptr[T any](v T) *T { return &v }
