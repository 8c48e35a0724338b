package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sakif/sql-manager/internal/model"
)

// tickingClock returns a clock that advances one second per call, so every
// write gets a strictly later timestamp than the one before it.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// newTestDB opens a fresh in-memory database. Every test gets its own.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:", WithClock(tickingClock()))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$04$not-a-real-hash",
		DisplayName:  "User " + email,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestSnippet(t *testing.T, db *DB, owner *model.User, title string, tags ...string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		Title:     title,
		Content:   "SELECT 1",
		Tags:      tags,
		CreatedBy: owner.ID,
	}
	if err := db.Create(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}
