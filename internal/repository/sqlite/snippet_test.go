package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/repository"
)

// =========================================================================
// CREATE / GET
// =========================================================================

func TestCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	snippet := &model.Snippet{
		Title:     "Active users",
		Content:   "SELECT * FROM users WHERE active = 1",
		Tags:      []string{"SELECT", "JOIN", "SELECT", ""},
		Notes:     "first ten only",
		CreatedBy: owner.ID,
	}
	require.NoError(t, db.Create(context.Background(), snippet))

	assert.NotEmpty(t, snippet.ID)
	assert.False(t, snippet.CreatedAt.IsZero())
	assert.True(t, snippet.CreatedAt.Equal(snippet.UpdatedAt))
	assert.Equal(t, model.DefaultCategory, snippet.Category)
	assert.Equal(t, owner.ID, snippet.UpdatedBy)
	assert.Equal(t, []string{"JOIN", "SELECT"}, snippet.Tags)

	found, err := db.GetByID(context.Background(), snippet.ID)
	require.NoError(t, err)
	assert.Equal(t, snippet.Title, found.Title)
	assert.Equal(t, snippet.Content, found.Content)
	assert.Equal(t, "first ten only", found.Notes)
	assert.Equal(t, []string{"JOIN", "SELECT"}, found.Tags)
	assert.Equal(t, owner.DisplayName, found.CreatedByName)
	assert.Equal(t, owner.DisplayName, found.UpdatedByName)
	assert.True(t, found.UpdatedAt.Equal(snippet.UpdatedAt))
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetByID_NoTagsIsEmptySlice(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	snippet := createTestSnippet(t, db, owner, "untagged")

	found, err := db.GetByID(context.Background(), snippet.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.Tags)
	assert.Empty(t, found.Tags)
}

// =========================================================================
// LIST
// =========================================================================

func TestList_Empty(t *testing.T) {
	db := newTestDB(t)

	snippets, err := db.List(context.Background(), repository.ListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, snippets)
	assert.Len(t, snippets, 0)
}

func TestList_OrderedByUpdatedAtDesc(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	first := createTestSnippet(t, db, owner, "first", "A")
	second := createTestSnippet(t, db, owner, "second", "B")
	third := createTestSnippet(t, db, owner, "third")

	snippets, err := db.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, snippets, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(snippets))
	assert.Equal(t, []string{"B"}, snippets[1].Tags)
	assert.Equal(t, []string{"A"}, snippets[2].Tags)

	// Touching the oldest snippet moves it to the front.
	first.Notes = "edited"
	require.NoError(t, db.Update(ctx, first))

	snippets, err = db.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, third.ID, second.ID}, ids(snippets))
}

func TestList_Pagination(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	for i := 0; i < 5; i++ {
		createTestSnippet(t, db, owner, "snippet")
	}

	page1, err := db.List(context.Background(), repository.ListOptions{Limit: 2})
	require.NoError(t, err)
	page3, err := db.List(context.Background(), repository.ListOptions{Limit: 2, Offset: 4})
	require.NoError(t, err)
	all, err := db.List(context.Background(), repository.ListOptions{})
	require.NoError(t, err)

	assert.Len(t, page1, 2)
	assert.Len(t, page3, 1)
	assert.Len(t, all, 5)
	assert.NotEqual(t, page1[0].ID, page3[0].ID)
}

func TestList_UnpagedFeedBeyondVariableLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	// More snippets than SQLite allows bound variables in one statement.
	const n = 33000
	stamp := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := db.conn.ExecContext(ctx, `
		WITH RECURSIVE seq(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM seq WHERE n < ?)
		INSERT INTO snippets (id, title, content, category, notes, created_by, created_at, updated_by, updated_at)
		SELECT printf('s%05d', n), 'bulk', 'SELECT 1', 'uncategorized', '', ?, ?, ?, ? FROM seq`,
		n, owner.ID, stamp, owner.ID, stamp)
	require.NoError(t, err)
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO snippet_tags (snippet_id, tag) VALUES ('s00001', 'FIRST'), ('s33000', 'LAST'), ('s33000', 'BULK')`)
	require.NoError(t, err)

	snippets, err := db.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, snippets, n)

	// Equal timestamps fall back to id order.
	assert.Equal(t, "s00001", snippets[0].ID)
	assert.Equal(t, []string{"FIRST"}, snippets[0].Tags)
	assert.Equal(t, "s33000", snippets[n-1].ID)
	assert.Equal(t, []string{"BULK", "LAST"}, snippets[n-1].Tags)
	assert.Empty(t, snippets[tagBatchSize].Tags)
}

// =========================================================================
// UPDATE
// =========================================================================

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	editor := createTestUser(t, db, "editor@example.com")
	snippet := createTestSnippet(t, db, owner, "original", "OLD")
	before := snippet.UpdatedAt

	snippet.Title = "renamed"
	snippet.Category = "Reports"
	snippet.Tags = []string{"NEW"}
	snippet.UpdatedBy = editor.ID
	require.NoError(t, db.Update(ctx, snippet))
	assert.True(t, snippet.UpdatedAt.After(before))

	found, err := db.GetByID(ctx, snippet.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Title)
	assert.Equal(t, "Reports", found.Category)
	assert.Equal(t, []string{"NEW"}, found.Tags)
	assert.Equal(t, owner.ID, found.CreatedBy)
	assert.Equal(t, editor.ID, found.UpdatedBy)
	assert.Equal(t, editor.DisplayName, found.UpdatedByName)
}

func TestUpdate_NeverMovesUpdatedAtBackwards(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	snippet := createTestSnippet(t, db, owner, "s")

	// Pretend the stored value is far in the future relative to the clock.
	future := snippet.UpdatedAt.AddDate(1, 0, 0)
	snippet.UpdatedAt = future
	require.NoError(t, db.Update(context.Background(), snippet))
	assert.True(t, snippet.UpdatedAt.Equal(future))
}

func TestUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	snippet := &model.Snippet{ID: "nonexistent", Title: "t", Content: "c", Category: model.DefaultCategory}
	err := db.Update(context.Background(), snippet)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE
// =========================================================================

func TestDelete_CascadesComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	doomed := createTestSnippet(t, db, owner, "doomed", "X")
	survivor := createTestSnippet(t, db, owner, "survivor", "X")

	for _, s := range []*model.Snippet{doomed, doomed, survivor} {
		require.NoError(t, db.CreateComment(ctx, &model.Comment{SnippetID: s.ID, Text: "hi", CreatedBy: owner.ID}))
	}

	require.NoError(t, db.Delete(ctx, doomed.ID))

	_, err := db.GetByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var orphans int
	require.NoError(t, db.conn.GetContext(ctx, &orphans,
		`SELECT COUNT(*) FROM comments c WHERE NOT EXISTS (SELECT 1 FROM snippets s WHERE s.id = c.snippet_id)`))
	assert.Zero(t, orphans)

	var links int
	require.NoError(t, db.conn.GetContext(ctx, &links, `SELECT COUNT(*) FROM snippet_tags WHERE snippet_id = ?`, doomed.ID))
	assert.Zero(t, links)

	remaining, err := db.ListComments(ctx, survivor.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Delete(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func ids(snippets []model.Snippet) []string {
	out := make([]string, len(snippets))
	for i, s := range snippets {
		out[i] = s.ID
	}
	return out
}
