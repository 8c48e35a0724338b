package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/model"
)

func newTestSnippetService(t *testing.T) (*SnippetService, *model.User, *model.User) {
	t.Helper()
	db := newStore(t)
	owner := mustUser(t, db, "owner@example.com", "Owner")
	other := mustUser(t, db, "other@example.com", "Other")
	return NewSnippetService(db, discardLogger()), owner, other
}

func mustSnippet(t *testing.T, s *SnippetService, owner *model.User, title string) *model.Snippet {
	t.Helper()
	snippet, err := s.Create(context.Background(), CreateSnippetInput{Title: title, Content: "SELECT 1"}, owner)
	require.NoError(t, err)
	return snippet
}

// =========================================================================
// Create TESTS
// =========================================================================

func TestSnippetCreate(t *testing.T) {
	s, owner, _ := newTestSnippetService(t)

	snippet, err := s.Create(context.Background(), CreateSnippetInput{
		Title:   "  Active users ",
		Content: "SELECT * FROM users",
		Tags:    []string{" SELECT ", "JOIN", "SELECT", "  "},
		Notes:   "for the weekly report",
	}, owner)
	require.NoError(t, err)

	assert.Equal(t, "Active users", snippet.Title)
	assert.Equal(t, model.DefaultCategory, snippet.Category)
	assert.Equal(t, []string{"JOIN", "SELECT"}, snippet.Tags)
	assert.Equal(t, owner.ID, snippet.CreatedBy)
	assert.Equal(t, owner.ID, snippet.UpdatedBy)
	assert.Equal(t, "Owner", snippet.CreatedByName)

	got, err := s.Get(context.Background(), snippet.ID)
	require.NoError(t, err)
	assert.Equal(t, "for the weekly report", got.Notes)
	assert.Equal(t, "Owner", got.UpdatedByName)
}

func TestSnippetContent_StoredVerbatim(t *testing.T) {
	s, owner, _ := newTestSnippetService(t)
	ctx := context.Background()

	raw := "\n  SELECT *\n  FROM users\n  WHERE active = 1;\n\n"
	created, err := s.Create(ctx, CreateSnippetInput{Title: "indented", Content: raw}, owner)
	require.NoError(t, err)
	assert.Equal(t, raw, created.Content)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, raw, got.Content)

	edited := "\tSELECT 2  "
	updated, err := s.Update(ctx, created.ID, model.SnippetPatch{Content: ptr(edited)}, owner)
	require.NoError(t, err)
	assert.Equal(t, edited, updated.Content)
}

func TestSnippetCreate_Validation(t *testing.T) {
	s, owner, _ := newTestSnippetService(t)

	tests := []struct {
		name string
		in   CreateSnippetInput
	}{
		{"missing title", CreateSnippetInput{Content: "SELECT 1"}},
		{"blank title", CreateSnippetInput{Title: "   ", Content: "SELECT 1"}},
		{"missing content", CreateSnippetInput{Title: "t"}},
		{"blank content", CreateSnippetInput{Title: "t", Content: "\n\t"}},
		{"title too long", CreateSnippetInput{Title: strings.Repeat("a", MaxTitleLength+1), Content: "SELECT 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tt.in, owner)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}

	all, err := s.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// =========================================================================
// List TESTS
// =========================================================================

func TestSnippetList_UpdateMovesToFront(t *testing.T) {
	s, owner, _ := newTestSnippetService(t)
	ctx := context.Background()

	a := mustSnippet(t, s, owner, "a")
	b := mustSnippet(t, s, owner, "b")
	c := mustSnippet(t, s, owner, "c")

	feed, err := s.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, snippetIDs(feed))

	// An empty patch still counts as an edit.
	_, err = s.Update(ctx, a.ID, model.SnippetPatch{}, owner)
	require.NoError(t, err)

	feed, err = s.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, snippetIDs(feed))
}

func TestSnippetList_LimitIsClamped(t *testing.T) {
	s, owner, _ := newTestSnippetService(t)
	for i := 0; i < 3; i++ {
		mustSnippet(t, s, owner, "s")
	}

	page, err := s.List(context.Background(), 2, -5)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	all, err := s.List(context.Background(), MaxListLimit+50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// =========================================================================
// Update TESTS
// =========================================================================

func TestSnippetUpdate_OnlyPresentFieldsChange(t *testing.T) {
	s, owner, _ := newTestSnippetService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, CreateSnippetInput{
		Title: "original", Content: "SELECT 1", Category: "Reports", Tags: []string{"A"}, Notes: "keep me",
	}, owner)
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, model.SnippetPatch{Title: ptr("renamed")}, owner)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "SELECT 1", updated.Content)
	assert.Equal(t, "Reports", updated.Category)
	assert.Equal(t, []string{"A"}, updated.Tags)
	assert.Equal(t, "keep me", updated.Notes)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	// Present-but-empty values are applied.
	updated, err = s.Update(ctx, created.ID, model.SnippetPatch{
		Category: ptr("  "),
		Tags:     ptr([]string{}),
		Notes:    ptr(""),
	}, owner)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCategory, updated.Category)
	assert.Empty(t, updated.Tags)
	assert.Empty(t, updated.Notes)
}

func TestSnippetUpdate_BlankTitleRejected(t *testing.T) {
	s, owner, _ := newTestSnippetService(t)
	snippet := mustSnippet(t, s, owner, "keep")

	_, err := s.Update(context.Background(), snippet.ID, model.SnippetPatch{Title: ptr(" ")}, owner)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = s.Update(context.Background(), snippet.ID, model.SnippetPatch{Content: ptr("")}, owner)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	got, err := s.Get(context.Background(), snippet.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", got.Title)
}

func TestSnippetUpdate_NonOwnerIsForbidden(t *testing.T) {
	s, owner, other := newTestSnippetService(t)
	snippet := mustSnippet(t, s, owner, "mine")

	_, err := s.Update(context.Background(), snippet.ID, model.SnippetPatch{Title: ptr("hijacked")}, other)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	got, err := s.Get(context.Background(), snippet.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
	assert.True(t, got.UpdatedAt.Equal(snippet.UpdatedAt))
}

func TestSnippetUpdate_NotFoundBeforeForbidden(t *testing.T) {
	s, _, other := newTestSnippetService(t)

	_, err := s.Update(context.Background(), "missing", model.SnippetPatch{}, other)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// =========================================================================
// Delete TESTS
// =========================================================================

func TestSnippetDelete(t *testing.T) {
	s, owner, other := newTestSnippetService(t)
	snippet := mustSnippet(t, s, owner, "doomed")

	err := s.Delete(context.Background(), snippet.ID, other)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, s.Delete(context.Background(), snippet.ID, owner))

	_, err = s.Get(context.Background(), snippet.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = s.Delete(context.Background(), snippet.ID, other)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "NotFound comes before Forbidden")
}

func snippetIDs(snippets []model.Snippet) []string {
	ids := make([]string, len(snippets))
	for i, s := range snippets {
		ids[i] = s.ID
	}
	return ids
}
