// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces ownership, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services take repository interfaces, never *sqlite.DB, and return
// apperror values the handler layer maps to HTTP statuses. Every mutating
// method takes the calling *model.User; services never read identity from
// a request themselves.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/repository"
)

// Validation limits.
const (
	MaxTitleLength   = 200
	MaxContentLength = 100000 // ~100KB of SQL
	MaxListLimit     = 100
)

// SnippetService handles business logic for SQL snippets.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// CreateSnippetInput carries a new snippet's fields. Category, Tags and
// Notes are optional.
type CreateSnippetInput struct {
	Title    string
	Content  string
	Category string
	Tags     []string
	Notes    string
}

// Create validates and saves a new snippet owned by owner.
//
// A blank category falls back to model.DefaultCategory. The category name is
// not checked against the catalog: snippets may reference a category nobody
// has created yet.
func (s *SnippetService) Create(ctx context.Context, in CreateSnippetInput, owner *model.User) (*model.Snippet, error) {
	title, err := validTitle(in.Title)
	if err != nil {
		return nil, err
	}
	content, err := validContent(in.Content)
	if err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		Title:         title,
		Content:       content,
		Category:      categoryOrDefault(in.Category),
		Tags:          trimTags(in.Tags),
		Notes:         in.Notes,
		CreatedBy:     owner.ID,
		CreatedByName: owner.DisplayName,
		UpdatedBy:     owner.ID,
		UpdatedByName: owner.DisplayName,
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("owner", owner.ID),
	)
	return snippet, nil
}

// Get returns a snippet by ID. Any authenticated user may read any snippet.
func (s *SnippetService) Get(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.MissingField("id")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns the shared feed, most recently updated first.
//
// limit <= 0 returns everything; larger limits are clamped to MaxListLimit.
func (s *SnippetService) List(ctx context.Context, limit, offset int) ([]model.Snippet, error) {
	opts := repository.ListOptions{}
	if limit > 0 {
		opts.Limit = min(limit, MaxListLimit)
		opts.Offset = max(offset, 0)
	}

	snippets, err := s.repo.List(ctx, opts)
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return snippets, nil
}

// Update applies patch to a snippet owned by caller.
//
// ORDER OF CHECKS:
//  1. The snippet must exist (ErrNotFound)
//  2. caller must be its creator (ErrForbidden)
//  3. Present fields must be valid (ErrValidation)
//
// Every successful update, even an empty patch, stamps updatedBy and moves
// the snippet to the front of the feed.
func (s *SnippetService) Update(ctx context.Context, id string, patch model.SnippetPatch, caller *model.User) (*model.Snippet, error) {
	snippet, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if snippet.CreatedBy != caller.ID {
		return nil, apperror.Forbidden("only the creator can edit this snippet")
	}

	if patch.Title != nil {
		if snippet.Title, err = validTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Content != nil {
		if snippet.Content, err = validContent(*patch.Content); err != nil {
			return nil, err
		}
	}
	if patch.Category != nil {
		snippet.Category = categoryOrDefault(*patch.Category)
	}
	if patch.Tags != nil {
		snippet.Tags = trimTags(*patch.Tags)
	}
	if patch.Notes != nil {
		snippet.Notes = *patch.Notes
	}
	snippet.UpdatedBy = caller.ID
	snippet.UpdatedByName = caller.DisplayName

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", snippet.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.String("id", snippet.ID),
		slog.String("by", caller.ID),
	)
	return snippet, nil
}

// Delete removes a snippet owned by caller, together with its comments.
// NotFound is reported before Forbidden.
func (s *SnippetService) Delete(ctx context.Context, id string, caller *model.User) error {
	snippet, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if snippet.CreatedBy != caller.ID {
		return apperror.Forbidden("only the creator can delete this snippet")
	}

	if err := s.repo.Delete(ctx, snippet.ID); err != nil {
		return fmt.Errorf("deleting snippet: %w", err)
	}

	s.logger.Info("snippet deleted",
		slog.String("id", snippet.ID),
		slog.String("by", caller.ID),
	)
	return nil
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperror.MissingField("title")
	}
	if len(title) > MaxTitleLength {
		return "", apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	return title, nil
}

// validContent returns content unchanged; surrounding whitespace only
// matters for the emptiness check.
func validContent(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", apperror.MissingField("content")
	}
	if len(content) > MaxContentLength {
		return "", apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	return content, nil
}

func categoryOrDefault(category string) string {
	if category = strings.TrimSpace(category); category == "" {
		return model.DefaultCategory
	}
	return category
}

// trimTags trims each tag. Blanks and duplicates are dropped by the store.
func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimSpace(t))
	}
	return out
}
