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

// MaxCommentLength bounds a single comment.
const MaxCommentLength = 5000

// CommentService manages discussion threads on snippets.
type CommentService struct {
	comments repository.CommentRepository
	snippets repository.SnippetRepository
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, snippets repository.SnippetRepository, logger *slog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		snippets: snippets,
		logger:   logger,
	}
}

// Create appends a comment by author to a snippet's thread.
//
// The snippet is checked first, so commenting on a missing snippet is
// ErrNotFound even when the text is also blank.
func (s *CommentService) Create(ctx context.Context, snippetID, text string, author *model.User) (*model.Comment, error) {
	if _, err := s.snippets.GetByID(ctx, snippetID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.MissingField("text")
	}
	if len(text) > MaxCommentLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	comment := &model.Comment{
		SnippetID:     snippetID,
		Text:          text,
		CreatedBy:     author.ID,
		CreatedByName: author.DisplayName,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("snippetID", snippetID),
	)
	return comment, nil
}

// List returns a snippet's thread, oldest first. A snippet with no
// comments, or no snippet at all, yields an empty list.
func (s *CommentService) List(ctx context.Context, snippetID string) ([]model.Comment, error) {
	comments, err := s.comments.ListComments(ctx, snippetID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment. Only its author may do so; NotFound is
// reported before Forbidden.
func (s *CommentService) Delete(ctx context.Context, id string, caller *model.User) error {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.CreatedBy != caller.ID {
		return apperror.Forbidden("only the author can delete this comment")
	}

	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.logger.Info("comment deleted",
		slog.String("id", id),
		slog.String("by", caller.ID),
	)
	return nil
}
