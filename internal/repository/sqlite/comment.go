package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/repository"
)

var _ repository.CommentRepository = (*DB)(nil)

const selectComment = `
	SELECT c.id, c.snippet_id, c.text, c.created_by,
	       COALESCE(u.display_name, '') AS created_by_name, c.created_at
	FROM comments c
	LEFT JOIN users u ON u.id = c.created_by`

// CreateComment appends a comment to a snippet's thread.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = uuid.NewString()
	comment.CreatedAt = db.now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, snippet_id, text, created_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		comment.ID, comment.SnippetID, comment.Text, comment.CreatedBy, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}
	return nil
}

func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := db.conn.GetContext(ctx, &c, selectComment+` WHERE c.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return &c, nil
}

// ListComments returns a snippet's thread in chronological order.
func (db *DB) ListComments(ctx context.Context, snippetID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := db.conn.SelectContext(ctx, &comments,
		selectComment+` WHERE c.snippet_id = ? ORDER BY c.created_at ASC, c.id ASC`, snippetID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of snippet %s: %w", snippetID, err)
	}
	return comments, nil
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
