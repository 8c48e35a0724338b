// Package repository declares the storage contracts the service layer depends on.
// The only implementation lives in repository/sqlite; tests may substitute fakes.
package repository

import (
	"context"

	"github.com/sakif/sql-manager/internal/model"
)

// ListOptions pages through a listing. A zero Limit means "no limit".
type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// CreateUser fails with apperror.ErrConflict when the email is taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	// List orders by updated_at, most recent first.
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	// Delete removes the snippet together with its comments and tag links,
	// atomically.
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	// DeleteCategory moves every snippet in the category back to
	// model.DefaultCategory, attributed to updatedBy, then deletes it.
	DeleteCategory(ctx context.Context, id, updatedBy string) error
}

type TagRepository interface {
	CreateTag(ctx context.Context, tag *model.Tag) error
	ListTags(ctx context.Context) ([]model.Tag, error)
	// DeleteTag strips the tag from every snippet carrying it, attributed
	// to updatedBy, then deletes it.
	DeleteTag(ctx context.Context, id, updatedBy string) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	// ListComments returns the thread oldest first.
	ListComments(ctx context.Context, snippetID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}
