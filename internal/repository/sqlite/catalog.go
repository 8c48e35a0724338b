package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/repository"
)

var (
	_ repository.CategoryRepository = (*DB)(nil)
	_ repository.TagRepository      = (*DB)(nil)
)

// CreateCategory inserts a category. Names are globally unique.
func (db *DB) CreateCategory(ctx context.Context, category *model.Category) error {
	category.ID = uuid.NewString()
	category.CreatedAt = db.now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO categories (id, name, created_by, created_at) VALUES (?, ?, ?, ?)`,
		category.ID, category.Name, category.CreatedBy, category.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("category", category.Name)
		}
		return fmt.Errorf("sqlite: creating category: %w", err)
	}
	return nil
}

// ListCategories returns the stored categories ordered by name. The virtual
// default category is not stored and is added by the service layer.
func (db *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	err := db.conn.SelectContext(ctx, &categories,
		`SELECT c.id, c.name, c.created_by, COALESCE(u.display_name, '') AS created_by_name, c.created_at
		 FROM categories c
		 LEFT JOIN users u ON u.id = c.created_by
		 ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory deletes the category and, in the same transaction, moves
// every snippet filed under its name back to model.DefaultCategory. The
// retarget counts as an edit by updatedBy.
func (db *DB) DeleteCategory(ctx context.Context, id, updatedBy string) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		var name string
		err := tx.GetContext(ctx, &name, `SELECT name FROM categories WHERE id = ?`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.NotFound("category", id)
			}
			return fmt.Errorf("sqlite: getting category %s: %w", id, err)
		}

		// MAX keeps updated_at from ever moving backwards.
		_, err = tx.ExecContext(ctx,
			`UPDATE snippets
			 SET category = ?, updated_by = ?, updated_at = MAX(updated_at, ?)
			 WHERE category = ?`,
			model.DefaultCategory, updatedBy, db.now(), name,
		)
		if err != nil {
			return fmt.Errorf("sqlite: retargeting snippets of category %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting category %s: %w", id, err)
		}
		return nil
	})
}

// CreateTag inserts a tag. Names are globally unique.
func (db *DB) CreateTag(ctx context.Context, tag *model.Tag) error {
	tag.ID = uuid.NewString()
	tag.CreatedAt = db.now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_by, created_at) VALUES (?, ?, ?, ?)`,
		tag.ID, tag.Name, tag.CreatedBy, tag.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("tag", tag.Name)
		}
		return fmt.Errorf("sqlite: creating tag: %w", err)
	}
	return nil
}

// ListTags returns all tags ordered by name.
func (db *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags := []model.Tag{}
	err := db.conn.SelectContext(ctx, &tags,
		`SELECT t.id, t.name, t.created_by, COALESCE(u.display_name, '') AS created_by_name, t.created_at
		 FROM tags t
		 LEFT JOIN users u ON u.id = t.created_by
		 ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	return tags, nil
}

// DeleteTag deletes the tag and strips its name from every snippet that
// carries it. Only those snippets get updatedBy/updated_at bumped; snippets
// without the tag are left untouched.
func (db *DB) DeleteTag(ctx context.Context, id, updatedBy string) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		var name string
		err := tx.GetContext(ctx, &name, `SELECT name FROM tags WHERE id = ?`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.NotFound("tag", id)
			}
			return fmt.Errorf("sqlite: getting tag %s: %w", id, err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE snippets
			 SET updated_by = ?, updated_at = MAX(updated_at, ?)
			 WHERE id IN (SELECT snippet_id FROM snippet_tags WHERE tag = ?)`,
			updatedBy, db.now(), name,
		)
		if err != nil {
			return fmt.Errorf("sqlite: touching snippets tagged %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM snippet_tags WHERE tag = ?`, name); err != nil {
			return fmt.Errorf("sqlite: untagging %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting tag %s: %w", id, err)
		}
		return nil
	})
}
