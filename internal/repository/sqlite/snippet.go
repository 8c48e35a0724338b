package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// If *DB stops satisfying repository.SnippetRepository, this line fails to compile.
var _ repository.SnippetRepository = (*DB)(nil)

// selectSnippet joins the creator and last updater so the feed can show
// display names. LEFT JOIN + COALESCE keeps a snippet visible even if a name
// lookup ever comes back empty.
const selectSnippet = `
	SELECT s.id, s.title, s.content, s.category, s.notes,
	       s.created_by, COALESCE(cu.display_name, '') AS created_by_name, s.created_at,
	       s.updated_by, COALESCE(uu.display_name, '') AS updated_by_name, s.updated_at
	FROM snippets s
	LEFT JOIN users cu ON cu.id = s.created_by
	LEFT JOIN users uu ON uu.id = s.updated_by`

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx, so helpers can run
// inside or outside a transaction.
type queryer interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// Create inserts a new snippet and its tag links in one transaction.
// It fills in ID, CreatedAt and UpdatedAt on the caller's struct.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = uuid.NewString()
	now := db.now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now
	if snippet.Category == "" {
		snippet.Category = model.DefaultCategory
	}
	if snippet.UpdatedBy == "" {
		snippet.UpdatedBy = snippet.CreatedBy
	}

	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO snippets (id, title, content, category, notes, created_by, created_at, updated_by, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snippet.ID,
			snippet.Title,
			snippet.Content,
			snippet.Category,
			snippet.Notes,
			snippet.CreatedBy,
			snippet.CreatedAt,
			snippet.UpdatedBy,
			snippet.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: creating snippet: %w", err)
		}
		return replaceTags(ctx, tx, snippet.ID, snippet.Tags)
	})
	if err != nil {
		return err
	}

	snippet.Tags = normalizedTags(snippet.Tags)
	return nil
}

// GetByID retrieves a single snippet, with tags, by its ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	return getSnippet(ctx, db.conn, id)
}

func getSnippet(ctx context.Context, q queryer, id string) (*model.Snippet, error) {
	var snippet model.Snippet
	err := q.GetContext(ctx, &snippet, selectSnippet+` WHERE s.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	snippets := []model.Snippet{snippet}
	if err := attachTags(ctx, q, snippets); err != nil {
		return nil, err
	}
	return &snippets[0], nil
}

// List returns snippets most-recently-touched first.
//
// The id tie-breaker makes the order total, so two snippets saved within the
// same clock tick still come back in a stable order.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	query := selectSnippet + ` ORDER BY s.updated_at DESC, s.id ASC`
	var args []any
	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, max(opts.Offset, 0))
	}

	snippets := []model.Snippet{}
	if err := db.conn.SelectContext(ctx, &snippets, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}

	if err := attachTags(ctx, db.conn, snippets); err != nil {
		return nil, err
	}
	return snippets, nil
}

// Update writes every mutable field of snippet, including UpdatedBy, and
// advances UpdatedAt.
//
// updated_at never moves backwards: if the clock reads earlier than the
// stored value (clock skew, or two updates in one tick), the stored value is
// reused. The tag set is replaced wholesale in the same transaction.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	now := db.now()
	if now.Before(snippet.UpdatedAt) {
		now = snippet.UpdatedAt
	}
	snippet.UpdatedAt = now

	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE snippets
			 SET title = ?, content = ?, category = ?, notes = ?, updated_by = ?, updated_at = ?
			 WHERE id = ?`,
			snippet.Title,
			snippet.Content,
			snippet.Category,
			snippet.Notes,
			snippet.UpdatedBy,
			snippet.UpdatedAt,
			snippet.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("snippet", snippet.ID)
		}

		return replaceTags(ctx, tx, snippet.ID, snippet.Tags)
	})
	if err != nil {
		return err
	}

	snippet.Tags = normalizedTags(snippet.Tags)
	return nil
}

// Delete removes a snippet and everything hanging off it.
//
// Comments go first, then tag links, then the snippet itself, all inside one
// transaction. If any step fails the whole cascade rolls back, so callers
// never observe comments without a snippet or a snippet without its comments.
func (db *DB) Delete(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE snippet_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting comments of snippet %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM snippet_tags WHERE snippet_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting tags of snippet %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("snippet", id)
		}
		return nil
	})
}

// replaceTags makes snippet_tags for snippetID equal to tags.
func replaceTags(ctx context.Context, tx *sqlx.Tx, snippetID string, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM snippet_tags WHERE snippet_id = ?`, snippetID); err != nil {
		return fmt.Errorf("sqlite: clearing tags of snippet %s: %w", snippetID, err)
	}
	for _, tag := range normalizedTags(tags) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snippet_tags (snippet_id, tag) VALUES (?, ?)`,
			snippetID, tag,
		); err != nil {
			return fmt.Errorf("sqlite: tagging snippet %s: %w", snippetID, err)
		}
	}
	return nil
}

// tagBatchSize caps the ids bound per tag query. SQLite refuses statements
// with more than 32766 variables, and an unpaged feed can exceed that.
const tagBatchSize = 500

// attachTags loads the tag sets of all snippets, tagBatchSize ids per
// IN (...) query.
func attachTags(ctx context.Context, q queryer, snippets []model.Snippet) error {
	if len(snippets) == 0 {
		return nil
	}

	ids := make([]string, len(snippets))
	index := make(map[string]int, len(snippets))
	for i := range snippets {
		ids[i] = snippets[i].ID
		index[snippets[i].ID] = i
		snippets[i].Tags = []string{}
	}

	for start := 0; start < len(ids); start += tagBatchSize {
		batch := ids[start:min(start+tagBatchSize, len(ids))]

		query, args, err := sqlx.In(
			`SELECT snippet_id, tag FROM snippet_tags WHERE snippet_id IN (?) ORDER BY tag`, batch)
		if err != nil {
			return fmt.Errorf("sqlite: building tag query: %w", err)
		}

		var links []struct {
			SnippetID string `db:"snippet_id"`
			Tag       string `db:"tag"`
		}
		if err := q.SelectContext(ctx, &links, q.Rebind(query), args...); err != nil {
			return fmt.Errorf("sqlite: loading snippet tags: %w", err)
		}

		for _, link := range links {
			i := index[link.SnippetID]
			snippets[i].Tags = append(snippets[i].Tags, link.Tag)
		}
	}
	return nil
}

// normalizedTags returns tags deduplicated and sorted; nil becomes empty.
func normalizedTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
