package model

import "time"

// DefaultCategory is the sentinel category name every snippet falls back to.
// It exists virtually even when the categories table is empty.
const (
	DefaultCategory   = "uncategorized"
	DefaultCategoryID = "default"
)

// Snippet represents a saved SQL query.
//
// Category is a free-text name, not a foreign key: deleting a category
// rewrites matching snippets back to DefaultCategory instead of failing.
// Tags are likewise plain names stored in the snippet_tags join table.
//
// The *Name fields are display names joined from the users table so the
// feed can show "who wrote this" without a second round trip.
type Snippet struct {
	ID            string    `json:"id"            db:"id"`
	Title         string    `json:"title"         db:"title"`
	Content       string    `json:"content"       db:"content"`
	Category      string    `json:"category"      db:"category"`
	Tags          []string  `json:"tags"          db:"-"`
	Notes         string    `json:"notes"         db:"notes"`
	CreatedBy     string    `json:"createdBy"     db:"created_by"`
	CreatedByName string    `json:"createdByName" db:"created_by_name"`
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
	UpdatedBy     string    `json:"updatedBy"     db:"updated_by"`
	UpdatedByName string    `json:"updatedByName" db:"updated_by_name"`
	UpdatedAt     time.Time `json:"updatedAt"     db:"updated_at"`
}

// SnippetPatch carries a partial update. A nil field means "leave as is",
// which is different from a non-nil pointer to an empty value.
type SnippetPatch struct {
	Title    *string
	Content  *string
	Category *string
	Tags     *[]string
	Notes    *string
}
