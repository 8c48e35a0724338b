package model

import "time"

// Comment is a single entry in a snippet's discussion thread.
type Comment struct {
	ID            string    `json:"id"            db:"id"`
	SnippetID     string    `json:"snippetId"     db:"snippet_id"`
	Text          string    `json:"text"          db:"text"`
	CreatedBy     string    `json:"createdBy"     db:"created_by"`
	CreatedByName string    `json:"createdByName" db:"created_by_name"`
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
}
