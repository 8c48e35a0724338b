package model

import "time"

// Category groups snippets. Names are unique across all users.
type Category struct {
	ID            string    `json:"id"                      db:"id"`
	Name          string    `json:"name"                    db:"name"`
	CreatedBy     string    `json:"createdBy,omitempty"     db:"created_by"`
	CreatedByName string    `json:"createdByName,omitempty" db:"created_by_name"`
	CreatedAt     time.Time `json:"createdAt,omitzero"      db:"created_at"`
}

// Tag labels snippets. Names are unique across all users.
type Tag struct {
	ID            string    `json:"id"            db:"id"`
	Name          string    `json:"name"          db:"name"`
	CreatedBy     string    `json:"createdBy"     db:"created_by"`
	CreatedByName string    `json:"createdByName" db:"created_by_name"`
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
}
