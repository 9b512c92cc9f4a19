// Package reference stores notes kept for later lookup. A note is the
// terminal form of an inbox item that needs no action.
package reference

import (
	"context"
	"time"
)

// Note is a piece of reference material.
type Note struct {
	ID        int64     `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Store is the contract for reference persistence.
type Store interface {
	Create(ctx context.Context, text string, createdAt time.Time) (*Note, error)

	// Get returns a note by ID.
	Get(ctx context.Context, id int64) (*Note, error)

	// List returns all notes, newest first.
	List(ctx context.Context) ([]Note, error)

	Count(ctx context.Context) (int, error)
}
