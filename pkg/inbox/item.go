// Package inbox stores captured text awaiting triage.
package inbox

import (
	"context"
	"time"
)

// Item is a captured piece of text. Items are never mutated: triage either
// converts them into a task or reference note, or discards them.
type Item struct {
	ID        int64     `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Store is the contract for inbox persistence.
type Store interface {
	Create(ctx context.Context, text string, createdAt time.Time) (*Item, error)
	Get(ctx context.Context, id int64) (*Item, error)
	// List returns all items, newest first.
	List(ctx context.Context) ([]Item, error)
	// Delete removes an item. Deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
