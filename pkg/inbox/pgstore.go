package inbox

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"lifeos/internal/db"
)

// PgStore is a PostgreSQL-backed inbox store. Calls made with a context
// produced by db.TxManager run inside that transaction.
type PgStore struct {
	db db.Querier
}

// NewPgStore creates a PgStore.
func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{db: q}
}

// Create inserts a new item.
func (s *PgStore) Create(ctx context.Context, text string, createdAt time.Time) (*Item, error) {
	var it Item
	err := db.QuerierFromCtx(ctx, s.db).QueryRow(ctx, `
		INSERT INTO inbox (text, created_at)
		VALUES ($1, $2)
		RETURNING id, text, created_at`,
		text, createdAt).
		Scan(&it.ID, &it.Text, &it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create inbox item: %w", err)
	}
	return &it, nil
}

// Get retrieves a single item by ID.
func (s *PgStore) Get(ctx context.Context, id int64) (*Item, error) {
	var it Item
	err := pgxscan.Get(ctx, db.QuerierFromCtx(ctx, s.db), &it,
		`SELECT id, text, created_at FROM inbox WHERE id = $1`, id)
	if err != nil {
		return nil, db.MapError(err, "inbox item", id)
	}
	return &it, nil
}

// List returns every item, most recently captured first.
func (s *PgStore) List(ctx context.Context) ([]Item, error) {
	items := []Item{}
	err := pgxscan.Select(ctx, db.QuerierFromCtx(ctx, s.db), &items,
		`SELECT id, text, created_at FROM inbox ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return items, nil
}

// Delete removes an item by ID.
func (s *PgStore) Delete(ctx context.Context, id int64) error {
	_, err := db.QuerierFromCtx(ctx, s.db).Exec(ctx, `DELETE FROM inbox WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err, "inbox item", id)
	}
	return nil
}

// Count returns the number of items awaiting triage.
func (s *PgStore) Count(ctx context.Context) (int, error) {
	var n int
	err := db.QuerierFromCtx(ctx, s.db).QueryRow(ctx, `SELECT COUNT(*) FROM inbox`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count inbox: %w", err)
	}
	return n, nil
}
