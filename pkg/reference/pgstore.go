package reference

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"lifeos/internal/db"
)

// PgStore is a PostgreSQL-backed reference store.
type PgStore struct {
	db db.Querier
}

// NewPgStore creates a PgStore.
func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{db: q}
}

// Create inserts a new note.
func (s *PgStore) Create(ctx context.Context, text string, createdAt time.Time) (*Note, error) {
	var n Note
	err := pgxscan.Get(ctx, db.QuerierFromCtx(ctx, s.db), &n, `
		INSERT INTO reference (text, created_at)
		VALUES ($1, $2)
		RETURNING id, text, created_at`,
		text, createdAt)
	if err != nil {
		return nil, fmt.Errorf("create reference: %w", err)
	}
	return &n, nil
}

// Get returns a note by ID.
func (s *PgStore) Get(ctx context.Context, id int64) (*Note, error) {
	var n Note
	err := pgxscan.Get(ctx, db.QuerierFromCtx(ctx, s.db), &n,
		`SELECT id, text, created_at FROM reference WHERE id = $1`, id)
	if err != nil {
		return nil, db.MapError(err, "reference", id)
	}
	return &n, nil
}

// List returns all notes, newest first.
func (s *PgStore) List(ctx context.Context) ([]Note, error) {
	notes := []Note{}
	err := pgxscan.Select(ctx, db.QuerierFromCtx(ctx, s.db), &notes,
		`SELECT id, text, created_at FROM reference ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	return notes, nil
}

// Count returns the number of notes.
func (s *PgStore) Count(ctx context.Context) (int, error) {
	var n int
	err := db.QuerierFromCtx(ctx, s.db).QueryRow(ctx, `SELECT COUNT(*) FROM reference`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count references: %w", err)
	}
	return n, nil
}
