package task

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"lifeos/internal/db"
)

const taskColumns = `id, title, kind, status, created_at, last_seen_at, days_skipped, snooze_until, snooze_count, leverage, resistance, est_minutes`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PgStore is a PostgreSQL-backed task store.
type PgStore struct {
	db db.Querier
}

// NewPgStore creates a PgStore.
func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{db: q}
}

// Create inserts a new task. Status defaults to open; the snooze and skip
// counters always start at zero.
func (s *PgStore) Create(ctx context.Context, t *Task) (*Task, error) {
	if t.Status == "" {
		t.Status = StatusOpen
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	row := db.QuerierFromCtx(ctx, s.db).QueryRow(ctx, `
		INSERT INTO tasks (title, kind, status, created_at, last_seen_at, days_skipped, snooze_until, snooze_count, leverage, resistance, est_minutes)
		VALUES ($1, $2, $3, $4, NULL, 0, NULL, 0, $5, $6, $7)
		RETURNING `+taskColumns,
		t.Title, string(t.Kind), string(t.Status), t.CreatedAt, t.Leverage, t.Resistance, t.EstMinutes)

	created, err := scanTask(row)
	if err != nil {
		return nil, db.MapError(err, "task", 0)
	}
	return created, nil
}

// Get retrieves a single task by ID.
func (s *PgStore) Get(ctx context.Context, id int64) (*Task, error) {
	row := db.QuerierFromCtx(ctx, s.db).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, db.MapError(err, "task", id)
	}
	return t, nil
}

// List returns tasks matching f, newest first.
func (s *PgStore) List(ctx context.Context, f Filter) ([]Task, error) {
	q := psql.Select(taskColumns).From("tasks").OrderBy("id DESC")
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.Kind != "" {
		q = q.Where(sq.Eq{"kind": string(f.Kind)})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return s.query(ctx, q, "list tasks")
}

// ListOpen returns open tasks of kind that are eligible on day: never
// snoozed, or snoozed until day or earlier. Ordering is by id only.
func (s *PgStore) ListOpen(ctx context.Context, kind Kind, day time.Time, limit int) ([]Task, error) {
	q := psql.Select(taskColumns).From("tasks").
		Where(sq.Eq{"status": string(StatusOpen)}).
		Where(sq.Eq{"kind": string(kind)}).
		Where(sq.Or{
			sq.Eq{"snooze_until": nil},
			sq.LtOrEq{"snooze_until": dateOnly(day)},
		}).
		OrderBy("id DESC").
		Limit(uint64(limit))
	return s.query(ctx, q, "list open "+string(kind)+" tasks")
}

// Complete marks a task done.
func (s *PgStore) Complete(ctx context.Context, id int64) error {
	_, err := db.QuerierFromCtx(ctx, s.db).Exec(ctx,
		`UPDATE tasks SET status = $1 WHERE id = $2`, string(StatusDone), id)
	if err != nil {
		return db.MapError(err, "task", id)
	}
	return nil
}

// Snooze hides a task from the daily lists until the given date.
// snooze_count is left untouched.
func (s *PgStore) Snooze(ctx context.Context, id int64, until time.Time) error {
	_, err := db.QuerierFromCtx(ctx, s.db).Exec(ctx,
		`UPDATE tasks SET snooze_until = $1 WHERE id = $2`, dateOnly(until), id)
	if err != nil {
		return db.MapError(err, "task", id)
	}
	return nil
}

// Count returns the number of tasks with the given status; empty status counts all.
func (s *PgStore) Count(ctx context.Context, status Status) (int, error) {
	q := psql.Select("COUNT(*)").From("tasks")
	if status != "" {
		q = q.Where(sq.Eq{"status": string(status)})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int
	if err := db.QuerierFromCtx(ctx, s.db).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (s *PgStore) query(ctx context.Context, q sq.SelectBuilder, op string) ([]Task, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}
	rows, err := db.QuerierFromCtx(ctx, s.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}
	return tasks, nil
}

func scanTask(row interface{ Scan(dest ...any) error }) (*Task, error) {
	var t Task
	var kind, status string
	err := row.Scan(&t.ID, &t.Title, &kind, &status, &t.CreatedAt, &t.LastSeenAt,
		&t.DaysSkipped, &t.SnoozeUntil, &t.SnoozeCount, &t.Leverage, &t.Resistance, &t.EstMinutes)
	if err != nil {
		return nil, err
	}
	t.Kind = Kind(kind)
	t.Status = Status(status)
	return &t, nil
}

// dateOnly drops the clock part so the value binds cleanly to a DATE column.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
