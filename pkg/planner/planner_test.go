package planner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeos/pkg/task"
)

// memTasks applies the same eligibility rule as the SQL store.
type memTasks struct {
	tasks   map[int64]*task.Task
	nextID  int64
	listErr error
}

func newMemTasks() *memTasks {
	return &memTasks{tasks: map[int64]*task.Task{}}
}

func (m *memTasks) add(title string, kind task.Kind) int64 {
	m.nextID++
	m.tasks[m.nextID] = &task.Task{ID: m.nextID, Title: title, Kind: kind, Status: task.StatusOpen}
	return m.nextID
}

func (m *memTasks) ListOpen(_ context.Context, kind task.Kind, day time.Time, limit int) ([]task.Task, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []task.Task{}
	for _, t := range m.tasks {
		if t.Status != task.StatusOpen || t.Kind != kind {
			continue
		}
		if t.SnoozeUntil != nil && t.SnoozeUntil.After(day) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memTasks) Complete(_ context.Context, id int64) error {
	if t, ok := m.tasks[id]; ok {
		t.Status = task.StatusDone
	}
	return nil
}

func (m *memTasks) Snooze(_ context.Context, id int64, until time.Time) error {
	if t, ok := m.tasks[id]; ok {
		u := until
		t.SnoozeUntil = &u
	}
	return nil
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 14, 30, 0, 0, time.UTC) }
}

func newTestPlanner(store *memTasks) *Planner {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, log).WithClock(fixedClock(2026, time.October, 19))
}

func titles(ts []task.Task) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Title
	}
	return out
}

func TestTodayLimitsAndOrder(t *testing.T) {
	store := newMemTasks()
	for i := 0; i < 5; i++ {
		store.add("frog"+string(rune('A'+i)), task.KindFrog)
	}
	for i := 0; i < 10; i++ {
		store.add("tadpole"+string(rune('A'+i)), task.KindTadpole)
	}
	p := newTestPlanner(store)

	lists, err := p.Today(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-10-19", lists.Date)
	assert.Equal(t, []string{"frogE", "frogD", "frogC"}, titles(lists.Frogs))
	assert.Len(t, lists.Tadpoles, TadpoleLimit)
	assert.Equal(t, "tadpoleJ", lists.Tadpoles[0].Title)
}

func TestDoneTasksNeverListed(t *testing.T) {
	store := newMemTasks()
	keep := store.add("keep", task.KindFrog)
	gone := store.add("gone", task.KindFrog)
	p := newTestPlanner(store)

	require.NoError(t, p.Complete(context.Background(), gone))

	lists, err := p.Today(context.Background())
	require.NoError(t, err)
	require.Len(t, lists.Frogs, 1)
	assert.Equal(t, keep, lists.Frogs[0].ID)
}

func TestSnoozeHidesUntilTomorrow(t *testing.T) {
	store := newMemTasks()
	id := store.add("Call dentist", task.KindFrog)
	p := newTestPlanner(store)
	ctx := context.Background()

	require.NoError(t, p.Snooze(ctx, id))
	assert.Equal(t, 0, store.tasks[id].SnoozeCount, "snooze must not bump snooze_count")

	today, err := p.Today(ctx)
	require.NoError(t, err)
	assert.Empty(t, today.Frogs)

	tomorrow, err := p.WithClock(fixedClock(2026, time.October, 20)).Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Call dentist"}, titles(tomorrow.Frogs))

	later, err := p.ForDate(ctx, "2026-11-01")
	require.NoError(t, err)
	assert.Len(t, later.Frogs, 1)
}

func TestCompletedSnoozedTaskStaysHidden(t *testing.T) {
	store := newMemTasks()
	id := store.add("Renew passport", task.KindFrog)
	p := newTestPlanner(store)
	ctx := context.Background()

	require.NoError(t, p.Snooze(ctx, id))
	require.NoError(t, p.Complete(ctx, id))

	for _, day := range []string{"2026-10-19", "2026-10-20", "2026-12-31"} {
		lists, err := p.ForDate(ctx, day)
		require.NoError(t, err)
		assert.Empty(t, lists.Frogs, day)
	}
	next, err := p.WithClock(fixedClock(2026, time.October, 20)).Today(ctx)
	require.NoError(t, err)
	assert.Empty(t, next.Frogs)
}

func TestSnoozeMissingIsNoop(t *testing.T) {
	p := newTestPlanner(newMemTasks())
	assert.NoError(t, p.Snooze(context.Background(), 404))
	assert.NoError(t, p.Complete(context.Background(), 404))
}

func TestForDateMalformed(t *testing.T) {
	store := newMemTasks()
	store.add("x", task.KindFrog)
	p := newTestPlanner(store)

	for _, raw := range []string{"", "tomorrow", "2026-13-40", "19/10/2026"} {
		lists, err := p.ForDate(context.Background(), raw)
		require.NoError(t, err, raw)
		assert.Empty(t, lists.Frogs, raw)
		assert.Empty(t, lists.Tadpoles, raw)
	}
}

func TestForDateUsesGivenDay(t *testing.T) {
	store := newMemTasks()
	id := store.add("x", task.KindTadpole)
	until := time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)
	store.tasks[id].SnoozeUntil = &until
	p := newTestPlanner(store)

	before, err := p.ForDate(context.Background(), "2026-10-24")
	require.NoError(t, err)
	assert.Empty(t, before.Tadpoles)

	on, err := p.ForDate(context.Background(), "2026-10-25")
	require.NoError(t, err)
	assert.Len(t, on.Tadpoles, 1)
	assert.Equal(t, "2026-10-25", on.Date)
}

func TestTodayStoreError(t *testing.T) {
	store := newMemTasks()
	store.listErr = errors.New("connection refused")
	p := newTestPlanner(store)

	_, err := p.Today(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.listErr)
}
