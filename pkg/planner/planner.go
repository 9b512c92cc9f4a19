// Package planner builds the two short daily lists: a few frogs to eat
// first and a handful of tadpoles to fill the gaps.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lifeos/pkg/task"
)

// List sizes. Not configurable.
const (
	FrogLimit    = 3
	TadpoleLimit = 8
)

// DateLayout is the calendar date format accepted by ForDate.
const DateLayout = "2006-01-02"

// Lists is the plan for one day.
type Lists struct {
	Date     string      `json:"date"`
	Frogs    []task.Task `json:"frogs"`
	Tadpoles []task.Task `json:"tadpoles"`
}

type taskStore interface {
	ListOpen(ctx context.Context, kind task.Kind, day time.Time, limit int) ([]task.Task, error)
	Complete(ctx context.Context, id int64) error
	Snooze(ctx context.Context, id int64, until time.Time) error
}

// Planner selects today's tasks and applies the per-task daily actions.
type Planner struct {
	tasks taskStore
	log   *slog.Logger
	now   func() time.Time
}

// New creates a Planner that reads the wall clock.
func New(tasks taskStore, log *slog.Logger) *Planner {
	return &Planner{
		tasks: tasks,
		log:   log.With("service", "planner"),
		now:   time.Now,
	}
}

// WithClock returns a copy of p that uses now as its clock.
func (p *Planner) WithClock(now func() time.Time) *Planner {
	cp := *p
	cp.now = now
	return &cp
}

func (p *Planner) today() time.Time {
	y, m, d := p.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the lists for the planner's current date.
func (p *Planner) Today(ctx context.Context) (*Lists, error) {
	return p.For(ctx, p.today())
}

// ForDate parses raw as YYYY-MM-DD and returns the lists for that day. An
// empty or malformed date yields empty lists rather than an error.
func (p *Planner) ForDate(ctx context.Context, raw string) (*Lists, error) {
	day, err := time.Parse(DateLayout, raw)
	if err != nil {
		p.log.DebugContext(ctx, "unparseable plan date", slog.String("date", raw))
		return &Lists{Date: raw, Frogs: []task.Task{}, Tadpoles: []task.Task{}}, nil
	}
	return p.For(ctx, day)
}

// For returns the open, unsnoozed frogs and tadpoles for day, newest first.
func (p *Planner) For(ctx context.Context, day time.Time) (*Lists, error) {
	frogs, err := p.tasks.ListOpen(ctx, task.KindFrog, day, FrogLimit)
	if err != nil {
		return nil, fmt.Errorf("list frogs: %w", err)
	}
	tadpoles, err := p.tasks.ListOpen(ctx, task.KindTadpole, day, TadpoleLimit)
	if err != nil {
		return nil, fmt.Errorf("list tadpoles: %w", err)
	}
	return &Lists{
		Date:     day.Format(DateLayout),
		Frogs:    frogs,
		Tadpoles: tadpoles,
	}, nil
}

// Complete marks a task done.
func (p *Planner) Complete(ctx context.Context, id int64) error {
	if err := p.tasks.Complete(ctx, id); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	p.log.InfoContext(ctx, "task done", slog.Int64("task_id", id))
	return nil
}

// Snooze hides a task until tomorrow.
func (p *Planner) Snooze(ctx context.Context, id int64) error {
	until := p.today().AddDate(0, 0, 1)
	if err := p.tasks.Snooze(ctx, id, until); err != nil {
		return fmt.Errorf("snooze task: %w", err)
	}
	p.log.InfoContext(ctx, "task snoozed",
		slog.Int64("task_id", id),
		slog.String("until", until.Format(DateLayout)),
	)
	return nil
}
