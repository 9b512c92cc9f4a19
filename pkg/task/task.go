package task

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Kind classifies a task for the daily lists.
type Kind string

const (
	KindFrog    Kind = "frog"    // high-leverage item
	KindTadpole Kind = "tadpole" // smaller item
)

// ParseKind accepts "frog" or "tadpole" in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindFrog, KindTadpole:
		return k, nil
	default:
		return "", fmt.Errorf("unknown task kind %q", s)
	}
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusOpen Status = "open"
	StatusDone Status = "done"
)

// Task is an actionable item triaged out of the inbox.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Kind        Kind       `json:"kind"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	LastSeenAt  *time.Time `json:"last_seen_at"`
	DaysSkipped int        `json:"days_skipped"`
	SnoozeUntil *time.Time `json:"snooze_until"` // date; eligible again from this day on
	SnoozeCount int        `json:"snooze_count"`
	Leverage    *int       `json:"leverage"`
	Resistance  *int       `json:"resistance"`
	EstMinutes  int        `json:"est_minutes"`
}

// Filter narrows List. Zero values mean "any"; Limit <= 0 means no limit.
type Filter struct {
	Status Status
	Kind   Kind
	Limit  int
}

// Store is the contract for task persistence.
type Store interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, f Filter) ([]Task, error)
	// ListOpen returns up to limit open tasks of kind that are not snoozed
	// past day, newest first.
	ListOpen(ctx context.Context, kind Kind, day time.Time, limit int) ([]Task, error)
	// Complete and Snooze update by id; a missing id is a no-op.
	Complete(ctx context.Context, id int64) error
	Snooze(ctx context.Context, id int64, until time.Time) error
	Count(ctx context.Context, status Status) (int, error)
}
