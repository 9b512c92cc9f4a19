// Package triage moves captured text out of the inbox: into a task, into
// reference, or into the trash.
package triage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lifeos/internal/domain"
	"lifeos/pkg/inbox"
	"lifeos/pkg/reference"
	"lifeos/pkg/task"
)

// Default estimates, in minutes, for a converted task.
const (
	DefaultFrogMinutes    = 30
	DefaultTadpoleMinutes = 10
)

type inboxStore interface {
	Create(ctx context.Context, text string, createdAt time.Time) (*inbox.Item, error)
	Get(ctx context.Context, id int64) (*inbox.Item, error)
	List(ctx context.Context) ([]inbox.Item, error)
	Delete(ctx context.Context, id int64) error
}

type taskCreator interface {
	Create(ctx context.Context, t *task.Task) (*task.Task, error)
}

type referenceStore interface {
	Create(ctx context.Context, text string, createdAt time.Time) (*reference.Note, error)
	List(ctx context.Context) ([]reference.Note, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements capture and inbox triage.
type Service struct {
	log   *slog.Logger
	inbox inboxStore
	tasks taskCreator
	refs  referenceStore
	tx    txManager
	now   func() time.Time
}

// NewService creates a Service.
func NewService(log *slog.Logger, items inboxStore, tasks taskCreator, refs referenceStore, tx txManager) *Service {
	return &Service{
		log:   log.With("service", "triage"),
		inbox: items,
		tasks: tasks,
		refs:  refs,
		tx:    tx,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Capture stores text in the inbox. Surrounding whitespace is dropped and
// blank text is rejected.
func (s *Service) Capture(ctx context.Context, text string) (*inbox.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("text", "required")
	}

	it, err := s.inbox.Create(ctx, text, s.now())
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	s.log.InfoContext(ctx, "captured", slog.Int64("item_id", it.ID))
	return it, nil
}

// Inbox lists items awaiting triage, newest first.
func (s *Service) Inbox(ctx context.Context) ([]inbox.Item, error) {
	return s.inbox.List(ctx)
}

// References lists reference notes, newest first.
func (s *Service) References(ctx context.Context) ([]reference.Note, error) {
	return s.refs.List(ctx)
}

// ToTask converts an inbox item into an open task of the given kind. A
// non-positive estimate takes the kind's default. The item is removed in
// the same transaction.
func (s *Service) ToTask(ctx context.Context, itemID int64, kind task.Kind, estMinutes int) (*task.Task, error) {
	kind, err := task.ParseKind(string(kind))
	if err != nil {
		return nil, domain.NewValidationError("kind", "must be frog or tadpole")
	}
	if estMinutes <= 0 {
		estMinutes = DefaultEstimate(kind)
	}

	var created *task.Task
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		it, err := s.inbox.Get(ctx, itemID)
		if err != nil {
			return err
		}
		created, err = s.tasks.Create(ctx, &task.Task{
			Title:      it.Text,
			Kind:       kind,
			Status:     task.StatusOpen,
			CreatedAt:  s.now(),
			EstMinutes: estMinutes,
		})
		if err != nil {
			return err
		}
		return s.inbox.Delete(ctx, itemID)
	})
	if err != nil {
		return nil, fmt.Errorf("convert item %d to task: %w", itemID, err)
	}

	s.log.InfoContext(ctx, "converted to task",
		slog.Int64("item_id", itemID),
		slog.Int64("task_id", created.ID),
		slog.String("kind", string(kind)),
	)
	return created, nil
}

// ToReference converts an inbox item into a reference note.
func (s *Service) ToReference(ctx context.Context, itemID int64) (*reference.Note, error) {
	var created *reference.Note
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		it, err := s.inbox.Get(ctx, itemID)
		if err != nil {
			return err
		}
		created, err = s.refs.Create(ctx, it.Text, s.now())
		if err != nil {
			return err
		}
		return s.inbox.Delete(ctx, itemID)
	})
	if err != nil {
		return nil, fmt.Errorf("convert item %d to reference: %w", itemID, err)
	}

	s.log.InfoContext(ctx, "converted to reference",
		slog.Int64("item_id", itemID),
		slog.Int64("reference_id", created.ID),
	)
	return created, nil
}

// Discard drops an inbox item. A missing id is a no-op.
func (s *Service) Discard(ctx context.Context, itemID int64) error {
	if err := s.inbox.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("discard item %d: %w", itemID, err)
	}
	s.log.InfoContext(ctx, "discarded", slog.Int64("item_id", itemID))
	return nil
}

// DefaultEstimate returns the estimate used when none is given.
func DefaultEstimate(kind task.Kind) int {
	if kind == task.KindFrog {
		return DefaultFrogMinutes
	}
	return DefaultTadpoleMinutes
}
