package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	merr "github.com/next-trace/scg-mediator/contract/errors"
	"github.com/next-trace/scg-mediator/domain"
)

// Phase selects when drained domain events are published relative to the commit.
type Phase int

const (
	// PhaseAfterCommit publishes once the transaction has committed. Publish failures are logged
	// and never undo the commit.
	PhaseAfterCommit Phase = iota
	// PhaseBeforeCommit publishes inside the transaction; a publish failure rolls it back.
	PhaseBeforeCommit
)

func (p Phase) String() string {
	switch p {
	case PhaseAfterCommit:
		return "after_commit"
	case PhaseBeforeCommit:
		return "before_commit"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ParsePhase maps "after_commit" and "before_commit" to a Phase.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "after_commit", "":
		return PhaseAfterCommit, nil
	case "before_commit":
		return PhaseBeforeCommit, nil
	default:
		return 0, fmt.Errorf("parse phase %q: %w", s, merr.ErrInvalidArgument)
	}
}

// Tx is the handle passed to a unit of work. It is valid only inside Do.
type Tx struct {
	db      *gorm.DB
	tracker *domain.Tracker
}

// DB returns the transaction-scoped gorm handle.
func (t *Tx) DB() *gorm.DB { return t.db }

// Track registers aggregates whose pending events are drained at commit.
func (t *Tx) Track(aggs ...domain.Aggregate) { t.tracker.Track(aggs...) }

type txKey struct{}

// TxFrom returns the unit-of-work transaction carried by ctx, if any.
func TxFrom(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*Tx)

	return tx, ok
}

// UnitOfWork runs a function in one transaction and publishes the domain events raised by the
// aggregates it tracked.
type UnitOfWork struct {
	db     *gorm.DB
	events *domain.EventDispatcher
	phase  Phase
	logger *slog.Logger
}

// Option configures a UnitOfWork.
type Option func(*UnitOfWork)

func WithPhase(p Phase) Option { return func(u *UnitOfWork) { u.phase = p } }

func WithLogger(l *slog.Logger) Option {
	return func(u *UnitOfWork) {
		if l != nil {
			u.logger = l
		}
	}
}

func NewUnitOfWork(db *gorm.DB, events *domain.EventDispatcher, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		db:     db,
		events: events,
		phase:  PhaseAfterCommit,
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Do runs fn in a transaction. The context handed to fn carries the Tx, so a nested Do joins it
// instead of opening another transaction; events are then drained by the outermost Do.
// Tracked aggregates are drained before the commit; if the transaction fails, drained events
// are discarded.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	if fn == nil {
		return fmt.Errorf("unit of work: %w", merr.ErrInvalidArgument)
	}

	if tx, ok := TxFrom(ctx); ok {
		return fn(ctx, tx)
	}

	var drained []domain.Event

	err := u.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		tx := &Tx{db: gtx, tracker: domain.NewTracker()}
		txCtx := context.WithValue(ctx, txKey{}, tx)

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		drained = u.events.Collect(tx.tracker.Aggregates())

		if u.phase == PhaseBeforeCommit && len(drained) > 0 {
			if err := u.events.Dispatch(txCtx, drained); err != nil {
				return fmt.Errorf("publish before commit: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		if len(drained) > 0 {
			u.logger.DebugContext(ctx, "transaction failed, discarding domain events", "count", len(drained))
		}

		return err
	}

	if u.phase == PhaseAfterCommit && len(drained) > 0 {
		if err := u.events.Dispatch(ctx, drained); err != nil {
			u.logger.WarnContext(ctx, "publishing domain events after commit failed",
				"count", len(drained),
				"error", err,
			)
		}
	}

	return nil
}
