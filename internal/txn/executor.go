// Package txn runs persistence operations inside a unit of work that is
// always committed or rolled back, and always released.
package txn

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/mcoot/squadbook/internal/errutil"
	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/storage"
)

// Failure stages attached to logged causes
const (
	stageOpen      = "open"
	stageBegin     = "begin"
	stageOperation = "operation"
	stageCommit    = "commit"
	stageRollback  = "rollback"
	stageRelease   = "release"
)

// Executor opens one unit of work per call against a backend.
// It is safe for concurrent use.
type Executor struct {
	backend storage.Backend
	logger  *slog.Logger
	metrics *Metrics
}

// New creates an Executor. A nil metrics value disables counting.
func New(backend storage.Backend, logger *slog.Logger, metrics *Metrics) *Executor {
	return &Executor{
		backend: backend,
		logger:  logger,
		metrics: metrics,
	}
}

// Do runs op for its effect. Any failure, including a failed commit, is
// reported as a *model.ValidationError for kind.
func (e *Executor) Do(ctx context.Context, kind model.EntityKind, op func(ctx context.Context, u storage.Unit) error) error {
	_, err := Value(ctx, e, kind, func(ctx context.Context, u storage.Unit) (struct{}, error) {
		return struct{}{}, op(ctx, u)
	})
	return err
}

// Value runs op and returns its result once the transaction has committed.
// On failure the zero T is returned with a *model.ValidationError.
// A panic in op rolls back and releases the unit before propagating.
func Value[T any](ctx context.Context, e *Executor, kind model.EntityKind, op func(ctx context.Context, u storage.Unit) (T, error)) (T, error) {
	var zero T

	u, err := e.backend.Open(ctx)
	if err != nil {
		e.logFailure(kind, stageOpen, err)
		e.metrics.observe(kind, outcomeOpenFailed)
		return zero, model.NewValidationError(kind)
	}
	defer e.release(kind, u)

	if err := u.Begin(ctx); err != nil {
		e.logFailure(kind, stageBegin, err)
		e.metrics.observe(kind, outcomeBeginFailed)
		return zero, model.NewValidationError(kind)
	}
	tx := &transaction{unit: u}

	defer func() {
		if r := recover(); r != nil {
			e.abort(ctx, kind, tx, false)
			panic(r)
		}
	}()

	result, err := op(ctx, u)
	if err != nil {
		e.logFailure(kind, stageOperation, err)
		e.abort(ctx, kind, tx, false)
		return zero, model.NewValidationError(kind)
	}

	if err := tx.commit(ctx); err != nil {
		e.logFailure(kind, stageCommit, err)
		e.abort(ctx, kind, tx, true)
		return zero, model.NewValidationError(kind)
	}

	e.metrics.observe(kind, outcomeCommitted)
	return result, nil
}

// abort rolls tx back. Rollback errors are logged and never returned.
// After a failed commit the backend may already have discarded the
// transaction, which is not reported as a rollback failure.
func (e *Executor) abort(ctx context.Context, kind model.EntityKind, tx *transaction, afterCommit bool) {
	e.metrics.observe(kind, outcomeRolledBack)

	err := tx.rollback(context.WithoutCancel(ctx))
	if err == nil || (afterCommit && errors.Is(err, storage.ErrNoTransaction)) {
		return
	}
	e.logFailure(kind, stageRollback, err)
}

func (e *Executor) release(kind model.EntityKind, u storage.Unit) {
	if err := u.Close(); err != nil {
		e.logFailure(kind, stageRelease, err)
	}
}

func (e *Executor) logFailure(kind model.EntityKind, stage string, err error) {
	errutil.LogError(e.logger, "unit of work failed",
		oops.With("stage", stage, "entity", string(kind)).Wrap(err))
}
