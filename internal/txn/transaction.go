package txn

import (
	"context"
	"errors"

	"github.com/samber/oops"

	"github.com/mcoot/squadbook/internal/storage"
)

// ErrTransactionFinished is returned when a committed or rolled back
// transaction is asked to finish again
var ErrTransactionFinished = errors.New("transaction already finished")

type txState int

const (
	stateActive txState = iota
	stateCommitted
	stateRolledBack
)

func (s txState) String() string {
	switch s {
	case stateActive:
		return "active"
	case stateCommitted:
		return "committed"
	case stateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// transaction tracks a begun unit. It moves forward only:
// active to committed, or active to rolled back.
type transaction struct {
	unit  storage.Unit
	state txState
}

func (t *transaction) finished() error {
	return oops.Code("TX_FINISHED").With("state", t.state.String()).Wrap(ErrTransactionFinished)
}

// commit leaves the transaction active when the backend refuses, so the
// caller can still roll back
func (t *transaction) commit(ctx context.Context) error {
	if t.state != stateActive {
		return t.finished()
	}
	if err := t.unit.Commit(ctx); err != nil {
		return err
	}
	t.state = stateCommitted
	return nil
}

func (t *transaction) rollback(ctx context.Context) error {
	if t.state != stateActive {
		return t.finished()
	}
	t.state = stateRolledBack
	return t.unit.Rollback(ctx)
}
