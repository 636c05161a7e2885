package txn

import (
	"context"
	"sync"

	"github.com/mcoot/squadbook/internal/storage"
)

// fakeBackend hands out a single recording unit and can fail on demand
type fakeBackend struct {
	openErr error
	unit    *fakeUnit
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{unit: &fakeUnit{}}
}

func (b *fakeBackend) Open(_ context.Context) (storage.Unit, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.unit.record("open")
	return b.unit, nil
}

func (b *fakeBackend) Close() error { return nil }

// fakeUnit records transaction calls. Entity methods come from the embedded
// nil interface and panic if used.
type fakeUnit struct {
	storage.Unit

	mu          sync.Mutex
	calls       []string
	beginErr    error
	commitErr   error
	rollbackErr error
	closeErr    error
}

func (u *fakeUnit) record(call string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, call)
}

func (u *fakeUnit) Calls() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.calls...)
}

func (u *fakeUnit) Begin(_ context.Context) error {
	u.record("begin")
	return u.beginErr
}

func (u *fakeUnit) Commit(_ context.Context) error {
	u.record("commit")
	return u.commitErr
}

func (u *fakeUnit) Rollback(_ context.Context) error {
	u.record("rollback")
	return u.rollbackErr
}

func (u *fakeUnit) Close() error {
	u.record("close")
	return u.closeErr
}
