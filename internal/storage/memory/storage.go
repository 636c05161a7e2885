package memory

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/samber/oops"

	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/storage"
)

// ErrClosed is returned by Open after the backend has been closed
var ErrClosed = errors.New("memory storage is closed")

// Storage is an in-memory implementation of storage.Backend.
// Transactions are serialized: a Unit holds txMu from Begin until it commits
// or rolls back, and rollback restores a snapshot taken at Begin.
type Storage struct {
	txMu sync.Mutex

	mu     sync.Mutex
	data   *dataset
	closed bool
}

type dataset struct {
	players      map[model.PlayerID]model.Player
	users        map[model.UserID]model.User
	nextPlayerID model.PlayerID
	nextUserID   model.UserID
}

func (d *dataset) clone() *dataset {
	return &dataset{
		players:      maps.Clone(d.players),
		users:        maps.Clone(d.users),
		nextPlayerID: d.nextPlayerID,
		nextUserID:   d.nextUserID,
	}
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		data: &dataset{
			players:      make(map[model.PlayerID]model.Player),
			users:        make(map[model.UserID]model.User),
			nextPlayerID: 1,
			nextUserID:   1,
		},
	}
}

// Ensure Storage implements the interface
var _ storage.Backend = (*Storage)(nil)

// Open returns a new unit of work
func (s *Storage) Open(_ context.Context) (storage.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return &unit{s: s}, nil
}

// Close marks the storage closed; existing units may still finish
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type unit struct {
	s        *Storage
	snapshot *dataset
	inTx     bool
	closed   bool
}

func (u *unit) Begin(_ context.Context) error {
	if u.closed {
		return storage.ErrUnitClosed
	}
	if u.inTx {
		return storage.ErrTransactionActive
	}
	u.s.txMu.Lock()
	u.snapshot = u.s.data.clone()
	u.inTx = true
	return nil
}

func (u *unit) Commit(_ context.Context) error {
	if !u.inTx {
		return storage.ErrNoTransaction
	}
	u.finish()
	return nil
}

func (u *unit) Rollback(_ context.Context) error {
	if !u.inTx {
		return storage.ErrNoTransaction
	}
	u.s.data = u.snapshot
	u.finish()
	return nil
}

func (u *unit) finish() {
	u.snapshot = nil
	u.inTx = false
	u.s.txMu.Unlock()
}

func (u *unit) Close() error {
	if u.closed {
		return storage.ErrUnitClosed
	}
	u.closed = true
	if u.inTx {
		return u.Rollback(context.Background())
	}
	return nil
}

func (u *unit) active() error {
	if u.closed {
		return storage.ErrUnitClosed
	}
	if !u.inTx {
		return storage.ErrNoTransaction
	}
	return nil
}

// Player operations

func (u *unit) SavePlayer(_ context.Context, player *model.Player) error {
	if err := u.active(); err != nil {
		return err
	}
	d := u.s.data
	if player.IsNew() {
		player.ID = d.nextPlayerID
		d.nextPlayerID++
	} else if _, ok := d.players[player.ID]; !ok {
		return oops.Code("PLAYER_NOT_FOUND").With("id", player.ID).Wrap(model.ErrNotFound)
	}
	d.players[player.ID] = *player
	return nil
}

func (u *unit) DeletePlayer(_ context.Context, id model.PlayerID) error {
	if err := u.active(); err != nil {
		return err
	}
	if _, ok := u.s.data.players[id]; !ok {
		return oops.Code("PLAYER_NOT_FOUND").With("id", id).Wrap(model.ErrNotFound)
	}
	delete(u.s.data.players, id)
	return nil
}

func (u *unit) ListPlayers(_ context.Context) ([]model.Player, error) {
	if err := u.active(); err != nil {
		return nil, err
	}
	players := make([]model.Player, 0, len(u.s.data.players))
	for _, id := range sortedKeys(u.s.data.players) {
		players = append(players, u.s.data.players[id])
	}
	return players, nil
}

func (u *unit) PlayersByID(_ context.Context, id model.PlayerID) ([]model.Player, error) {
	if err := u.active(); err != nil {
		return nil, err
	}
	player, ok := u.s.data.players[id]
	if !ok {
		return []model.Player{}, nil
	}
	return []model.Player{player}, nil
}

// User operations

func (u *unit) SaveUser(_ context.Context, user *model.User) error {
	if err := u.active(); err != nil {
		return err
	}
	d := u.s.data
	if !user.IsNew() {
		if _, ok := d.users[user.ID]; !ok {
			return oops.Code("USER_NOT_FOUND").With("id", user.ID).Wrap(model.ErrNotFound)
		}
	}
	for id, existing := range d.users {
		if existing.Login == user.Login && id != user.ID {
			return oops.Code("USER_LOGIN_TAKEN").With("login", user.Login).Wrap(model.ErrLoginTaken)
		}
	}
	if user.IsNew() {
		user.ID = d.nextUserID
		d.nextUserID++
	}
	d.users[user.ID] = *user
	return nil
}

func (u *unit) ListUsers(_ context.Context) ([]model.User, error) {
	if err := u.active(); err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(u.s.data.users))
	for _, id := range sortedKeys(u.s.data.users) {
		users = append(users, u.s.data.users[id])
	}
	return users, nil
}

func (u *unit) UsersByID(_ context.Context, id model.UserID) ([]model.User, error) {
	if err := u.active(); err != nil {
		return nil, err
	}
	user, ok := u.s.data.users[id]
	if !ok {
		return []model.User{}, nil
	}
	return []model.User{user}, nil
}

func (u *unit) UsersByLogin(_ context.Context, login string) ([]model.User, error) {
	if err := u.active(); err != nil {
		return nil, err
	}
	users := []model.User{}
	for _, id := range sortedKeys(u.s.data.users) {
		if u.s.data.users[id].Login == login {
			users = append(users, u.s.data.users[id])
		}
	}
	return users, nil
}

// sortedKeys returns the keys of m in ascending order
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
