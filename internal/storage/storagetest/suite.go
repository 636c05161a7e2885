// Package storagetest holds the behaviour every storage.Backend must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/storage"
)

// BackendSuite runs the conformance tests against a fresh backend per test.
// Embed it and set NewBackend, or construct it directly and pass it to
// suite.Run.
type BackendSuite struct {
	suite.Suite

	// NewBackend returns an empty backend. The suite closes it after each test.
	NewBackend func(t *testing.T) storage.Backend

	backend storage.Backend
	ctx     context.Context
}

func (s *BackendSuite) SetupTest() {
	s.Require().NotNil(s.NewBackend, "NewBackend must be set")
	s.backend = s.NewBackend(s.T())
	s.ctx = context.Background()
}

func (s *BackendSuite) TearDownTest() {
	if s.backend != nil {
		s.NoError(s.backend.Close())
	}
}

// Backend returns the backend under test
func (s *BackendSuite) Backend() storage.Backend {
	return s.backend
}

// open returns a unit with a started transaction
func (s *BackendSuite) open() storage.Unit {
	u, err := s.backend.Open(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(u.Begin(s.ctx))
	return u
}

// commit runs fn in its own committed transaction
func (s *BackendSuite) commit(fn func(u storage.Unit)) {
	u := s.open()
	fn(u)
	s.Require().NoError(u.Commit(s.ctx))
	s.Require().NoError(u.Close())
}

// failing runs fn in a transaction that is rolled back afterwards
func (s *BackendSuite) failing(fn func(u storage.Unit)) {
	u := s.open()
	fn(u)
	s.Require().NoError(u.Rollback(s.ctx))
	s.Require().NoError(u.Close())
}

func (s *BackendSuite) savePlayer(p model.Player) model.Player {
	s.commit(func(u storage.Unit) {
		s.Require().NoError(u.SavePlayer(s.ctx, &p))
	})
	return p
}

func (s *BackendSuite) playersByID(id model.PlayerID) []model.Player {
	var players []model.Player
	s.commit(func(u storage.Unit) {
		var err error
		players, err = u.PlayersByID(s.ctx, id)
		s.Require().NoError(err)
	})
	return players
}

// Player tests

func (s *BackendSuite) TestSavePlayerAssignsID() {
	first := s.savePlayer(model.Player{Name: "A", MarketValue: 1000})
	second := s.savePlayer(model.Player{Name: "B", MarketValue: 5})

	s.Equal(model.PlayerID(1), first.ID)
	s.Greater(second.ID, first.ID)
}

func (s *BackendSuite) TestSavePlayerRoundTrip() {
	saved := s.savePlayer(model.Player{
		Name:        "Lionel",
		LastName:    "Messi",
		MarketValue: 35000000,
		Country:     "Argentina",
		Club:        "Inter Miami",
	})

	s.Equal([]model.Player{saved}, s.playersByID(saved.ID))
}

func (s *BackendSuite) TestSavePlayerReplacesExisting() {
	saved := s.savePlayer(model.Player{Name: "A", Club: "Old"})
	saved.Club = "New"
	saved.MarketValue = 42
	s.savePlayer(saved)

	players := s.playersByID(saved.ID)
	s.Require().Len(players, 1)
	s.Equal("New", players[0].Club)
	s.Equal(int64(42), players[0].MarketValue)
}

func (s *BackendSuite) TestSavePlayerUnknownIDFails() {
	s.failing(func(u storage.Unit) {
		err := u.SavePlayer(s.ctx, &model.Player{ID: 99, Name: "ghost"})
		s.ErrorIs(err, model.ErrNotFound)
	})
}

func (s *BackendSuite) TestDeletePlayer() {
	saved := s.savePlayer(model.Player{Name: "A"})

	s.commit(func(u storage.Unit) {
		s.Require().NoError(u.DeletePlayer(s.ctx, saved.ID))
	})

	s.Empty(s.playersByID(saved.ID))
}

func (s *BackendSuite) TestDeleteUnknownPlayerFails() {
	s.failing(func(u storage.Unit) {
		s.ErrorIs(u.DeletePlayer(s.ctx, 12345), model.ErrNotFound)
	})
}

func (s *BackendSuite) TestListPlayersEmpty() {
	s.commit(func(u storage.Unit) {
		players, err := u.ListPlayers(s.ctx)
		s.Require().NoError(err)
		s.NotNil(players)
		s.Empty(players)
	})
}

func (s *BackendSuite) TestListPlayersInInsertionOrder() {
	a := s.savePlayer(model.Player{Name: "A"})
	b := s.savePlayer(model.Player{Name: "B"})
	c := s.savePlayer(model.Player{Name: "C"})

	s.commit(func(u storage.Unit) {
		players, err := u.ListPlayers(s.ctx)
		s.Require().NoError(err)
		s.Equal([]model.Player{a, b, c}, players)
	})
}

func (s *BackendSuite) TestPlayersByIDNoMatch() {
	s.Empty(s.playersByID(7))
}

// Transaction tests

func (s *BackendSuite) TestRollbackDiscardsWrites() {
	s.failing(func(u storage.Unit) {
		s.Require().NoError(u.SavePlayer(s.ctx, &model.Player{Name: "discarded"}))
	})

	s.commit(func(u storage.Unit) {
		players, err := u.ListPlayers(s.ctx)
		s.Require().NoError(err)
		s.Empty(players)
	})
}

func (s *BackendSuite) TestCloseRollsBackOpenTransaction() {
	u := s.open()
	s.Require().NoError(u.SavePlayer(s.ctx, &model.Player{Name: "abandoned"}))
	s.Require().NoError(u.Close())

	s.commit(func(u storage.Unit) {
		players, err := u.ListPlayers(s.ctx)
		s.Require().NoError(err)
		s.Empty(players)
	})
}

func (s *BackendSuite) TestCommitWithoutBeginFails() {
	u, err := s.backend.Open(s.ctx)
	s.Require().NoError(err)
	defer func() { _ = u.Close() }()

	s.ErrorIs(u.Commit(s.ctx), storage.ErrNoTransaction)
	s.ErrorIs(u.Rollback(s.ctx), storage.ErrNoTransaction)
}

func (s *BackendSuite) TestOperationsRequireTransaction() {
	u, err := s.backend.Open(s.ctx)
	s.Require().NoError(err)
	defer func() { _ = u.Close() }()

	_, err = u.ListPlayers(s.ctx)
	s.ErrorIs(err, storage.ErrNoTransaction)
}

func (s *BackendSuite) TestCloseTwiceFails() {
	u, err := s.backend.Open(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(u.Close())
	s.ErrorIs(u.Close(), storage.ErrUnitClosed)
}

// User tests

func (s *BackendSuite) TestSaveUserAndLookupByLogin() {
	user := model.User{Login: "alice", Password: "hash"}
	s.commit(func(u storage.Unit) {
		s.Require().NoError(u.SaveUser(s.ctx, &user))
	})
	s.NotZero(user.ID)

	s.commit(func(u storage.Unit) {
		byLogin, err := u.UsersByLogin(s.ctx, "alice")
		s.Require().NoError(err)
		s.Equal([]model.User{user}, byLogin)

		byID, err := u.UsersByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal([]model.User{user}, byID)
	})
}

func (s *BackendSuite) TestSaveUserDuplicateLoginFails() {
	s.commit(func(u storage.Unit) {
		s.Require().NoError(u.SaveUser(s.ctx, &model.User{Login: "alice", Password: "x"}))
	})

	s.failing(func(u storage.Unit) {
		err := u.SaveUser(s.ctx, &model.User{Login: "alice", Password: "y"})
		s.ErrorIs(err, model.ErrLoginTaken)
	})
}

func (s *BackendSuite) TestSaveUserUpdatesPassword() {
	user := model.User{Login: "bob", Password: "old"}
	s.commit(func(u storage.Unit) {
		s.Require().NoError(u.SaveUser(s.ctx, &user))
	})
	user.Password = "new"
	s.commit(func(u storage.Unit) {
		s.Require().NoError(u.SaveUser(s.ctx, &user))
	})

	s.commit(func(u storage.Unit) {
		users, err := u.ListUsers(s.ctx)
		s.Require().NoError(err)
		s.Equal([]model.User{user}, users)
	})
}

func (s *BackendSuite) TestUsersByLoginTreatsInputAsLiteral() {
	s.commit(func(u storage.Unit) {
		s.Require().NoError(u.SaveUser(s.ctx, &model.User{Login: "alice", Password: "x"}))
	})

	s.commit(func(u storage.Unit) {
		users, err := u.UsersByLogin(s.ctx, "' OR '1'='1")
		s.Require().NoError(err)
		s.Empty(users)
	})
}
