package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/squadbook/internal/dependencies/mocks"
	"github.com/mcoot/squadbook/internal/session"
)

type StoreTestSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	random *mocks.MockRandom
	store  *Store
	ctx    context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.store = New(s.clock, s.random, time.Hour)
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TestCreateUsesRandomToken() {
	s.random.QueueString("abc123")

	token, err := s.store.Create(s.ctx)
	s.Require().NoError(err)
	s.Equal("abc123", token)

	ok, err := s.store.Exists(s.ctx, token)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *StoreTestSuite) TestCreateRetriesOnCollision() {
	s.random.QueueString("same", "same", "other")

	first, err := s.store.Create(s.ctx)
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx)
	s.Require().NoError(err)

	s.Equal("same", first)
	s.Equal("other", second)
}

func (s *StoreTestSuite) TestSetAndGet() {
	token, _ := s.store.Create(s.ctx)

	_, ok, err := s.store.Get(s.ctx, token, session.AttrLogin)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.Set(s.ctx, token, session.AttrLogin, "alice"))

	value, ok, err := s.store.Get(s.ctx, token, session.AttrLogin)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("alice", value)
}

func (s *StoreTestSuite) TestUnknownToken() {
	ok, err := s.store.Exists(s.ctx, "nope")
	s.Require().NoError(err)
	s.False(ok)

	_, ok, err = s.store.Get(s.ctx, "nope", session.AttrLogin)
	s.Require().NoError(err)
	s.False(ok)

	s.ErrorIs(s.store.Set(s.ctx, "nope", session.AttrLogin, "x"), session.ErrNotFound)
}

func (s *StoreTestSuite) TestExpiresAfterIdleTTL() {
	token, _ := s.store.Create(s.ctx)
	s.Require().NoError(s.store.Set(s.ctx, token, session.AttrLogin, "alice"))

	s.clock.Advance(time.Hour + time.Second)

	_, ok, err := s.store.Get(s.ctx, token, session.AttrLogin)
	s.Require().NoError(err)
	s.False(ok)
	s.ErrorIs(s.store.Set(s.ctx, token, session.AttrLogin, "alice"), session.ErrNotFound)
}

func (s *StoreTestSuite) TestAccessExtendsLifetime() {
	token, _ := s.store.Create(s.ctx)

	for i := 0; i < 3; i++ {
		s.clock.Advance(45 * time.Minute)
		ok, err := s.store.Exists(s.ctx, token)
		s.Require().NoError(err)
		s.True(ok)
	}
}

func (s *StoreTestSuite) TestDestroy() {
	token, _ := s.store.Create(s.ctx)
	s.Require().NoError(s.store.Destroy(s.ctx, token))

	ok, _ := s.store.Exists(s.ctx, token)
	s.False(ok)
	s.NoError(s.store.Destroy(s.ctx, token))
}

func (s *StoreTestSuite) TestCleanExpired() {
	old, _ := s.store.Create(s.ctx)
	s.clock.Advance(40 * time.Minute)
	fresh, _ := s.store.Create(s.ctx)
	s.clock.Advance(30 * time.Minute)

	s.Equal(1, s.store.CleanExpired())

	ok, _ := s.store.Exists(s.ctx, old)
	s.False(ok)
	ok, _ = s.store.Exists(s.ctx, fresh)
	s.True(ok)
}

func (s *StoreTestSuite) TestConcurrentAccess() {
	token, _ := s.store.Create(s.ctx)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.store.Set(s.ctx, token, "visits", "1")
			_, _, _ = s.store.Get(s.ctx, token, "visits")
			_, _ = s.store.Create(s.ctx)
		}()
	}
	wg.Wait()

	value, ok, err := s.store.Get(s.ctx, token, "visits")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("1", value)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
