// Package memory is an in-process session store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/squadbook/internal/dependencies/clock"
	"github.com/mcoot/squadbook/internal/dependencies/random"
	"github.com/mcoot/squadbook/internal/session"
)

type entry struct {
	attrs     map[string]string
	expiresAt time.Time
}

// Store keeps sessions in a map guarded by a mutex
type Store struct {
	clock  clock.Clock
	random random.Random
	ttl    time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

// New creates an in-memory session store. A zero ttl uses session.DefaultTTL.
func New(clk clock.Clock, rnd random.Random, ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = session.DefaultTTL
	}
	return &Store{
		clock:    clk,
		random:   rnd,
		ttl:      ttl,
		sessions: make(map[string]*entry),
	}
}

func (s *Store) Create(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := session.NewToken(s.random)
	for s.sessions[token] != nil {
		token = session.NewToken(s.random)
	}
	s.sessions[token] = &entry{
		attrs:     make(map[string]string),
		expiresAt: s.clock.Now().Add(s.ttl),
	}
	return token, nil
}

func (s *Store) Exists(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touch(token) != nil, nil
}

func (s *Store) Get(_ context.Context, token, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(token)
	if e == nil {
		return "", false, nil
	}
	value, ok := e.attrs[name]
	return value, ok, nil
}

func (s *Store) Set(_ context.Context, token, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(token)
	if e == nil {
		return session.ErrNotFound
	}
	e.attrs[name] = value
	return nil
}

func (s *Store) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

// CleanExpired removes expired sessions and returns how many were removed
func (s *Store) CleanExpired() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// touch returns the live entry for token and extends its lifetime.
// Expired entries are dropped. Callers hold mu.
func (s *Store) touch(token string) *entry {
	e, ok := s.sessions[token]
	if !ok {
		return nil
	}
	now := s.clock.Now()
	if now.After(e.expiresAt) {
		delete(s.sessions, token)
		return nil
	}
	e.expiresAt = now.Add(s.ttl)
	return e
}
