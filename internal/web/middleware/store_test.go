package middleware

import (
	"context"
	"sync"

	"github.com/mcoot/squadbook/internal/session"
)

// stubStore is a session.Store with canned answers that counts reads
type stubStore struct {
	mu        sync.Mutex
	attrs     map[string]map[string]string
	err       error
	reads     int
	created   int
	nextToken string
}

var _ session.Store = (*stubStore)(nil)

func newStubStore() *stubStore {
	return &stubStore{attrs: map[string]map[string]string{}, nextToken: "new-token"}
}

func (s *stubStore) login(token, login string) {
	s.attrs[token] = map[string]string{session.AttrLogin: login}
}

func (s *stubStore) Create(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.created++
	s.attrs[s.nextToken] = map[string]string{}
	return s.nextToken, nil
}

func (s *stubStore) Exists(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.attrs[token]
	return ok, nil
}

func (s *stubStore) Get(_ context.Context, token, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.attrs[token][name]
	return v, ok, nil
}

func (s *stubStore) Set(_ context.Context, token, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attrs[token]; !ok {
		return session.ErrNotFound
	}
	s.attrs[token][name] = value
	return nil
}

func (s *stubStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attrs, token)
	return nil
}

func (s *stubStore) Close() error { return nil }

func (s *stubStore) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
