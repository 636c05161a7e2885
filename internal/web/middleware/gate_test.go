package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/squadbook/internal/testutil"
)

type GateTestSuite struct {
	suite.Suite
	store *stubStore
	calls int
	gate  http.Handler
}

func (s *GateTestSuite) SetupTest() {
	s.store = newStubStore()
	s.calls = 0
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.calls++
		w.WriteHeader(http.StatusTeapot)
	})
	s.gate = Gate(s.store, "/app", testutil.NopLogger())(next)
}

func (s *GateTestSuite) serve(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req = req.WithContext(WithSessionToken(context.Background(), token))
	}
	rr := httptest.NewRecorder()
	s.gate.ServeHTTP(rr, req)
	return rr
}

func (s *GateTestSuite) TestPublicPathsSkipSessionCheck() {
	for _, path := range []string{"/app/login", "/app/createAccount", "/other/login/help"} {
		rr := s.serve(path, "")
		s.Equal(http.StatusTeapot, rr.Code, path)
	}
	s.Equal(3, s.calls)
	s.Zero(s.store.readCount())
}

func (s *GateTestSuite) TestPublicPathSkipsStoreEvenWhenBroken() {
	s.store.err = errors.New("redis down")
	rr := s.serve("/app/login", "tok")
	s.Equal(http.StatusTeapot, rr.Code)
	s.Equal(1, s.calls)
}

func (s *GateTestSuite) TestNoSessionRedirects() {
	rr := s.serve("/app/players", "")
	s.Equal(http.StatusSeeOther, rr.Code)
	s.Equal("/app/login", rr.Header().Get("Location"))
	s.Zero(s.calls)
}

func (s *GateTestSuite) TestSessionWithoutLoginRedirects() {
	s.store.attrs["anon"] = map[string]string{}

	rr := s.serve("/app/players", "anon")
	s.Equal(http.StatusSeeOther, rr.Code)
	s.Equal("/app/login", rr.Header().Get("Location"))
	s.Zero(s.calls)
	s.Equal(1, s.store.readCount())
}

func (s *GateTestSuite) TestLoggedInForwardsOnce() {
	s.store.login("tok", "alice")

	rr := s.serve("/app/players", "tok")
	s.Equal(http.StatusTeapot, rr.Code)
	s.Equal(1, s.calls)
	s.Empty(rr.Header().Get("Location"))
}

func (s *GateTestSuite) TestStoreErrorIsServerError() {
	s.store.err = errors.New("redis down")

	rr := s.serve("/app/players", "tok")
	s.Equal(http.StatusInternalServerError, rr.Code)
	s.Zero(s.calls)
}

func TestGateTestSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}

func TestGateBasePathTrailingSlash(t *testing.T) {
	gate := Gate(newStubStore(), "/portal/", testutil.NopLogger())(http.NotFoundHandler())
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/portal/players", nil))
	if rr.Header().Get("Location") != "/portal/login" {
		t.Fatalf("unexpected redirect %q", rr.Header().Get("Location"))
	}
}

func TestIsPublicPath(t *testing.T) {
	cases := map[string]bool{
		"/app/login":         true,
		"/app/createAccount": true,
		"/app/players":       false,
		"/app/logout":        false,
		"/":                  false,
	}
	for path, want := range cases {
		if got := IsPublicPath(path); got != want {
			t.Errorf("IsPublicPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestGateContextRelativePath(t *testing.T) {
	store := newStubStore()
	store.attrs["anon"] = map[string]string{}
	store.login("alice-token", "alice")

	calls := 0
	gate := Gate(store, "/app", testutil.NopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls++
	}))

	req := httptest.NewRequest(http.MethodGet, "/players", nil)
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req.WithContext(WithSessionToken(req.Context(), "anon")))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/app/login" || calls != 0 {
		t.Fatalf("anonymous: code=%d location=%q calls=%d", rr.Code, rr.Header().Get("Location"), calls)
	}

	rr = httptest.NewRecorder()
	gate.ServeHTTP(rr, req.WithContext(WithSessionToken(req.Context(), "alice-token")))
	if calls != 1 {
		t.Fatalf("logged in: expected one forward, got %d", calls)
	}
}
