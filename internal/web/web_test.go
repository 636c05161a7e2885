package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/squadbook/internal/factory"
	"github.com/mcoot/squadbook/internal/web/middleware"
)

const basePath = "/app"

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	return &webTestServer{
		t:       t,
		handler: app.Handler(basePath),
		app:     app,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil, "")
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// postJSON makes a POST request with a JSON body
func (ts *webTestServer) postJSON(path string, v any) *httptest.ResponseRecorder {
	data, err := json.Marshal(v)
	require.NoError(ts.t, err)
	return ts.request(http.MethodPost, path, strings.NewReader(string(data)), "application/json")
}

// delete makes a DELETE request
func (ts *webTestServer) delete(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodDelete, path, nil, "")
}

// followRedirect follows a redirect response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect")
	return ts.get(rr.Header().Get("Location"))
}

// decode unmarshals a JSON response body
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// session returns the current session token
func (j *cookieJar) session() string {
	if c, ok := j.cookies[middleware.SessionCookieName]; ok {
		return c.Value
	}
	return ""
}

// Helper functions for common test operations

// createAccount registers through the web form and leaves the jar logged in
func (ts *webTestServer) createAccount(login, password string) {
	ts.t.Helper()
	form := url.Values{
		"login":            {login},
		"password":         {password},
		"password_confirm": {password},
	}
	rr := ts.post(basePath+"/createAccount", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, rr.Body.String())
	require.Equal(ts.t, basePath+"/players", rr.Header().Get("Location"))
}

// testContext mirrors testing.T.Context (Go 1.24+): canceled when the test finishes
func testContext(t testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
