package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/squadbook/internal/cli"
	"github.com/mcoot/squadbook/internal/config"
	"github.com/mcoot/squadbook/internal/factory"
	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/server"
)

// runCLI executes the squadbook command in-process and returns stdout
func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetArgs(append([]string{"--storage", "sqlite", "--sqlite-path", dbPath, "--output", "json"}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))

	err := cmd.ExecuteContext(testContext(t))
	return stdout.String(), err
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	url      string
	shutdown func()
}

func startTestServer(t *testing.T, dbPath string) *testServer {
	t.Helper()

	cfg, err := config.Parse(map[string]string{
		"STORAGE_TYPE": config.StorageSQLite,
		"SQLITE_PATH":  dbPath,
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(testContext(t), cfg, logger)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	serverCfg := server.DefaultConfig()
	serverCfg.ShutdownTimeout = 5 * time.Second
	srv := server.New(app.Handler(cfg.BasePath), serverCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, listener)
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/healthz")

	return &testServer{
		url: serverURL,
		shutdown: func() {
			cancel()
			assert.NoError(t, <-errCh)
			assert.NoError(t, app.Close())
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// newBrowser returns a client that keeps cookies and does not follow redirects
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return body
}

func TestLoginGatedPlayerFlow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "e2e.db")

	// Provision an account before the server starts
	_, err := runCLI(t, dbPath, "user", "add", "admin", "--password", "letmein")
	require.NoError(t, err)

	ts := startTestServer(t, dbPath)
	browser := newBrowser(t)

	// Anonymous access is redirected to the login page
	resp, err := browser.Get(ts.url + "/app/players")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/app/login", resp.Header.Get("Location"))

	// Wrong password
	resp, err = browser.PostForm(ts.url+"/app/login", url.Values{"login": {"admin"}, "password": {"wrong"}})
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Log in
	resp, err = browser.PostForm(ts.url+"/app/login", url.Values{"login": {"admin"}, "password": {"letmein"}})
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/app/players", resp.Header.Get("Location"))

	// Add a player
	body, err := json.Marshal(model.Player{Name: "Johan", LastName: "Cruyff", MarketValue: 1000, Club: "Ajax"})
	require.NoError(t, err)
	resp, err = browser.Post(ts.url+"/app/players", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var created model.Player
	require.NoError(t, json.Unmarshal(readBody(t, resp), &created))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotZero(t, created.ID)

	// List players
	resp, err = browser.Get(ts.url + "/app/players")
	require.NoError(t, err)
	var players []model.Player
	require.NoError(t, json.Unmarshal(readBody(t, resp), &players))
	require.Len(t, players, 1)
	assert.Equal(t, created, players[0])

	// The health command talks to the running server
	out, err := runCLI(t, dbPath, "health", "--server", ts.url)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, out)

	// Log out and lose access again
	resp, err = browser.Post(ts.url+"/app/logout", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, err = browser.Get(ts.url + "/app/players")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	ts.shutdown()

	// The player written through the web survives in the database
	out, err = runCLI(t, dbPath, "player", "list")
	require.NoError(t, err)
	var stored []model.Player
	require.NoError(t, json.Unmarshal([]byte(out), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "Cruyff", stored[0].LastName)
}

// testContext mirrors testing.T.Context (Go 1.24+): canceled when the test finishes
func testContext(t testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
