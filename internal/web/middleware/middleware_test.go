package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/squadbook/internal/testutil"
)

func TestFlashRoundTrip(t *testing.T) {
	rr := httptest.NewRecorder()
	SetFlash(rr, "info", "You have been logged out: bye")
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)

	var got string
	handler := Flash()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		if f := GetFlash(r.Context()); f != nil {
			got = f.Type + "|" + f.Message
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/app/login", nil)
	req.AddCookie(cookies[0])
	next := httptest.NewRecorder()
	handler.ServeHTTP(next, req)

	assert.Equal(t, "info|You have been logged out: bye", got)
	cleared := next.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestParseFlashWithoutType(t *testing.T) {
	f := parseFlash("hello")
	assert.Equal(t, "info", f.Type)
	assert.Equal(t, "hello", f.Message)
}

func TestLoggingRecordsStatus(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("oops"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/app/players", nil))

	out := logs.String()
	assert.Contains(t, out, `"status":502`)
	assert.Contains(t, out, `"size":4`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"path":"/app/players"`)
}

func TestRecoveryAnswersJSON500(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	handler := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, logs.String(), "panic recovered")
	assert.True(t, strings.Contains(logs.String(), "kaboom"))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())
	r := mux.NewRouter()
	r.Use(Metrics(m))
	r.HandleFunc("/app/players/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/app/players/"+id, nil))
	}

	assert.Equal(t, 3.0, promtest.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/app/players/{id}", "204")))
}
