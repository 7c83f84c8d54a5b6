package main

import (
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverPanic(t *testing.T) {
	ta := newTestApp(t)
	h := ta.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}

func TestRequestID(t *testing.T) {
	ta := newTestApp(t)
	var seen string
	h := ta.requestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", given)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, given, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "<script>")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "<script>", seen)
}

func TestRateLimit(t *testing.T) {
	ta := newTestApp(t)
	ta.config.limiter.enabled = true
	ta.config.limiter.rps = 1
	ta.config.limiter.burst = 2

	h := ta.rateLimit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 3)
	for i := range codes {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/contact", nil))
		codes[i] = rr.Code
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestMethodNotAllowed(t *testing.T) {
	ta := newTestApp(t)
	res := ta.do(t, http.MethodPut, "/v1/contact", nil, false)
	assert.Equal(t, http.StatusMethodNotAllowed, res.status)
	assert.Equal(t, "the PUT method is not supported for this resource", res.body["error"])
}

func TestParseFlags(t *testing.T) {
	t.Setenv("DRONESITE_ADMIN_TOKEN", "from-env")
	t.Setenv("DRONESITE_NOTIFY_TO", "a@example.vn, b@example.vn")

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := parseFlags(fs, []string{"-port", "8080", "-limiter-enabled=false", "-form-debounce", "300ms"})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.port)
	assert.False(t, cfg.limiter.enabled)
	assert.Equal(t, 300*time.Millisecond, cfg.forms.debounce)
	assert.Equal(t, "from-env", cfg.admin.token)
	assert.Equal(t, []string{"a@example.vn", "b@example.vn"}, cfg.notify.recipients)

	fs = flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err = parseFlags(fs, []string{"-notify-to", "ops@example.vn"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.vn"}, cfg.notify.recipients)
}
