package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/contact-book/internal/config"
	"github.com/sakif/contact-book/internal/kvstore"
)

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Backend = backend
	cfg.SQLitePath = filepath.Join(t.TempDir(), "data", "contacts.db")
	cfg.SessionSecret = "server-test-secret-0123456789"
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	return s
}

func register(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"name":"Ada","email":"ada@example.com","password":"secret1","acceptTerms":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t, "redis")
	_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

type closeFailingBackend struct {
	*kvstore.Memory
	closed bool
}

func (b *closeFailingBackend) Close() error {
	b.closed = true
	return errors.New("close failed")
}

func TestFailedSetupClosesBackendAndLogs(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.SessionSecret = "too-short"

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	backend := &closeFailingBackend{Memory: kvstore.NewMemory()}

	_, err := newWithBackend(context.Background(), cfg, backend, logger)
	require.Error(t, err)
	assert.True(t, backend.closed)
	assert.Contains(t, logs.String(), "closing backend after failed setup")
	assert.Contains(t, logs.String(), "close failed")
}

func TestRoutesMountedUnderAPI(t *testing.T) {
	s := newTestServer(t, testConfig(t, config.BackendMemory))
	t.Cleanup(func() { s.Close() })

	rec := register(t, s.Handler())
	assert.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no session cookie")

	req = httptest.NewRequest(http.MethodGet, "/contacts", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, config.BackendSQLite)

	first := newTestServer(t, cfg)
	rec := register(t, first.Handler())
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, first.Close())

	second := newTestServer(t, cfg)
	t.Cleanup(func() { second.Close() })

	st := second.Store().Auth.State()
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "ada@example.com", st.User.Email)
}

func TestGeneratesSecretWhenUnset(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.SessionSecret = ""

	s := newTestServer(t, cfg)
	t.Cleanup(func() { s.Close() })

	assert.Equal(t, http.StatusCreated, register(t, s.Handler()).Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.Addr = "127.0.0.1:0"
	s := newTestServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
