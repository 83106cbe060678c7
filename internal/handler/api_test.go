package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/contact-book/internal/auth"
	"github.com/sakif/contact-book/internal/handler"
	"github.com/sakif/contact-book/internal/kvstore"
	"github.com/sakif/contact-book/internal/repository/kv"
	"github.com/sakif/contact-book/internal/state"
)

// =========================================================================
// TEST CLIENT
// =========================================================================

type testAPI struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	store  *state.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	backend := kvstore.NewMemory()
	kvs := kvstore.New(backend, logger)
	store := state.New(state.Repositories{
		Users:    kv.NewUserRepo(kvs),
		Contacts: kv.NewContactRepo(kvs),
		Sessions: kv.NewSessionRepo(kvs),
	}, logger)

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	require.NoError(t, err)

	api := handler.NewAPI(store, tokens, handler.Config{PageSize: 5}, logger)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", api.Routes()))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testAPI{t: t, srv: srv, client: newClient(t), store: store}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// do sends body (if not nil) as JSON and decodes the response into out
// (if not nil). It returns the status code.
func (a *testAPI) do(client *http.Client, method, path string, body, out any) int {
	a.t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *testAPI) call(method, path string, body, out any) int {
	a.t.Helper()
	return a.do(a.client, method, path, body, out)
}

func (a *testAPI) register(name, email, password string) handler.SessionResponse {
	a.t.Helper()
	var resp handler.SessionResponse
	status := a.call(http.MethodPost, "/api/auth/register", map[string]any{
		"name": name, "email": email, "password": password, "acceptTerms": true,
	}, &resp)
	require.Equal(a.t, http.StatusCreated, status)
	return resp
}

type contactJSON struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

func (a *testAPI) addContact(name, phone string) contactJSON {
	a.t.Helper()
	var c contactJSON
	status := a.call(http.MethodPost, "/api/contacts", map[string]string{"name": name, "phoneNumber": phone}, &c)
	require.Equal(a.t, http.StatusCreated, status)
	return c
}
