package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/contact-book/internal/handler"
)

func TestRegister(t *testing.T) {
	api := newTestAPI(t)

	resp := api.register(" Ann Lee ", "Ann@Example.com", "secret1")
	assert.True(t, resp.Auth.IsAuthenticated)
	require.NotNil(t, resp.Auth.User)
	assert.Equal(t, "Ann Lee", resp.Auth.User.Name)
	assert.Equal(t, "ann@example.com", resp.Auth.User.Email)
	assert.NotEmpty(t, resp.ExpiresAt)

	// the cookie now opens guarded routes
	var session handler.SessionResponse
	assert.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/auth/session", nil, &session))
	assert.Equal(t, resp.Auth.User.ID, session.Auth.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)

	var errResp handler.ErrorResponse
	status := api.call(http.MethodPost, "/api/auth/register", map[string]any{
		"name": "A", "email": "not-an-email", "password": "password", "acceptTerms": false,
	}, &errResp)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", errResp.Error)
	assert.Equal(t, map[string]string{
		"name":     "Name must be at least 2 characters long",
		"email":    "Please enter a valid email address",
		"password": "Password must contain at least one letter and one number",
		"terms":    "You must agree to the terms and conditions",
	}, errResp.Fields)

	// the same errors are in the UI slice
	assert.Equal(t, errResp.Fields, api.store.UI.State().FormState.Errors)
	assert.False(t, api.store.Auth.State().IsAuthenticated)
}

func TestRegisterRejectsUnknownFields(t *testing.T) {
	api := newTestAPI(t)

	var errResp handler.ErrorResponse
	status := api.call(http.MethodPost, "/api/auth/register", map[string]any{"nmae": "typo"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", errResp.Error)
}

func TestLoginAndRemembered(t *testing.T) {
	api := newTestAPI(t)
	api.register("Ann", "ann@example.com", "secret1")

	// log in again from a second client, opting in to remembered credentials
	other := newClient(t)
	var resp handler.SessionResponse
	status := api.do(other, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "ann@example.com", "password": "secret1", "rememberCredentials": true,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Auth.RememberCredentials)

	var creds map[string]any
	assert.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/auth/remembered", nil, &creds))
	assert.Equal(t, map[string]any{
		"rememberedEmail":     "ann@example.com",
		"rememberedPassword":  "secret1",
		"rememberCredentials": true,
	}, creds)
}

func TestLoginInvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	api.register("Ann", "ann@example.com", "secret1")

	var errResp handler.ErrorResponse
	status := api.do(newClient(t), http.MethodPost, "/api/auth/login", map[string]any{
		"email": "ann@example.com", "password": "wrong12",
	}, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid_credentials", errResp.Error)
	assert.Equal(t, "Invalid email or password", errResp.Message)

	// shown above the form, like any failure after validation passed
	assert.Equal(t, map[string]string{"general": "Invalid email or password"}, errResp.Fields)
	assert.Equal(t, errResp.Fields, api.store.UI.State().FormState.Errors)

	api.do(newClient(t), http.MethodPost, "/api/auth/login", map[string]any{
		"email": "ann@example.com", "password": "secret1",
	}, nil)
	assert.Empty(t, api.store.UI.State().FormState.Errors)
}

func TestLoginValidation(t *testing.T) {
	api := newTestAPI(t)

	var errResp handler.ErrorResponse
	status := api.call(http.MethodPost, "/api/auth/login", map[string]any{"email": "", "password": ""}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]string{
		"email":    "Email is required",
		"password": "Password is required",
	}, errResp.Fields)
}

func TestLogoutNeedsConfirmation(t *testing.T) {
	api := newTestAPI(t)
	api.register("Ann", "ann@example.com", "secret1")

	var errResp handler.ErrorResponse
	status := api.call(http.MethodPost, "/api/auth/logout", nil, &errResp)
	assert.Equal(t, http.StatusPreconditionRequired, status)
	require.NotNil(t, errResp.Prompt)
	assert.Equal(t, "Logout?", errResp.Prompt.Title)
	assert.True(t, api.store.Auth.State().IsAuthenticated)

	status = api.call(http.MethodPost, "/api/auth/logout?confirm=true", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, api.store.Auth.State().IsAuthenticated)

	// the cookie is gone, and an old token would not match anyway
	assert.Equal(t, http.StatusUnauthorized, api.call(http.MethodGet, "/api/auth/session", nil, nil))
}

func TestLoginAsSomeoneElseInvalidatesOldCookie(t *testing.T) {
	api := newTestAPI(t)
	api.register("Ann", "ann@example.com", "secret1")

	bob := newClient(t)
	status := api.do(bob, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Bob", "email": "bob@example.com", "password": "secret2", "acceptTerms": true,
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	assert.Equal(t, http.StatusUnauthorized, api.call(http.MethodGet, "/api/contacts", nil, nil))
	assert.Equal(t, http.StatusOK, api.do(bob, http.MethodGet, "/api/contacts", nil, nil))
}
