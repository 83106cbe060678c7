package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/contact-book/internal/auth"
	"github.com/sakif/contact-book/internal/model"
	"github.com/sakif/contact-book/internal/state"
	"github.com/sakif/contact-book/internal/validation"
)

// AuthHandler serves registration, login, logout and the auth slice.
type AuthHandler struct {
	store         *state.Store
	tokens        *auth.TokenService
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(store *state.Store, tokens *auth.TokenService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		store:         store,
		tokens:        tokens,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AcceptTerms bool   `json:"acceptTerms"`
}

type loginRequest struct {
	Email               string `json:"email"`
	Password            string `json:"password"`
	RememberCredentials bool   `json:"rememberCredentials"`
}

// SessionResponse is returned by register, login and GET /auth/session.
type SessionResponse struct {
	Auth      state.AuthState `json:"auth"`
	ExpiresAt string          `json:"expiresAt,omitempty"`
}

// HandleRegister creates an account and logs it in.
//
// HTTP: POST /api/auth/register
// BODY: {"name":"Ann","email":"ann@example.com","password":"secret1","acceptTerms":true}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if errs := validation.ValidateRegister(req.Name, req.Email, req.Password, req.AcceptTerms); !errs.Valid() {
		h.store.UI.SetFormErrors(errs)
		writeFieldErrors(w, errs)
		return
	}
	h.store.UI.ClearAllFormErrors()

	h.store.UI.SetFormSubmitting(true)
	defer h.store.UI.SetFormSubmitting(false)

	user, err := h.store.Auth.Register(r.Context(), state.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeFormFailure(w, h.store.UI, err)
		return
	}

	h.startSession(w, r, *user, http.StatusCreated)
}

// HandleLogin checks the credentials and starts a session.
//
// HTTP: POST /api/auth/login
// BODY: {"email":"ann@example.com","password":"secret1","rememberCredentials":true}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if errs := validation.ValidateLogin(req.Email, req.Password); !errs.Valid() {
		h.store.UI.SetFormErrors(errs)
		writeFieldErrors(w, errs)
		return
	}
	h.store.UI.ClearAllFormErrors()

	h.store.UI.SetFormSubmitting(true)
	defer h.store.UI.SetFormSubmitting(false)

	user, err := h.store.Auth.Login(r.Context(), state.LoginInput{
		Email:               req.Email,
		Password:            req.Password,
		RememberCredentials: req.RememberCredentials,
	})
	if err != nil {
		writeFormFailure(w, h.store.UI, err)
		return
	}

	h.startSession(w, r, *user, http.StatusOK)
}

// startSession issues the cookie and loads the new user's contacts, which
// have to be fetched before the list is trustworthy. A failed fetch is left
// in the contacts slice; the login itself still succeeded.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user model.User, status int) {
	token, claims, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("issuing session token",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}
	auth.SetSessionCookie(w, token, claims.ExpiresAt, h.secureCookies)

	h.store.Contacts.Reset()
	if _, err := h.store.Contacts.FetchContacts(r.Context(), user.ID); err != nil {
		h.logger.Warn("fetching contacts after login",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, status, SessionResponse{
		Auth:      h.store.Auth.State(),
		ExpiresAt: claims.ExpiresAt.UTC().Format(http.TimeFormat),
	})
}

// HandleLogout ends the session after the client confirms.
//
// HTTP: POST /api/auth/logout?confirm=true
// Without confirm=true the response is 428 with the prompt to show.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	err := state.ConfirmLogout(r.Context(), queryConfirmer{r}, h.store.Auth, h.store.Contacts)
	if errors.Is(err, state.ErrNotConfirmed) {
		writeConfirmationRequired(w, state.LogoutPrompt)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	auth.ClearSessionCookie(w, h.secureCookies)
	h.store.UI.CloseAllModals()
	h.store.UI.ClearAllFormErrors()

	writeJSON(w, http.StatusOK, map[string]string{"message": "You have been successfully logged out."})
}

// HandleSession returns the auth slice.
//
// HTTP: GET /api/auth/session
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{Auth: h.store.Auth.State()})
}

// HandleRemembered returns the login saved by the last opted-in login, for
// prefilling the login form. With nothing saved only the flag is returned.
//
// HTTP: GET /api/auth/remembered
func (h *AuthHandler) HandleRemembered(w http.ResponseWriter, r *http.Request) {
	creds, ok, err := h.store.Auth.RememberedCredentials(r.Context())
	if err != nil {
		h.logger.Error("loading remembered credentials", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	if !ok {
		creds = model.RememberedCredentials{}
	}
	writeJSON(w, http.StatusOK, creds)
}
