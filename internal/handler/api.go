// Package handler is the HTTP presentation layer. Each request dispatches
// one operation on the state containers and renders the resulting slice as
// JSON. Validation happens here, before anything is dispatched, and failed
// fields are written into the UI container's form errors as well as the
// response.
package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/contact-book/internal/auth"
	"github.com/sakif/contact-book/internal/state"
	"github.com/sakif/contact-book/internal/view"
)

// Config holds the presentation settings.
type Config struct {
	PageSize      int  // contacts per page; 0 means view.DefaultPageSize
	SecureCookies bool // set the Secure flag on the session cookie
}

// API groups the handlers over one state.Store.
type API struct {
	store  *state.Store
	tokens *auth.TokenService
	logger *slog.Logger

	Auth     *AuthHandler
	Contacts *ContactsHandler
	UI       *UIHandler
}

func NewAPI(store *state.Store, tokens *auth.TokenService, cfg Config, logger *slog.Logger) *API {
	if cfg.PageSize < 1 {
		cfg.PageSize = view.DefaultPageSize
	}
	return &API{
		store:    store,
		tokens:   tokens,
		logger:   logger,
		Auth:     NewAuthHandler(store, tokens, cfg.SecureCookies, logger),
		Contacts: NewContactsHandler(store, cfg.PageSize, logger),
		UI:       NewUIHandler(store, logger),
	}
}

// Routes returns the API router, meant to be mounted at /api.
//
// ROUTE STRUCTURE:
//
//	POST   /auth/register          → register + session cookie
//	POST   /auth/login             → login + session cookie
//	GET    /auth/remembered        → remembered login prefill
//	POST   /auth/logout            → logout (needs ?confirm=true)       [session]
//	GET    /auth/session           → auth slice                         [session]
//	GET    /contacts               → sorted, paginated contacts         [session]
//	POST   /contacts               → add contact                        [session]
//	PUT    /contacts/{id}          → update contact                     [session]
//	DELETE /contacts/{id}          → delete contact (needs ?confirm=true) [session]
//	PUT    /contacts/current/{id}  → stage contact for editing          [session]
//	DELETE /contacts/current       → end the edit flow                  [session]
//	GET    /ui                     → UI slice                           [session]
//	POST   /ui/modals/add|edit     → open a modal                       [session]
//	DELETE /ui/modals              → close all modals                   [session]
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/register", a.Auth.HandleRegister)
	r.Post("/auth/login", a.Auth.HandleLogin)
	r.Get("/auth/remembered", a.Auth.HandleRemembered)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(a.tokens, a.currentUserID, a.logger))

		r.Post("/auth/logout", a.Auth.HandleLogout)
		r.Get("/auth/session", a.Auth.HandleSession)

		r.Get("/contacts", a.Contacts.HandleList)
		r.Post("/contacts", a.Contacts.HandleCreate)
		r.Put("/contacts/current/{id}", a.Contacts.HandleSelect)
		r.Delete("/contacts/current", a.Contacts.HandleClearCurrent)
		r.Put("/contacts/{id}", a.Contacts.HandleUpdate)
		r.Delete("/contacts/{id}", a.Contacts.HandleDelete)

		r.Get("/ui", a.UI.HandleState)
		r.Post("/ui/modals/add", a.UI.HandleOpenAdd)
		r.Post("/ui/modals/edit", a.UI.HandleOpenEdit)
		r.Delete("/ui/modals", a.UI.HandleCloseAll)
	})

	return r
}

func (a *API) currentUserID() (string, bool) {
	u, ok := a.store.Auth.CurrentUser()
	return u.ID, ok
}
