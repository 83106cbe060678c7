package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/contact-book/internal/apperror"
	"github.com/sakif/contact-book/internal/auth"
	"github.com/sakif/contact-book/internal/model"
	"github.com/sakif/contact-book/internal/state"
	"github.com/sakif/contact-book/internal/validation"
	"github.com/sakif/contact-book/internal/view"
)

// ContactsHandler serves the logged-in user's contact list.
//
// OWNERSHIP:
// The persisted collection holds every user's contacts. A contact that is not
// in the caller's own list is treated as missing: updating or selecting it is
// 404, deleting it is a no-op, exactly as for an ID that does not exist.
type ContactsHandler struct {
	store    *state.Store
	pageSize int
	logger   *slog.Logger
}

func NewContactsHandler(store *state.Store, pageSize int, logger *slog.Logger) *ContactsHandler {
	return &ContactsHandler{
		store:    store,
		pageSize: pageSize,
		logger:   logger,
	}
}

type contactRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// ListResponse is one rendered page of the contact list.
type ListResponse struct {
	view.Page
	Sort  view.SortKey   `json:"sort"`
	Order view.Direction `json:"order"`
	Error string         `json:"error,omitempty"`
}

// HandleList refetches the caller's contacts and renders one page.
//
// HTTP: GET /api/contacts?sort=name|phone&order=asc|desc&page=N
func (h *ContactsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	q := r.URL.Query()

	key, err := view.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("sort", "sort must be name or phone"))
		return
	}
	dir, err := view.ParseDirection(q.Get("order"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("order", "order must be asc or desc"))
		return
	}
	page := 1
	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, apperror.ValidationFailed("page", "page must be a positive number"))
			return
		}
	}

	if _, err := h.store.Contacts.FetchContacts(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	st := h.store.Contacts.State()
	writeJSON(w, http.StatusOK, ListResponse{
		Page:  view.Paginate(view.Sort(st.Contacts, key, dir), page, h.pageSize),
		Sort:  key,
		Order: dir,
		Error: st.Error,
	})
}

// HandleCreate adds a contact for the caller and closes the add modal.
//
// HTTP: POST /api/contacts
// BODY: {"name":"Bob","phoneNumber":"+1 555 123 4567"}
func (h *ContactsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	in, ok := h.readContact(w, r)
	if !ok {
		return
	}

	h.store.UI.SetFormSubmitting(true)
	defer h.store.UI.SetFormSubmitting(false)

	contact, err := h.store.Contacts.AddContact(r.Context(), userID, in)
	if err != nil {
		writeFormFailure(w, h.store.UI, err)
		return
	}

	h.store.UI.CloseAddContactModal()
	writeJSON(w, http.StatusCreated, contact)
}

// HandleUpdate overwrites a contact's name and phone number and ends the
// edit flow.
//
// HTTP: PUT /api/contacts/{id}
func (h *ContactsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.owned(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	in, ok := h.readContact(w, r)
	if !ok {
		return
	}

	h.store.UI.SetFormSubmitting(true)
	defer h.store.UI.SetFormSubmitting(false)

	contact, err := h.store.Contacts.UpdateContact(r.Context(), id, in)
	if err != nil {
		writeFormFailure(w, h.store.UI, err)
		return
	}

	h.store.Contacts.ClearCurrentContact()
	h.store.UI.CloseEditContactModal()
	writeJSON(w, http.StatusOK, contact)
}

// HandleDelete deletes a contact after the client confirms.
//
// HTTP: DELETE /api/contacts/{id}?confirm=true
// Without confirm=true the response is 428 with the prompt to show.
func (h *ContactsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmer := queryConfirmer{r}

	_, err := h.owned(r.Context(), id)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		// nothing of ours to delete; still ask, then succeed
		if ok, _ := confirmer.Confirm(r.Context(), state.DeletePrompt); !ok {
			writeConfirmationRequired(w, state.DeletePrompt)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		writeError(w, err)
		return
	}

	err = state.ConfirmDelete(r.Context(), confirmer, h.store.Contacts, id)
	if errors.Is(err, state.ErrNotConfirmed) {
		writeConfirmationRequired(w, state.DeletePrompt)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("contact deleted via API", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// HandleSelect stages a contact for editing and opens the edit modal.
//
// HTTP: PUT /api/contacts/current/{id}
func (h *ContactsHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	contact, err := h.owned(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.store.Contacts.SetCurrentContact(contact)
	h.store.UI.ClearAllFormErrors()
	h.store.UI.OpenEditContactModal()
	writeJSON(w, http.StatusOK, contact)
}

// HandleClearCurrent ends the edit flow without saving.
//
// HTTP: DELETE /api/contacts/current
func (h *ContactsHandler) HandleClearCurrent(w http.ResponseWriter, r *http.Request) {
	h.store.Contacts.ClearCurrentContact()
	h.store.UI.CloseEditContactModal()
	w.WriteHeader(http.StatusNoContent)
}

// readContact decodes and validates the contact form. On failure it writes
// the response, records the field errors in the UI slice and returns false.
func (h *ContactsHandler) readContact(w http.ResponseWriter, r *http.Request) (model.ContactInput, bool) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return model.ContactInput{}, false
	}

	if errs := validation.ValidateContact(req.Name, req.PhoneNumber); !errs.Valid() {
		h.store.UI.SetFormErrors(errs)
		writeFieldErrors(w, errs)
		return model.ContactInput{}, false
	}
	h.store.UI.ClearAllFormErrors()

	return model.ContactInput{Name: req.Name, PhoneNumber: req.PhoneNumber}, true
}

// owned returns the caller's contact with the given ID, loading the caller's
// list first if the container holds someone else's (or nothing).
func (h *ContactsHandler) owned(ctx context.Context, id string) (model.Contact, error) {
	userID, _ := auth.UserIDFromContext(ctx)

	if h.store.Contacts.Owner() != userID {
		if _, err := h.store.Contacts.FetchContacts(ctx, userID); err != nil {
			return model.Contact{}, err
		}
	}

	contact, ok := h.store.Contacts.Find(id)
	if !ok {
		return model.Contact{}, &apperror.AppError{Err: apperror.ErrNotFound, Message: state.MsgContactNotFound}
	}
	return contact, nil
}
