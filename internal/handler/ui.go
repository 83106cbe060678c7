package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/contact-book/internal/state"
)

// UIHandler exposes the UI slice and its modal operations.
type UIHandler struct {
	store  *state.Store
	logger *slog.Logger
}

func NewUIHandler(store *state.Store, logger *slog.Logger) *UIHandler {
	return &UIHandler{store: store, logger: logger}
}

// HandleState returns the UI slice.
//
// HTTP: GET /api/ui
func (h *UIHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.UI.State())
}

// HandleOpenAdd opens the add modal with an empty form.
//
// HTTP: POST /api/ui/modals/add
func (h *UIHandler) HandleOpenAdd(w http.ResponseWriter, r *http.Request) {
	h.store.Contacts.ClearCurrentContact()
	h.store.UI.ClearAllFormErrors()
	h.store.UI.OpenAddContactModal()
	writeJSON(w, http.StatusOK, h.store.UI.State())
}

// HandleOpenEdit opens the edit modal. The contact to edit is staged with
// PUT /api/contacts/current/{id}, which also opens the modal.
//
// HTTP: POST /api/ui/modals/edit
func (h *UIHandler) HandleOpenEdit(w http.ResponseWriter, r *http.Request) {
	h.store.UI.OpenEditContactModal()
	writeJSON(w, http.StatusOK, h.store.UI.State())
}

// HandleCloseAll closes every modal and drops the form state.
//
// HTTP: DELETE /api/ui/modals
func (h *UIHandler) HandleCloseAll(w http.ResponseWriter, r *http.Request) {
	h.store.Contacts.ClearCurrentContact()
	h.store.UI.CloseAllModals()
	h.store.UI.ClearAllFormErrors()
	writeJSON(w, http.StatusOK, h.store.UI.State())
}
