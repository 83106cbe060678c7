package state

import (
	"maps"
	"sync"
)

type Modals struct {
	AddContact  bool `json:"addContact"`
	EditContact bool `json:"editContact"`
}

type FormState struct {
	IsSubmitting bool              `json:"isSubmitting"`
	Errors       map[string]string `json:"errors"`
}

// UIState is scratch view state. It is never persisted.
//
// INVARIANT: at most one of Modals.AddContact and Modals.EditContact is set.
type UIState struct {
	Modals    Modals    `json:"modals"`
	FormState FormState `json:"formState"`
}

// UI holds the modal flags and form errors. Every method is synchronous.
type UI struct {
	mu    sync.Mutex
	state UIState
}

func NewUI() *UI {
	return &UI{state: UIState{FormState: FormState{Errors: map[string]string{}}}}
}

func (u *UI) State() UIState {
	u.mu.Lock()
	defer u.mu.Unlock()

	s := u.state
	s.FormState.Errors = maps.Clone(u.state.FormState.Errors)
	return s
}

// OpenAddContactModal opens the add modal and closes the edit modal.
func (u *UI) OpenAddContactModal() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Modals = Modals{AddContact: true}
}

// OpenEditContactModal opens the edit modal and closes the add modal.
func (u *UI) OpenEditContactModal() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Modals = Modals{EditContact: true}
}

func (u *UI) CloseAddContactModal() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Modals.AddContact = false
}

func (u *UI) CloseEditContactModal() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Modals.EditContact = false
}

func (u *UI) CloseAllModals() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Modals = Modals{}
}

func (u *UI) SetFormSubmitting(submitting bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.FormState.IsSubmitting = submitting
}

func (u *UI) SetFormError(field, message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.FormState.Errors[field] = message
}

func (u *UI) ClearFormError(field string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.state.FormState.Errors, field)
}

// SetFormErrors replaces the whole error map with a copy of errs.
func (u *UI) SetFormErrors(errs map[string]string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.state.FormState.Errors = maps.Clone(errs)
	if u.state.FormState.Errors == nil {
		u.state.FormState.Errors = map[string]string{}
	}
}

func (u *UI) ClearAllFormErrors() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.FormState.Errors = map[string]string{}
}
