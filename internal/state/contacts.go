package state

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/sakif/contact-book/internal/apperror"
	"github.com/sakif/contact-book/internal/model"
	"github.com/sakif/contact-book/internal/repository"
)

// ContactsState is the contacts slice. Contacts holds only the contacts of
// the user the list was last fetched for.
type ContactsState struct {
	Contacts       []model.Contact `json:"contacts"`
	CurrentContact *model.Contact  `json:"currentContact"`
	Loading        bool            `json:"loading"`
	Error          string          `json:"error,omitempty"`
}

func (s ContactsState) clone() ContactsState {
	s.Contacts = slices.Clone(s.Contacts)
	if s.Contacts == nil {
		s.Contacts = []model.Contact{}
	}
	if s.CurrentContact != nil {
		c := *s.CurrentContact
		s.CurrentContact = &c
	}
	return s
}

// Contacts caches the authenticated user's contacts and writes every change
// through to the repository.
type Contacts struct {
	repo   repository.ContactRepository
	events *Events
	logger *slog.Logger

	mu    sync.Mutex
	state ContactsState
	owner string // user the list was fetched for; "" until the first fetch
}

func NewContacts(repo repository.ContactRepository, events *Events, logger *slog.Logger) *Contacts {
	return &Contacts{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (c *Contacts) State() ContactsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Owner returns the user ID the list was last fetched for.
func (c *Contacts) Owner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner
}

// Find returns the loaded contact with the given ID.
func (c *Contacts) Find(id string) (model.Contact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.state.Contacts, func(ct model.Contact) bool { return ct.ID == id })
	if i < 0 {
		return model.Contact{}, false
	}
	return c.state.Contacts[i], true
}

// =========================================================================
// OPERATIONS
// =========================================================================

// FetchContacts replaces the loaded list with userID's persisted contacts.
func (c *Contacts) FetchContacts(ctx context.Context, userID string) ([]model.Contact, error) {
	c.begin(OpFetchContacts)

	contacts, err := c.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, c.reject(OpFetchContacts, failure(err, MsgFetchFailed))
	}

	c.fulfill(OpFetchContacts, func(s *ContactsState) {
		s.Contacts = slices.Clone(contacts)
		c.owner = userID
	})
	return contacts, nil
}

// AddContact stores a new contact for userID with trimmed fields. It is added
// to the loaded list only if that list belongs to userID.
func (c *Contacts) AddContact(ctx context.Context, userID string, in model.ContactInput) (*model.Contact, error) {
	c.begin(OpAddContact)

	contact := &model.Contact{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	}
	if err := c.repo.Create(ctx, contact); err != nil {
		return nil, c.reject(OpAddContact, failure(err, MsgAddFailed))
	}

	c.fulfill(OpAddContact, func(s *ContactsState) {
		if c.owner == userID {
			s.Contacts = append(s.Contacts, *contact)
		}
	})

	c.logger.Info("contact added",
		slog.String("id", contact.ID),
		slog.String("userID", userID),
	)
	return contact, nil
}

// UpdateContact overwrites the name and phone number of the contact with the
// given ID. ID and owner never change. A missing contact is an error.
func (c *Contacts) UpdateContact(ctx context.Context, id string, in model.ContactInput) (*model.Contact, error) {
	c.begin(OpUpdateContact)

	in = model.ContactInput{
		Name:        strings.TrimSpace(in.Name),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	}
	updated, err := c.repo.Update(ctx, id, in)
	if err != nil {
		msg := MsgUpdateFailed
		if errors.Is(err, apperror.ErrNotFound) {
			msg = MsgContactNotFound
		}
		return nil, c.reject(OpUpdateContact, failure(err, msg))
	}

	c.fulfill(OpUpdateContact, func(s *ContactsState) {
		if i := slices.IndexFunc(s.Contacts, func(ct model.Contact) bool { return ct.ID == id }); i >= 0 {
			s.Contacts[i] = *updated
		}
	})

	c.logger.Info("contact updated", slog.String("id", id))
	return updated, nil
}

// DeleteContact removes the contact with the given ID. Deleting an unknown ID
// succeeds and changes nothing. Prefer ConfirmDelete, which asks first.
func (c *Contacts) DeleteContact(ctx context.Context, id string) error {
	c.begin(OpDeleteContact)

	if err := c.repo.Delete(ctx, id); err != nil {
		return c.reject(OpDeleteContact, failure(err, MsgDeleteFailed))
	}

	c.fulfill(OpDeleteContact, func(s *ContactsState) {
		s.Contacts = slices.DeleteFunc(s.Contacts, func(ct model.Contact) bool { return ct.ID == id })
	})

	c.logger.Info("contact deleted", slog.String("id", id))
	return nil
}

// =========================================================================
// SYNCHRONOUS SETTERS
// =========================================================================

// SetCurrentContact stages contact for the edit form.
func (c *Contacts) SetCurrentContact(contact model.Contact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CurrentContact = &contact
}

func (c *Contacts) ClearCurrentContact() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CurrentContact = nil
}

func (c *Contacts) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Error = ""
}

// Reset drops the loaded list and the owner, so the next user starts empty.
func (c *Contacts) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ContactsState{}
	c.owner = ""
}

// =========================================================================
// PHASES
// =========================================================================

func (c *Contacts) begin(op Op) {
	c.mu.Lock()
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	c.events.publish(Event{Op: op, Phase: PhasePending})
}

func (c *Contacts) fulfill(op Op, apply func(*ContactsState)) {
	c.mu.Lock()
	c.state.Loading = false
	c.state.Error = ""
	apply(&c.state)
	c.mu.Unlock()

	c.events.publish(Event{Op: op, Phase: PhaseFulfilled})
}

func (c *Contacts) reject(op Op, err *apperror.AppError) error {
	c.mu.Lock()
	c.state.Loading = false
	c.state.Error = err.Message
	c.mu.Unlock()

	c.events.publish(Event{Op: op, Phase: PhaseRejected, Err: err.Message})
	c.logger.Warn("contacts operation failed",
		slog.String("op", string(op)),
		slog.String("error", err.Error()),
	)
	return err
}
