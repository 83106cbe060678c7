package state

import (
	"log/slog"

	"github.com/sakif/contact-book/internal/repository"
)

// Store bundles the three containers and the event hub they publish to.
type Store struct {
	Auth     *Auth
	Contacts *Contacts
	UI       *UI
	Events   *Events
}

// Repositories are the persistence dependencies of a Store.
type Repositories struct {
	Users    repository.UserRepository
	Contacts repository.ContactRepository
	Sessions repository.SessionRepository
}

func New(repos Repositories, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	events := NewEvents()
	return &Store{
		Auth:     NewAuth(repos.Users, repos.Sessions, events, logger.With(slog.String("container", "auth"))),
		Contacts: NewContacts(repos.Contacts, events, logger.With(slog.String("container", "contacts"))),
		UI:       NewUI(),
		Events:   events,
	}
}
