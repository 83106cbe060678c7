// Package repository declares the persistence interfaces the state
// containers depend on, one per entity collection. Implementations live in
// sub-packages; kv stores everything in the key layout of the persisted
// key-value store.
package repository

import (
	"context"

	"github.com/sakif/contact-book/internal/model"
)

// UserRepository owns the "all users" collection.
type UserRepository interface {
	// Create assigns user a fresh ID and appends it. Emails are not checked
	// for uniqueness.
	Create(ctx context.Context, user *model.User) error

	// FindByCredentials returns the first user whose email and password equal
	// the arguments exactly, or apperror.ErrNotFound.
	FindByCredentials(ctx context.Context, email, password string) (*model.User, error)

	List(ctx context.Context) ([]model.User, error)
}

// ContactRepository owns the contacts of every user.
type ContactRepository interface {
	// ListByOwner returns the contacts whose UserID is userID, in insertion order.
	ListByOwner(ctx context.Context, userID string) ([]model.Contact, error)

	// Create assigns contact a fresh ID and appends it.
	Create(ctx context.Context, contact *model.Contact) error

	// Update overwrites Name and PhoneNumber of the contact with the given ID
	// and returns the stored result. Returns apperror.ErrNotFound if absent.
	Update(ctx context.Context, id string, input model.ContactInput) (*model.Contact, error)

	// Delete removes the contact with the given ID; a missing ID is not an error.
	Delete(ctx context.Context, id string) error
}

// SessionRepository owns the current-session keys and the remembered login.
type SessionRepository interface {
	// Save marks user as the authenticated user.
	Save(ctx context.Context, user model.User) error

	// Load returns the persisted session. A half-written session (flag set
	// but no user, or the reverse) comes back as not authenticated.
	Load(ctx context.Context) (model.Session, error)

	// Clear forgets the authenticated user. Remembered credentials stay.
	Clear(ctx context.Context) error

	SaveRemembered(ctx context.Context, creds model.RememberedCredentials) error

	// LoadRemembered returns the remembered login and whether all of it is present.
	LoadRemembered(ctx context.Context) (model.RememberedCredentials, bool, error)

	ClearRemembered(ctx context.Context) error
}
