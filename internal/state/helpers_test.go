package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sakif/contact-book/internal/kvstore"
	"github.com/sakif/contact-book/internal/model"
	"github.com/sakif/contact-book/internal/repository"
	"github.com/sakif/contact-book/internal/repository/kv"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore wires a Store to kv repositories over an in-memory backend.
func newTestStore(t *testing.T) (*Store, *kvstore.Store) {
	t.Helper()
	backend := kvstore.NewMemory()
	t.Cleanup(func() { _ = backend.Close() })

	kvs := kvstore.New(backend, discardLogger())
	s := New(Repositories{
		Users:    kv.NewUserRepo(kvs),
		Contacts: kv.NewContactRepo(kvs),
		Sessions: kv.NewSessionRepo(kvs),
	}, discardLogger())
	return s, kvs
}

var errDiskFull = errors.New("disk full")

// brokenContacts fails every call, like a store whose backend is gone.
type brokenContacts struct{}

var _ repository.ContactRepository = brokenContacts{}

func (brokenContacts) ListByOwner(context.Context, string) ([]model.Contact, error) {
	return nil, errDiskFull
}

func (brokenContacts) Create(context.Context, *model.Contact) error {
	return errDiskFull
}

func (brokenContacts) Update(context.Context, string, model.ContactInput) (*model.Contact, error) {
	return nil, errDiskFull
}

func (brokenContacts) Delete(context.Context, string) error {
	return errDiskFull
}

// brokenSessions fails every call.
type brokenSessions struct{}

var _ repository.SessionRepository = brokenSessions{}

func (brokenSessions) Save(context.Context, model.User) error {
	return errDiskFull
}

func (brokenSessions) Load(context.Context) (model.Session, error) {
	return model.Session{}, errDiskFull
}

func (brokenSessions) Clear(context.Context) error {
	return errDiskFull
}

func (brokenSessions) ClearRemembered(context.Context) error {
	return errDiskFull
}

func (brokenSessions) SaveRemembered(context.Context, model.RememberedCredentials) error {
	return errDiskFull
}

func (brokenSessions) LoadRemembered(context.Context) (model.RememberedCredentials, bool, error) {
	return model.RememberedCredentials{}, false, errDiskFull
}

// failingRemember passes everything through except SaveRemembered.
type failingRemember struct {
	repository.SessionRepository
}

func (failingRemember) SaveRemembered(context.Context, model.RememberedCredentials) error {
	return errDiskFull
}
