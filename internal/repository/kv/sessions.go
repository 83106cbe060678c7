package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakif/contact-book/internal/kvstore"
	"github.com/sakif/contact-book/internal/model"
	"github.com/sakif/contact-book/internal/repository"
)

// compile-time check that *SessionRepo implements repository.SessionRepository
var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo stores the current session and the remembered login, one key
// per field. The keys are written one after another, so a crash can leave a
// half-written session; Load treats that as logged out.
type SessionRepo struct {
	store *kvstore.Store
}

func NewSessionRepo(store *kvstore.Store) *SessionRepo {
	return &SessionRepo{store: store}
}

func (r *SessionRepo) Save(ctx context.Context, user model.User) error {
	if err := r.store.Save(ctx, KeyCurrentUser, user); err != nil {
		return fmt.Errorf("kv: saving session: %w", err)
	}
	if err := r.store.Save(ctx, KeyIsAuthenticated, true); err != nil {
		return fmt.Errorf("kv: saving session: %w", err)
	}
	return nil
}

// Load reads back the session. Only a stored user together with a true
// isAuthenticated flag counts as logged in; anything else returns the zero
// Session with the RememberCredentials flag still filled in.
func (r *SessionRepo) Load(ctx context.Context) (model.Session, error) {
	var session model.Session

	var remember bool
	if _, err := r.store.Load(ctx, KeyRememberCredentials, &remember); err != nil {
		return session, fmt.Errorf("kv: loading session: %w", err)
	}
	session.RememberCredentials = remember

	var authenticated bool
	ok, err := r.store.Load(ctx, KeyIsAuthenticated, &authenticated)
	if err != nil {
		return session, fmt.Errorf("kv: loading session: %w", err)
	}
	if !ok || !authenticated {
		return session, nil
	}

	// a stored JSON null decodes into a nil pointer
	var user *model.User
	ok, err = r.store.Load(ctx, KeyCurrentUser, &user)
	if err != nil {
		return session, fmt.Errorf("kv: loading session: %w", err)
	}
	if !ok || user == nil {
		return session, nil
	}

	session.CurrentUser = user
	session.IsAuthenticated = true
	return session, nil
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	return removeKeys(ctx, r.store, "clearing session", KeyCurrentUser, KeyIsAuthenticated)
}

func (r *SessionRepo) SaveRemembered(ctx context.Context, creds model.RememberedCredentials) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyRememberedEmail, creds.Email},
		{KeyRememberedPassword, creds.Password},
		{KeyRememberCredentials, creds.Remember},
	}
	for _, v := range values {
		if err := r.store.Save(ctx, v.key, v.value); err != nil {
			return fmt.Errorf("kv: saving remembered credentials: %w", err)
		}
	}
	return nil
}

// LoadRemembered reports ok=true only when all three keys are present and the
// flag is set.
func (r *SessionRepo) LoadRemembered(ctx context.Context) (model.RememberedCredentials, bool, error) {
	var creds model.RememberedCredentials

	found := 0
	for _, f := range []struct {
		key string
		dst any
	}{
		{KeyRememberedEmail, &creds.Email},
		{KeyRememberedPassword, &creds.Password},
		{KeyRememberCredentials, &creds.Remember},
	} {
		ok, err := r.store.Load(ctx, f.key, f.dst)
		if err != nil {
			return model.RememberedCredentials{}, false, fmt.Errorf("kv: loading remembered credentials: %w", err)
		}
		if ok {
			found++
		}
	}

	if found < 3 || !creds.Remember {
		return model.RememberedCredentials{}, false, nil
	}
	return creds, true, nil
}

func (r *SessionRepo) ClearRemembered(ctx context.Context) error {
	return removeKeys(ctx, r.store, "clearing remembered credentials",
		KeyRememberedEmail, KeyRememberedPassword, KeyRememberCredentials)
}

// removeKeys removes every key even if an earlier removal failed, and reports
// all failures together.
func removeKeys(ctx context.Context, store *kvstore.Store, doing string, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := store.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("kv: %s: %w", doing, err)
	}
	return nil
}
