// Package kv implements the repository interfaces on a kvstore.Store, using
// one JSON value per logical table:
//
//	users                 []model.User
//	contacts              []model.Contact   (every user's contacts together)
//	currentUser           model.User
//	isAuthenticated       bool
//	rememberedEmail       string
//	rememberedPassword    string
//	rememberCredentials   bool
//
// Collection writes go through kvstore.Update, so each one is a serialized,
// version-checked read-modify-write of the whole array.
package kv

import (
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/contact-book/internal/apperror"
	"github.com/sakif/contact-book/internal/kvstore"
)

// Persisted keys.
const (
	KeyUsers               = "users"
	KeyContacts            = "contacts"
	KeyCurrentUser         = "currentUser"
	KeyIsAuthenticated     = "isAuthenticated"
	KeyRememberedEmail     = "rememberedEmail"
	KeyRememberedPassword  = "rememberedPassword"
	KeyRememberCredentials = "rememberCredentials"
)

// newID returns a fresh identifier. xid IDs start with a timestamp, so they
// sort roughly by creation time. Tests replace it for predictable IDs.
var newID = func() string {
	return xid.New().String()
}

// wrapWrite turns a lost version race into apperror.Conflict and wraps
// everything else with context.
func wrapWrite(err error, key, doing string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kvstore.ErrVersionMismatch) {
		return fmt.Errorf("kv: %s: %w", doing, apperror.Conflict("collection", key))
	}
	return fmt.Errorf("kv: %s: %w", doing, err)
}
