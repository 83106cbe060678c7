package kv

import (
	"context"
	"fmt"

	"github.com/sakif/contact-book/internal/apperror"
	"github.com/sakif/contact-book/internal/kvstore"
	"github.com/sakif/contact-book/internal/model"
	"github.com/sakif/contact-book/internal/repository"
)

// compile-time check that *ContactRepo implements repository.ContactRepository
var _ repository.ContactRepository = (*ContactRepo)(nil)

// ContactRepo stores every user's contacts in one array under "contacts".
// Per-owner scoping happens here, so callers never see another user's rows.
type ContactRepo struct {
	store *kvstore.Store
}

func NewContactRepo(store *kvstore.Store) *ContactRepo {
	return &ContactRepo{store: store}
}

func (r *ContactRepo) ListByOwner(ctx context.Context, userID string) ([]model.Contact, error) {
	var all []model.Contact
	if _, err := r.store.Load(ctx, KeyContacts, &all); err != nil {
		return nil, fmt.Errorf("kv: listing contacts for %s: %w", userID, err)
	}

	owned := make([]model.Contact, 0, len(all))
	for _, c := range all {
		if c.UserID == userID {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

// Create appends contact with a fresh ID. The caller's struct receives the ID.
func (r *ContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	contact.ID = newID()

	err := kvstore.Update(ctx, r.store, KeyContacts, func(all *[]model.Contact) error {
		*all = append(*all, *contact)
		return nil
	})
	return wrapWrite(err, KeyContacts, "creating contact")
}

// Update replaces Name and PhoneNumber only; ID and UserID are kept.
func (r *ContactRepo) Update(ctx context.Context, id string, input model.ContactInput) (*model.Contact, error) {
	var updated model.Contact

	err := kvstore.Update(ctx, r.store, KeyContacts, func(all *[]model.Contact) error {
		for i := range *all {
			c := &(*all)[i]
			if c.ID != id {
				continue
			}
			c.Name = input.Name
			c.PhoneNumber = input.PhoneNumber
			updated = *c
			return nil
		}
		return apperror.NotFound("contact", id)
	})
	if err != nil {
		return nil, wrapWrite(err, KeyContacts, "updating contact "+id)
	}
	return &updated, nil
}

// Delete removes the contact with the given ID. When no contact matches the
// collection is still rewritten unchanged.
func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	err := kvstore.Update(ctx, r.store, KeyContacts, func(all *[]model.Contact) error {
		kept := (*all)[:0]
		for _, c := range *all {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		*all = kept
		return nil
	})
	return wrapWrite(err, KeyContacts, "deleting contact "+id)
}
