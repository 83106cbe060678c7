package kv

import (
	"context"
	"fmt"

	"github.com/sakif/contact-book/internal/apperror"
	"github.com/sakif/contact-book/internal/kvstore"
	"github.com/sakif/contact-book/internal/model"
	"github.com/sakif/contact-book/internal/repository"
)

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo stores users under the "users" key.
type UserRepo struct {
	store *kvstore.Store
}

func NewUserRepo(store *kvstore.Store) *UserRepo {
	return &UserRepo{store: store}
}

// Create appends user with a fresh ID. The caller's struct receives the ID.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = newID()

	err := kvstore.Update(ctx, r.store, KeyUsers, func(users *[]model.User) error {
		*users = append(*users, *user)
		return nil
	})
	return wrapWrite(err, KeyUsers, "creating user")
}

// FindByCredentials compares email and password byte for byte. Registration
// normalizes emails but this lookup does not, so a differently-cased email
// will not match.
func (r *UserRepo) FindByCredentials(ctx context.Context, email, password string) (*model.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.Email == email && u.Password == password {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

// List returns every registered user. A missing or corrupt collection is empty.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if _, err := r.store.Load(ctx, KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("kv: listing users: %w", err)
	}
	return users, nil
}
