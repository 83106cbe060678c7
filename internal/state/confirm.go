package state

import (
	"context"
	"fmt"
)

// Prompt is what a confirmation dialog shows before a destructive operation.
type Prompt struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	ConfirmText string `json:"confirmText"`
}

var (
	DeletePrompt = Prompt{
		Title:       "Are you sure?",
		Text:        "You won't be able to revert this!",
		ConfirmText: "Yes, delete it!",
	}
	LogoutPrompt = Prompt{
		Title:       "Logout?",
		Text:        "Are you sure you want to logout?",
		ConfirmText: "Yes, logout!",
	}
)

// Confirmer asks the user to confirm a destructive operation. The dialog
// itself belongs to the presentation layer.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// ConfirmDelete deletes the contact only after the user confirms.
// A declined prompt returns ErrNotConfirmed and touches nothing.
func ConfirmDelete(ctx context.Context, confirmer Confirmer, contacts *Contacts, id string) error {
	if err := ask(ctx, confirmer, DeletePrompt); err != nil {
		return err
	}
	return contacts.DeleteContact(ctx, id)
}

// ConfirmLogout logs out only after the user confirms, then drops the
// contacts of the user who left.
func ConfirmLogout(ctx context.Context, confirmer Confirmer, auth *Auth, contacts *Contacts) error {
	if err := ask(ctx, confirmer, LogoutPrompt); err != nil {
		return err
	}
	if err := auth.Logout(ctx); err != nil {
		return err
	}
	contacts.Reset()
	return nil
}

func ask(ctx context.Context, confirmer Confirmer, p Prompt) error {
	ok, err := confirmer.Confirm(ctx, p)
	if err != nil {
		return fmt.Errorf("state: asking %q: %w", p.Title, err)
	}
	if !ok {
		return ErrNotConfirmed
	}
	return nil
}
