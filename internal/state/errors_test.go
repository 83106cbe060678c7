package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/contact-book/internal/apperror"
)

func TestFailureKeepsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "backend failure", err: errDiskFull, want: apperror.ErrPersistence},
		{name: "not found", err: apperror.NotFound("contact", "c1"), want: apperror.ErrNotFound},
		{name: "conflict", err: fmt.Errorf("kv: %w", apperror.Conflict("collection", "contacts")), want: apperror.ErrConflict},
		{name: "invalid credentials", err: apperror.InvalidCredentials(), want: apperror.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := failure(tt.err, MsgUpdateFailed)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, MsgUpdateFailed, got.Message)
		})
	}
}

func TestFailureOnBackendErrorIsPersistenceUnavailable(t *testing.T) {
	assert.Equal(t, apperror.PersistenceUnavailable(MsgFetchFailed, errDiskFull), failure(errDiskFull, MsgFetchFailed))
}
