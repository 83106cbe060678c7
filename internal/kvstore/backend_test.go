package kvstore_test

import (
	"testing"

	"github.com/sakif/contact-book/internal/kvstore"
	"github.com/sakif/contact-book/internal/kvstore/kvstoretest"
)

func TestMemoryBackend(t *testing.T) {
	kvstoretest.Run(t, func(t *testing.T) kvstore.Backend {
		return kvstore.NewMemory()
	})
}
