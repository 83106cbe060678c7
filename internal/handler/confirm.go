package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sakif/contact-book/internal/state"
)

// queryConfirmer answers a confirmation prompt from the request itself: the
// client shows the prompt from a 428 response and retries with ?confirm=true.
type queryConfirmer struct {
	r *http.Request
}

var _ state.Confirmer = queryConfirmer{}

func (q queryConfirmer) Confirm(_ context.Context, _ state.Prompt) (bool, error) {
	// anything that is not a recognised boolean counts as "no"
	ok, _ := strconv.ParseBool(q.r.URL.Query().Get("confirm"))
	return ok, nil
}
