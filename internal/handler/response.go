package handler

// RESPONSE HELPERS:
// Every response is JSON. Errors share one shape:
//
//	{"error": "not_found", "message": "Contact not found"}
//
// Validation failures add the per-field messages, and a missing confirmation
// adds the prompt the client should show before retrying:
//
//	{"error": "validation_error", "message": "...", "fields": {"name": "Name is required"}}
//	{"error": "confirmation_required", "message": "...", "prompt": {"title": "Are you sure?", ...}}

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/contact-book/internal/apperror"
	"github.com/sakif/contact-book/internal/state"
	"github.com/sakif/contact-book/internal/validation"
)

// maxBodyBytes caps request bodies; every form here is tiny.
const maxBodyBytes = 64 << 10

const internalErrorMessage = "An internal error occurred"

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Prompt  *state.Prompt     `json:"prompt,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its status code. Only AppError messages
// reach the client; anything else becomes a generic 500.
func writeError(w http.ResponseWriter, err error) {
	writeErrorFields(w, err, nil)
}

func writeErrorFields(w http.ResponseWriter, err error, fields map[string]string) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: internalErrorMessage,
			Fields:  fields,
		})
		return
	}

	status := http.StatusInternalServerError
	errorType := "internal_error"

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, errorType = http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrInvalidCredentials):
		status, errorType = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, apperror.ErrNotFound):
		status, errorType = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		status, errorType = http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrPersistence):
		status, errorType = http.StatusServiceUnavailable, "persistence_unavailable"
	}

	resp := ErrorResponse{Error: errorType, Message: appErr.Message, Fields: fields}
	if appErr.Field != "" {
		if resp.Fields == nil {
			resp.Fields = map[string]string{}
		}
		resp.Fields[appErr.Field] = appErr.Message
	}
	writeJSON(w, status, resp)
}

// writeFormFailure reports an operation that failed after its form passed
// validation. The message is shown above the form, so it goes into the UI
// container's form errors under the "general" field as well as the response.
func writeFormFailure(w http.ResponseWriter, ui *state.UI, err error) {
	msg := apperror.Message(err, internalErrorMessage)
	ui.SetFormError(validation.FieldGeneral, msg)
	writeErrorFields(w, err, map[string]string{validation.FieldGeneral: msg})
}

func writeFieldErrors(w http.ResponseWriter, errs validation.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: "Please correct the highlighted fields",
		Fields:  errs,
	})
}

func writeConfirmationRequired(w http.ResponseWriter, p state.Prompt) {
	writeJSON(w, http.StatusPreconditionRequired, ErrorResponse{
		Error:   "confirmation_required",
		Message: p.Text,
		Prompt:  &p,
	})
}

// decodeJSON reads one JSON object from the request body into dst.
// Unknown fields are rejected so typos in field names show up as errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("", fmt.Sprintf("Invalid JSON body: %v", err))
	}
	return nil
}
