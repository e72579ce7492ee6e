/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/suparena/entityregistry/errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps error kinds onto HTTP status codes and error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.IsAuthenticationFailure(err):
		return http.StatusUnauthorized, "unauthorized"
	case errors.IsValidationError(err):
		return http.StatusBadRequest, "invalid_input"
	case errors.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case errors.IsDuplicateIdentifier(err):
		return http.StatusConflict, "duplicate_identifier"
	case errors.IsConditionFailed(err):
		return http.StatusConflict, "conflict"
	case errors.IsCounterOverflow(err):
		return http.StatusInsufficientStorage, "counter_overflow"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
