// Package respond writes JSON bodies and maps engine errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chris/aura-wagers/pkg/api"
	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/middleware"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// StatusFor maps an engine error kind to its HTTP status.
func StatusFor(kind aura.Kind) int {
	switch kind {
	case aura.KindValidation, aura.KindState, aura.KindInsufficientResource:
		return http.StatusBadRequest
	case aura.KindConflict:
		return http.StatusConflict
	case aura.KindAuthorization:
		return http.StatusForbidden
	case aura.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Error writes err as {"error": code, "message": text}. Unclassified errors become 500 and are logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var engineErr *aura.Error
	if errors.As(err, &engineErr) {
		JSON(w, StatusFor(engineErr.Kind), api.Error{Error: engineErr.Code, Message: engineErr.Message})
		return
	}
	slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	JSON(w, http.StatusInternalServerError, api.Error{Error: "InternalError", Message: "internal server error"})
}

// Decode reads a JSON body into v, answering 400 when it is malformed.
func Decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		JSON(w, http.StatusBadRequest, api.Error{Error: "InvalidRequest", Message: "Invalid request body: " + err.Error()})
		return false
	}
	return true
}

// Caller returns the authenticated user, answering 401 when there is none.
func Caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		JSON(w, http.StatusUnauthorized, api.Error{Error: "Unauthorized", Message: "authentication required"})
		return "", false
	}
	return userID, true
}

// ParamError answers 400 for path and query parameters the router could not bind.
func ParamError(w http.ResponseWriter, r *http.Request, err error) {
	JSON(w, http.StatusBadRequest, api.Error{Error: "InvalidParameter", Message: err.Error()})
}
