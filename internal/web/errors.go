package web

// errors.go maps service errors to HTTP responses.
//
// Domain errors carry enough detail for the client to act on: the offending
// code, or the field and value that collided. Anything else is a storage or
// internal failure; its technical message stays in the log and the client gets
// the friendly text and support code from core.MapError.
//
// errorCode in every body repeats the HTTP status.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/countries/internal/core"
	"github.com/JonMunkholm/countries/internal/logging"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	ErrorCode    int     `json:"errorCode"`
	ErrorMessage string  `json:"errorMessage"`
	InvalidCode  *string `json:"invalidCode,omitempty"`
	NotFoundCode *string `json:"notFoundCode,omitempty"`
	Field        *string `json:"field,omitempty"`
	Value        *string `json:"value,omitempty"`

	// Set only for internal failures.
	Code   string `json:"code,omitempty"`
	Action string `json:"action,omitempty"`
}

// errorResponse picks the status and body for err.
func errorResponse(err error) (int, ErrorResponse) {
	var (
		invalidCode *core.InvalidCodeError
		notFound    *core.NotFoundError
		duplicate   *core.DuplicateDataError
		invalidArg  *core.InvalidArgumentError
	)

	switch {
	case errors.As(err, &invalidCode):
		return http.StatusBadRequest, ErrorResponse{
			ErrorCode:    http.StatusBadRequest,
			ErrorMessage: invalidCode.Error(),
			InvalidCode:  &invalidCode.Code,
		}
	case errors.As(err, &notFound):
		return http.StatusNotFound, ErrorResponse{
			ErrorCode:    http.StatusNotFound,
			ErrorMessage: notFound.Error(),
			NotFoundCode: &notFound.Code,
		}
	case errors.As(err, &duplicate):
		return http.StatusConflict, ErrorResponse{
			ErrorCode:    http.StatusConflict,
			ErrorMessage: duplicate.Error(),
			Field:        &duplicate.Field,
			Value:        &duplicate.Value,
		}
	case errors.As(err, &invalidArg):
		return http.StatusBadRequest, ErrorResponse{
			ErrorCode:    http.StatusBadRequest,
			ErrorMessage: invalidArg.Message,
		}
	default:
		msg := core.MapError(err)
		return http.StatusInternalServerError, ErrorResponse{
			ErrorCode:    http.StatusInternalServerError,
			ErrorMessage: msg.Message,
			Code:         msg.Code,
			Action:       msg.Action,
		}
	}
}

// respondError writes the response for err. Internal failures are logged
// with the technical error; domain errors were already logged by the service.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)

	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request error",
			"path", r.URL.Path,
			"method", r.Method,
			"status", status,
			"error", err.Error(),
			"code", body.Code,
		)
	}

	writeJSON(w, r, status, body)
}

// respondBadRequest writes a 400 that did not come from the service, such as
// a malformed body.
func respondBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeJSON(w, r, http.StatusBadRequest, ErrorResponse{
		ErrorCode:    http.StatusBadRequest,
		ErrorMessage: message,
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Warn("json encode error", "error", err)
	}
}
