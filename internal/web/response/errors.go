package response

import (
	"errors"
	"net/http"

	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/services/accounts"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeLoginTaken         = "LOGIN_TAKEN"
	CodePasswordMismatch   = "PASSWORD_MISMATCH"
	CodeEmptyPassword      = "EMPTY_PASSWORD"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response. Unknown errors become a generic 500
// so internal details never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	JSON(w, he.status, ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return &httpError{http.StatusBadRequest, APIError{CodeValidationFailed, ve.Error()}}

	case errors.Is(err, accounts.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid login or password"}}
	case errors.Is(err, accounts.ErrLoginTaken):
		return &httpError{http.StatusBadRequest, APIError{CodeLoginTaken, "Login already exists"}}
	case errors.Is(err, accounts.ErrPasswordMismatch):
		return &httpError{http.StatusBadRequest, APIError{CodePasswordMismatch, "Passwords do not match"}}
	case errors.Is(err, accounts.ErrEmptyPassword):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyPassword, "Password is required"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
