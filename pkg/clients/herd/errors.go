package herd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// ErrUnauthorized matches any APIError carrying a 401 status.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-success response from the herd service. Message is the
// human-readable text shown to the user.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) classify authentication failures.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err means the remote session is gone.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// errorBody mirrors the structured error payloads of the service: some routes
// answer {"message": ...}, others {"error": ...}.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(resp *resty.Response, body *errorBody) *APIError {
	code := resp.StatusCode()
	message := ""
	if body != nil {
		message = body.Message
		if message == "" {
			message = body.Error
		}
	}
	if message == "" {
		message = fmt.Sprintf("server error: %d", code)
	}
	return &APIError{StatusCode: code, Message: message}
}
