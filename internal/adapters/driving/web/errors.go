package web

import (
	"errors"
	"net/http"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/logger"
)

// statusFor maps a domain error to an HTTP status code.
// Wrong-role errors are reported as 401 like missing sessions.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotConfigured):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the user-facing text for err. Validation and conflict
// messages are shown verbatim; everything else gets a generic message.
func messageFor(err error) string {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		return capitalise(validation.Error())
	case errors.As(err, &conflict):
		return capitalise(conflict.Msg)
	}

	switch statusFor(err) {
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusBadRequest:
		return "Invalid request"
	default:
		return "Internal server error"
	}
}

// signStatus is statusFor for the signing endpoints, where a duplicate
// signature is a 400 "Already signed".
func signStatus(err error) (int, string) {
	if errors.Is(err, domain.ErrConflict) {
		return http.StatusBadRequest, "Already signed"
	}
	return statusFor(err), messageFor(err)
}

// logFailure records server-side failures. Client errors are not logged.
func logFailure(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.With("method", r.Method, "path", r.URL.Path).Errorf("request failed: %v", err)
	}
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
