package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/matchpoint/chat-backend/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. The
// error_kind field is present only for synchronization failures, so
// clients can distinguish a platform rejection from an outage.
type errorResponse struct {
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Maps sync failures to statuses per their kind and surfaces the kind.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Synchronization failures carry a discriminated kind.
	var se *domain.SyncError
	if errors.As(err, &se) {
		return syncStatus(se.Kind), errorResponse{
			Error:     syncMessage(se.Kind),
			ErrorKind: string(se.Kind),
		}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "email already exists"}
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusBadRequest, errorResponse{Error: "email already taken by another user"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrUserNotLinked):
		// A user without remote linkage violates the sync invariant;
		// internal inconsistency, not a client mistake.
		return http.StatusInternalServerError, errorResponse{Error: "account is not linked to the messaging platform"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func syncStatus(kind domain.SyncErrorKind) int {
	switch kind {
	case domain.SyncRemoteUnavailable:
		return http.StatusServiceUnavailable
	case domain.SyncRemoteRejected:
		return http.StatusBadGateway
	default:
		// CredentialDecodeError and RemoteAuthError both imply internal
		// inconsistency between the local and remote store.
		return http.StatusInternalServerError
	}
}

func syncMessage(kind domain.SyncErrorKind) string {
	switch kind {
	case domain.SyncRemoteUnavailable:
		return "messaging platform is unavailable, try again later"
	case domain.SyncRemoteRejected:
		return "messaging platform rejected the request"
	default:
		return "messaging platform synchronization failed"
	}
}
