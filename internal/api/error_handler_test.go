package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/matchpoint/chat-backend/internal/core/domain"
)

func handleError(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	return rec.Code, body
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrEmailTaken, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUserNotLinked, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, _ := handleError(t, tc.err)
		if code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
	}
}

func TestErrorHandler_SyncErrors(t *testing.T) {
	cases := []struct {
		kind domain.SyncErrorKind
		code int
	}{
		{domain.SyncCredentialCorrupt, http.StatusInternalServerError},
		{domain.SyncRemoteAuth, http.StatusInternalServerError},
		{domain.SyncRemoteUnavailable, http.StatusServiceUnavailable},
		{domain.SyncRemoteRejected, http.StatusBadGateway},
	}
	for _, tc := range cases {
		code, body := handleError(t, &domain.SyncError{Kind: tc.kind, Op: "test"})
		if code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.kind, tc.code, code)
		}
		if body["error_kind"] != string(tc.kind) {
			t.Fatalf("%s: expected error_kind in envelope, got %v", tc.kind, body)
		}
	}
}

func TestErrorHandler_EchoError(t *testing.T) {
	code, body := handleError(t, echo.NewHTTPError(http.StatusTeapot, "nope"))
	if code != http.StatusTeapot || body["error"] != "nope" {
		t.Fatalf("unexpected response: %d %v", code, body)
	}
}

func TestErrorHandler_WrappedSyncError(t *testing.T) {
	wrapped := &domain.SyncError{Kind: domain.SyncCredentialCorrupt, Op: "deprovision", Err: errors.New("bad envelope")}
	code, body := handleError(t, wrapped)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if body["error_kind"] != "CredentialDecodeError" {
		t.Fatalf("expected CredentialDecodeError kind, got %v", body)
	}
}
