package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestIs_MatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("book appointment: %w", NotFound("doctor %d not found", 7))

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected wrapped error to match ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("expected wrapped error not to match ErrConflict")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("expected kind not_found, got %s", KindOf(err))
	}
	if Message(err) != "doctor 7 not found" {
		t.Errorf("unexpected message %q", Message(err))
	}
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != KindInternal {
		t.Errorf("expected kind internal, got %s", KindOf(err))
	}
	if Message(err) != "internal server error" {
		t.Errorf("unexpected message %q", Message(err))
	}
}

func TestInternal_HidesCause(t *testing.T) {
	err := Internal("save appointment", errors.New("connection reset"))
	if Message(err) != "internal server error" {
		t.Errorf("expected generic message, got %q", Message(err))
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected cause in Error(), got %q", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	handler := HTTPErrorHandler(zerolog.Nop())

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"app error", Forbidden("not your appointment"), http.StatusForbidden, `{"error":"not your appointment"}`},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid id"), http.StatusBadRequest, `{"error":"invalid id"}`},
		{"plain error", errors.New("db down"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("expected body %s, got %s", tt.wantBody, got)
			}
		})
	}
}
