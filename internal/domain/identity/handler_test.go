package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/homa/homa/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *mockUserRepo, *auth.TokenRevocationStore, *echo.Echo) {
	t.Helper()
	svc, ur, _ := newTestService()
	store := auth.NewTokenRevocationStore(time.Minute)
	t.Cleanup(store.Close)
	return NewHandler(svc, store), ur, store, echo.New()
}

func TestHandler_Register_JSON(t *testing.T) {
	h, ur, _, e := newTestHandler(t)

	body := `{"email":"jane@example.com","password":"patient123","full_name":"Jane Doe","gender":"Female","phone":"555-0101","age":34}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("response must not expose the password hash")
	}
	if len(ur.users) != 1 {
		t.Errorf("expected 1 user, got %d", len(ur.users))
	}
}

func TestHandler_Register_Form(t *testing.T) {
	h, ur, _, e := newTestHandler(t)

	form := "email=jane%40example.com&password=patient123&full_name=Jane&gender=Female&phone=555&age=30"
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ur.users) != 1 {
		t.Errorf("expected 1 user, got %d", len(ur.users))
	}
}

func TestHandler_Login(t *testing.T) {
	h, _, _, e := newTestHandler(t)
	if _, _, err := h.svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}

	body := `{"email":"jane@example.com","password":"patient123"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["access_token"] == "" || resp["access_token"] == nil {
		t.Errorf("expected access_token in response, got %v", resp)
	}
	if resp["token_type"] != "Bearer" {
		t.Errorf("expected Bearer token type, got %v", resp["token_type"])
	}
}

func TestHandler_Logout_RevokesToken(t *testing.T) {
	h, _, store, e := newTestHandler(t)

	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti-1",
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	ctx := context.WithValue(context.Background(), auth.TokenKey, claims)
	req := httptest.NewRequest(http.MethodGet, "/logout", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.IsRevoked("jti-1") {
		t.Error("expected token to be revoked")
	}
}

func TestHandler_Logout_NoClaims(t *testing.T) {
	h, _, _, e := newTestHandler(t)
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/logout", nil), httptest.NewRecorder())

	err := h.Logout(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}
