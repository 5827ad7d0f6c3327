package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, UserIDFromContext(c.Request().Context()))
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/", okHandler, mw)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_ValidToken(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", "Dr. Rao", "doctor", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doRequest(t, Middleware(testSecret), "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "user-1" {
		t.Errorf("expected user id on context, got %q", rec.Body.String())
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	rec := doRequest(t, Middleware(testSecret), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_WrongSecret(t *testing.T) {
	token, err := IssueToken([]byte("other-secret"), "user-1", "", "doctor", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doRequest(t, Middleware(testSecret), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", "", "doctor", -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doRequest(t, Middleware(testSecret), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDevMiddleware(t *testing.T) {
	rec := doRequest(t, DevMiddleware(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "dev-user" {
		t.Errorf("expected dev-user identity, got %q", rec.Body.String())
	}
}
