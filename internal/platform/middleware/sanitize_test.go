package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newSanitizedEcho() *echo.Echo {
	e := echo.New()
	e.Use(Sanitize(zerolog.Nop()))
	e.GET("/*", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func TestSanitize_AllowsNormalRequest(t *testing.T) {
	e := newSanitizedEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/patients?doctor=DR%20A&start_date=2024-03-01", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestSanitize_RejectsTraversal(t *testing.T) {
	e := newSanitizedEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/%2e%2e/etc", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSanitize_RejectsNullByteInQuery(t *testing.T) {
	e := newSanitizedEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/patients?doctor=DR%00A", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSanitize_RejectsHeaderLineBreak(t *testing.T) {
	e := newSanitizedEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	req.Header["X-Note"] = []string{"a\r\nInjected: yes"}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
