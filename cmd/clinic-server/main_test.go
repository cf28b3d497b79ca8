package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/config"
)

func testServer() *echo.Echo {
	cfg := &config.Config{
		Env:            "test",
		LogLevel:       "info",
		Store:          config.StoreMemory,
		CORSOrigins:    []string{"*"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		BodyLimit:      "1M",
		RequestTimeout: 5 * time.Second,
	}
	return newServer(cfg, zerolog.Nop(), memoryStores())
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := testServer()

	if rec := do(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("/health: expected 200, got %d", rec.Code)
	}
	rec := do(e, http.MethodGet, "/health/db", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"memory"`) {
		t.Errorf("/health/db: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAPIRoot(t *testing.T) {
	e := testServer()
	rec := do(e, http.MethodGet, "/api/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestUndecidedVisitFlow(t *testing.T) {
	e := testServer()

	if rec := do(e, http.MethodPost, "/api/doctors", `{"name":"DR A"}`); rec.Code != http.StatusCreated {
		t.Fatalf("create doctor: %d %s", rec.Code, rec.Body.String())
	}

	body := `{"visit_date":"2024-03-01","patient_name":"Ayşe","phone_number":"555","doctor":"DR A","visit_type":"implant","status":"undecided"}`
	rec := do(e, http.MethodPost, "/api/patients", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create visit: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/followups", "")
	var fus []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &fus); err != nil {
		t.Fatal(err)
	}
	if len(fus) != 1 || fus[0]["followup_date"] != "2024-03-08" {
		t.Errorf("expected one follow-up on 2024-03-08, got %v", fus)
	}

	rec = do(e, http.MethodGet, "/api/whatsapp-messages?status=awaiting_approval", "")
	var drafts []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &drafts); err != nil {
		t.Fatal(err)
	}
	if len(drafts) != 1 {
		t.Errorf("expected one reminder draft, got %d", len(drafts))
	}

	rec = do(e, http.MethodGet, "/api/statistics/monthly?year=2024&month=3", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total_patients":1`) {
		t.Errorf("monthly stats: %d %s", rec.Code, rec.Body.String())
	}
}

func TestNotFoundMapsTo404(t *testing.T) {
	e := testServer()
	rec := do(e, http.MethodGet, "/api/patients/8e0f5a34-3a7e-4f43-a6a3-1b8d7c1b2a10", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
