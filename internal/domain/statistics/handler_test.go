package statistics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/domain/clinic"
)

func TestHandler_Monthly(t *testing.T) {
	svc, visits, _ := newTestService(t, time.Now())
	visits.add("2024-03-01", "DR A", clinic.VisitImplant, clinic.StatusAccepted)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/statistics/monthly?year=2024&month=3", nil)
	rec := httptest.NewRecorder()
	if err := NewHandler(svc).Monthly(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	var st MonthlyStats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.TotalPatients != 1 || st.ImplantCount != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestHandler_Monthly_MissingMonth(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/statistics/monthly?year=2024", nil)
	err := NewHandler(svc).Monthly(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_WeeklyTrend_NoData(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/statistics/weekly-trend?year=2024&month=3", nil)
	rec := httptest.NewRecorder()
	if err := NewHandler(svc).WeeklyTrend(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.Body.String(), `"warning":false`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_MonthlyPDF(t *testing.T) {
	svc, visits, _ := newTestService(t, time.Now())
	visits.add("2024-03-01", "DR A", clinic.VisitImplant, clinic.StatusAccepted)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/export/monthly-stats-pdf?year=2024&month=3", nil)
	rec := httptest.NewRecorder()
	if err := NewHandler(svc).MonthlyPDF(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "aylik_istatistik_2024_03.pdf") {
		t.Errorf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}

func TestHandler_DailyPDF_EmptyDay(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/export/daily-report-pdf?date=2024-03-01", nil)
	rec := httptest.NewRecorder()
	if err := NewHandler(svc).DailyPDF(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "gunluk_rapor_2024-03-01.pdf") {
		t.Errorf("content disposition = %q", cd)
	}
}

func TestHandler_DailyPDF_InvalidDate(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/export/daily-report-pdf", nil)
	err := NewHandler(svc).DailyPDF(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
