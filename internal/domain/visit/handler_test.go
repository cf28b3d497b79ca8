package visit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandler_CreateVisit(t *testing.T) {
	h := newHarness(t)
	hd := NewHandler(h.svc)
	e := echo.New()

	body := `{"visit_date":"2024-03-01","patient_name":"Ayşe","phone_number":"555","doctor":"DR A","visit_type":"muayene","status":"düşünüyor"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := hd.CreateVisit(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var v Visit
	json.Unmarshal(rec.Body.Bytes(), &v)
	if v.VisitType != "examination" || v.Status != "undecided" || v.Accepted {
		t.Errorf("unexpected visit %+v", v)
	}
}

func TestHandler_CreateVisit_InvalidStatus(t *testing.T) {
	h := newHarness(t)
	hd := NewHandler(h.svc)
	e := echo.New()

	body := `{"visit_date":"2024-03-01","patient_name":"A","doctor":"DR A","visit_type":"implant","status":"perhaps"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	err := hd.CreateVisit(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Thinking(t *testing.T) {
	h := newHarness(t)
	h.svc.CreateVisit(context.Background(), input("p", "2024-03-01", "undecided"))
	hd := NewHandler(h.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/patients/thinking?year=2024&month=3", nil)
	rec := httptest.NewRecorder()
	if err := hd.byStatus("undecided")(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	var rep StatusReport
	json.Unmarshal(rec.Body.Bytes(), &rep)
	if rep.Total != 1 || rep.Stats.DoctorStats["DR A"] != 1 {
		t.Errorf("unexpected report %s", rec.Body.String())
	}
	if _, ok := rep.Stats.DoctorStats["DR B"]; !ok {
		t.Error("active doctors without visits should be listed with zero")
	}
}

func TestHandler_ListDaily_RequiresDate(t *testing.T) {
	h := newHarness(t)
	hd := NewHandler(h.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/patients/daily", nil)
	err := hd.ListDaily(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_DeleteVisit_NotFound(t *testing.T) {
	h := newHarness(t)
	hd := NewHandler(h.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("4d7a6c1e-9f4b-4b3e-8a9b-1c2d3e4f5a6b")

	err := hd.DeleteVisit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_VisitTypes(t *testing.T) {
	h := newHarness(t)
	hd := NewHandler(h.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/visit-types", nil)
	rec := httptest.NewRecorder()
	if err := hd.VisitTypes(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	var resp struct {
		VisitTypes []option `json:"visit_types"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.VisitTypes) != 3 || resp.VisitTypes[1].Label != "Kontrol" {
		t.Errorf("unexpected visit types %+v", resp.VisitTypes)
	}
}
