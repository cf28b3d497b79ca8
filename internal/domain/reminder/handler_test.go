package reminder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandler_ApproveMessage(t *testing.T) {
	svc, _ := newTestService()
	d, _ := svc.DraftManualReminder(context.Background(), PatientReminder{PatientName: "A", Phone: "1"})
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(d.ID.String())

	if err := h.ApproveMessage(c); err != nil {
		t.Fatal(err)
	}
	var resp struct {
		Message Draft `json:"whatsapp_message"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Message.Approved || resp.Message.Status != "sent" {
		t.Errorf("unexpected response: %s", rec.Body.String())
	}
}

func TestHandler_ApproveMessage_NotFound(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("0b8e8f5e-3a52-4c55-9d0b-8a1f2f1c9a11")

	err := h.ApproveMessage(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_GenerateDailySummaries(t *testing.T) {
	svc, _ := newTestService()
	svc.SetSummarySource(&fakeSummaries{days: []DoctorDay{{Doctor: "DR A", Total: 1, Implant: 1}}})
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/generate-daily-summaries?date=2024-03-01", nil)
	rec := httptest.NewRecorder()
	if err := h.GenerateDailySummaries(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	var resp struct {
		Message   string   `json:"message"`
		Summaries []*Draft `json:"summaries"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message != "1 daily summaries generated" || len(resp.Summaries) != 1 {
		t.Errorf("unexpected response: %s", rec.Body.String())
	}
}

func TestHandler_UpdateMessageStatus_Required(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("0b8e8f5e-3a52-4c55-9d0b-8a1f2f1c9a11")

	err := h.UpdateMessageStatus(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
