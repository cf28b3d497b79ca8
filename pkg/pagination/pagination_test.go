package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestFromContext_Defaults(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/patients", nil), httptest.NewRecorder())
	p := FromContext(c)
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("unexpected defaults %+v", p)
	}
}

func TestFromContext_ReadsQuery(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/patients?limit=25&offset=50", nil), httptest.NewRecorder())
	p := FromContext(c)
	if p.Limit != 25 || p.Offset != 50 {
		t.Errorf("unexpected params %+v", p)
	}
}

func TestParse_Clamps(t *testing.T) {
	if p := Parse("999999", "-3"); p.Limit != MaxLimit || p.Offset != 0 {
		t.Errorf("unexpected clamp %+v", p)
	}
	if p := Parse("abc", "x"); p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("unexpected fallback %+v", p)
	}
}

func TestWindow(t *testing.T) {
	p := Params{Limit: 10, Offset: 5}
	if s, e := p.Window(12); s != 5 || e != 12 {
		t.Errorf("expected [5,12), got [%d,%d)", s, e)
	}
	if s, e := p.Window(3); s != 3 || e != 3 {
		t.Errorf("expected empty window, got [%d,%d)", s, e)
	}
}
