package visit

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients", h.CreateVisit)
	api.GET("/patients", h.ListVisits)
	api.GET("/patients/daily", h.ListDaily)
	api.GET("/patients/accepted", h.byStatus(clinic.StatusAccepted))
	api.GET("/patients/not-accepted", h.byStatus(clinic.StatusDeclined))
	api.GET("/patients/thinking", h.byStatus(clinic.StatusUndecided))
	api.GET("/patients/:id", h.GetVisit)
	api.PUT("/patients/:id", h.UpdateVisit)
	api.DELETE("/patients/:id", h.DeleteVisit)
	api.PATCH("/patients/:id/revisit", h.MarkRevisit)
	api.POST("/patients/:id/send-reminder", h.SendReminder)

	api.GET("/family-groups", h.FamilyGroups)
	api.GET("/profession-groups", h.ProfessionGroups)
	api.GET("/visit-types", h.VisitTypes)
	api.GET("/patient-status-options", h.StatusOptions)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateVisit(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	v, err := h.svc.CreateVisit(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) UpdateVisit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	v, err := h.svc.UpdateVisit(c.Request().Context(), id, in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "patient updated",
		"patient": v,
	})
}

func (h *Handler) DeleteVisit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteVisit(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "patient deleted"})
}

func (h *Handler) ListVisits(c echo.Context) error {
	p := pagination.FromContext(c)
	visits, err := h.svc.ListVisits(c.Request().Context(), ListFilter{
		From:            c.QueryParam("start_date"),
		To:              c.QueryParam("end_date"),
		Doctor:          c.QueryParam("doctor"),
		FamilyGroup:     c.QueryParam("family_group"),
		ProfessionGroup: c.QueryParam("profession_group"),
		Limit:           p.Limit,
		Offset:          p.Offset,
	})
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if visits == nil {
		visits = []*Visit{}
	}
	return c.JSON(http.StatusOK, visits)
}

func (h *Handler) ListDaily(c echo.Context) error {
	date := c.QueryParam("date")
	visits, err := h.svc.ListDaily(c.Request().Context(), date)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if visits == nil {
		visits = []*Visit{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"date": date, "patients": visits})
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	return n, nil
}

func (h *Handler) byStatus(status clinic.Status) echo.HandlerFunc {
	return func(c echo.Context) error {
		year, err := queryInt(c, "year")
		if err != nil {
			return err
		}
		month, err := queryInt(c, "month")
		if err != nil {
			return err
		}
		rep, err := h.svc.ListByStatus(c.Request().Context(), status, Period{
			Year:  year,
			Month: month,
			From:  c.QueryParam("start_date"),
			To:    c.QueryParam("end_date"),
		})
		if err != nil {
			return apperr.ToHTTP(err)
		}
		return c.JSON(http.StatusOK, rep)
	}
}

func (h *Handler) MarkRevisit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	date := c.QueryParam("revisit_date")
	if date == "" && c.Request().ContentLength > 0 {
		var body struct {
			RevisitDate string `json:"revisit_date"`
		}
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		date = body.RevisitDate
	}
	if err := h.svc.MarkRevisit(c.Request().Context(), id, date); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "patient marked as revisit"})
}

func (h *Handler) SendReminder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.SendReminder(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":          "reminder drafted",
		"whatsapp_message": d,
	})
}

func (h *Handler) FamilyGroups(c echo.Context) error {
	groups, err := h.svc.FamilyGroups(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if groups == nil {
		groups = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"family_groups": groups})
}

func (h *Handler) ProfessionGroups(c echo.Context) error {
	groups, err := h.svc.ProfessionGroups(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if groups == nil {
		groups = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"profession_groups": groups})
}

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (h *Handler) VisitTypes(c echo.Context) error {
	opts := make([]option, len(clinic.CoreVisitTypes))
	for i, vt := range clinic.CoreVisitTypes {
		opts[i] = option{Value: string(vt), Label: vt.Label()}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"visit_types": opts})
}

func (h *Handler) StatusOptions(c echo.Context) error {
	opts := make([]option, len(clinic.Statuses))
	for i, st := range clinic.Statuses {
		opts[i] = option{Value: string(st), Label: st.Label()}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status_options": opts})
}
