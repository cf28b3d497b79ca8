package followup

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	api.POST("/followups", h.CreateFollowUp)
	api.GET("/followups", h.ListFollowUps)
	api.PATCH("/followups/:id", h.UpdateFollowUp)
	api.GET("/patients/overdue", h.ListOverdue)
}

func (h *Handler) CreateFollowUp(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	f, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) ListFollowUps(c echo.Context) error {
	p := pagination.FromContext(c)
	items, err := h.svc.List(c.Request().Context(), ListFilter{
		Status: c.QueryParam("status"),
		Doctor: c.QueryParam("doctor"),
		From:   c.QueryParam("start_date"),
		To:     c.QueryParam("end_date"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if items == nil {
		items = []*FollowUp{}
	}
	return c.JSON(http.StatusOK, items)
}

type updateInput struct {
	FollowUpStatus string `json:"followup_status"`
	PatientStatus  string `json:"patient_status"`
}

func (h *Handler) UpdateFollowUp(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	in := updateInput{
		FollowUpStatus: c.QueryParam("followup_status"),
		PatientStatus:  c.QueryParam("patient_status"),
	}
	if in.FollowUpStatus == "" && c.Request().ContentLength > 0 {
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
	}
	if in.FollowUpStatus == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "followup_status is required")
	}

	f, err := h.svc.UpdateStatus(c.Request().Context(), id, in.FollowUpStatus, in.PatientStatus)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "follow-up updated and patient record synced",
		"followup": f,
	})
}

func (h *Handler) ListOverdue(c echo.Context) error {
	items, err := h.svc.ListOverdue(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":            len(items),
		"overdue_patients": items,
	})
}
