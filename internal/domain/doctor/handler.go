package doctor

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/all", h.ListAllDoctors)
	api.POST("/doctors", h.CreateDoctor)
	api.PUT("/doctors/:id", h.UpdateDoctor)
	api.DELETE("/doctors/:id", h.DeleteDoctor)
	api.PUT("/doctors/:id/activate", h.ActivateDoctor)

	api.GET("/doctor-info", h.ListDoctorInfo)
	api.POST("/doctor-info", h.SaveDoctorInfo)
}

// doctorInput accepts a JSON body; the front desk client also sends name and
// phone_number as query parameters.
type doctorInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

func bindDoctorInput(c echo.Context) (doctorInput, error) {
	var in doctorInput
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&in); err != nil {
			return in, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
	}
	if in.Name == "" {
		in.Name = c.QueryParam("name")
	}
	if in.PhoneNumber == "" {
		in.PhoneNumber = c.QueryParam("phone_number")
	}
	return in, nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) ListDoctors(c echo.Context) error {
	activeOnly := true
	if v := c.QueryParam("active_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "active_only must be a boolean")
		}
		activeOnly = b
	}
	ds, err := h.svc.List(c.Request().Context(), activeOnly)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"doctors": names})
}

func (h *Handler) ListAllDoctors(c echo.Context) error {
	ds, err := h.svc.List(c.Request().Context(), false)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if ds == nil {
		ds = []*Doctor{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"doctors": ds})
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	in, err := bindDoctorInput(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Create(c.Request().Context(), in.Name, in.PhoneNumber)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "doctor " + d.Name + " added",
		"doctor":  d,
	})
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	in, err := bindDoctorInput(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Update(c.Request().Context(), id, in.Name, in.PhoneNumber)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "doctor updated",
		"doctor":  d,
	})
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "doctor deactivated"})
}

func (h *Handler) ActivateDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Activate(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "doctor activated"})
}

func (h *Handler) ListDoctorInfo(c echo.Context) error {
	infos, err := h.svc.Infos(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, infos)
}

func (h *Handler) SaveDoctorInfo(c echo.Context) error {
	var info Info
	if err := c.Bind(&info); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.SetPhone(c.Request().Context(), info); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, info)
}
