package statistics

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/reporting"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/statistics/monthly", h.Monthly)
	api.GET("/statistics/weekly-trend", h.WeeklyTrend)
	api.GET("/export/monthly-stats-pdf", h.MonthlyPDF)
	api.GET("/export/daily-report-pdf", h.DailyPDF)
}

func yearMonth(c echo.Context) (int, int, error) {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "year is required and must be a number")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "month is required and must be a number")
	}
	return year, month, nil
}

func (h *Handler) Monthly(c echo.Context) error {
	year, month, err := yearMonth(c)
	if err != nil {
		return err
	}
	st, err := h.svc.MonthlyStatistics(c.Request().Context(), year, month)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) WeeklyTrend(c echo.Context) error {
	year, month, err := yearMonth(c)
	if err != nil {
		return err
	}
	tr, err := h.svc.WeeklyTrend(c.Request().Context(), year, month)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, tr)
}

func (h *Handler) MonthlyPDF(c echo.Context) error {
	year, month, err := yearMonth(c)
	if err != nil {
		return err
	}
	st, err := h.svc.MonthlyStatistics(c.Request().Context(), year, month)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	doc := MonthlyDocument(st)
	doc.GeneratedAt = h.svc.now()
	if err := reporting.Attachment(c, MonthlyFilename(year, month), doc); err != nil {
		return apperr.ToHTTP(err)
	}
	return nil
}

func (h *Handler) DailyPDF(c echo.Context) error {
	date := c.QueryParam("date")
	doc, err := h.svc.DailyDocument(c.Request().Context(), date)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	doc.GeneratedAt = h.svc.now()
	if err := reporting.Attachment(c, DailyFilename(date), doc); err != nil {
		return apperr.ToHTTP(err)
	}
	return nil
}
