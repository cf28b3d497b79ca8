package reminder

import (
	"fmt"
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
	api.GET("/whatsapp-messages", h.ListMessages)
	api.PATCH("/whatsapp-messages/:id/approve", h.ApproveMessage)
	api.PATCH("/whatsapp-messages/:id", h.UpdateMessageStatus)
	api.POST("/generate-daily-summaries", h.GenerateDailySummaries)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) ListMessages(c echo.Context) error {
	p := pagination.FromContext(c)
	items, err := h.svc.List(c.Request().Context(), Filter{
		Status:        c.QueryParam("status"),
		MessageType:   c.QueryParam("message_type"),
		ScheduledDate: c.QueryParam("date"),
		Limit:         p.Limit,
		Offset:        p.Offset,
	})
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if items == nil {
		items = []*Draft{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ApproveMessage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Approve(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":          "message approved and marked as sent",
		"whatsapp_message": d,
	})
}

func (h *Handler) UpdateMessageStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	status := c.QueryParam("status")
	if status == "" && c.Request().ContentLength > 0 {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		status = body.Status
	}
	if status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}
	d, err := h.svc.UpdateStatus(c.Request().Context(), id, status)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":          "message status updated",
		"whatsapp_message": d,
	})
}

func (h *Handler) GenerateDailySummaries(c echo.Context) error {
	drafts, err := h.svc.GenerateDailySummaries(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   fmt.Sprintf("%d daily summaries generated", len(drafts)),
		"summaries": drafts,
	})
}
