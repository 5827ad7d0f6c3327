package notification

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/newflow/newflow/internal/notify"
	"github.com/newflow/newflow/internal/platform/auth"
	"github.com/newflow/newflow/pkg/pagination"
	"github.com/newflow/newflow/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequirePermission("notifications.read"))
	g.GET("/notifications", h.List)
	g.GET("/notifications/unread-count", h.UnreadCount)
	g.GET("/notifications/settings", h.GetSettings)
	g.PUT("/notifications/settings", h.UpdateSettings)
	g.PUT("/notifications/read-all", h.MarkAllRead)
	g.PUT("/notifications/:id/read", h.MarkRead)
	g.DELETE("/notifications", h.DeleteAll)
	g.DELETE("/notifications/:id", h.Delete)

	sendGroup := api.Group("", auth.RequirePermission("notifications.write"))
	sendGroup.POST("/notifications/send", h.Send)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	userID := auth.UserIDFromContext(c.Request().Context())

	f := Filter{
		Type:     notify.Type(c.QueryParam("type")),
		Priority: notify.Priority(c.QueryParam("priority")),
		Status:   c.QueryParam("status"),
		Search:   c.QueryParam("search"),
		Sort:     c.QueryParam("sort"),
	}
	if f.Type != "" && !f.Type.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid type filter")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid priority filter")
	}
	if f.Status != "" && f.Status != "read" && f.Status != "unread" {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be read or unread")
	}

	items, total, err := h.svc.List(c.Request().Context(), userID, f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UnreadCount(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	count, err := h.svc.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.OK(c, map[string]int{"unread_count": count})
}

func (h *Handler) Send(c echo.Context) error {
	var in SendInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	senderID := auth.UserIDFromContext(c.Request().Context())
	n, err := h.svc.Send(c.Request().Context(), senderID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return response.Created(c, n)
}

func (h *Handler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.MarkRead(c.Request().Context(), userID, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.OK(c, map[string]string{"id": id.String()})
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	count, err := h.svc.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.OK(c, map[string]int{"marked": count})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), userID, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteAll(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	count, err := h.svc.DeleteAll(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.OK(c, map[string]int{"deleted": count})
}

func (h *Handler) GetSettings(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	s, err := h.svc.GetSettings(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.OK(c, s)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var patch notify.SettingsPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	s, err := h.svc.UpdateSettings(c.Request().Context(), userID, patch)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.OK(c, s)
}
